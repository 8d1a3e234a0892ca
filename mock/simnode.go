// Package mock provides simulated network nodes that speak the hub's
// report/command protocol over HTTP. They are development stand-ins for
// real routing processes: deterministic tables, canned command responses,
// no actual packet forwarding.
package mock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/routelab/nethub/state"
)

// SimNode periodically checks in with the hub and executes whatever
// commands came back, surfacing the results as log lines in its next
// report.
type SimNode struct {
	Id        state.NodeId
	Neighbors []state.NodeId
	HubURL    string
	Interval  time.Duration

	client *http.Client

	mu   sync.Mutex
	logs []string
}

func NewSimNode(id state.NodeId, neighbors []state.NodeId, hubURL string) *SimNode {
	return &SimNode{
		Id:        id,
		Neighbors: neighbors,
		HubURL:    strings.TrimRight(hubURL, "/"),
		Interval:  state.SimReportDelay,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Run reports until the context is cancelled. Check-in failures are
// transient by assumption; the node just tries again next tick.
func (n *SimNode) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.Interval)
	defer ticker.Stop()
	for {
		cmds, err := n.report(ctx)
		if err == nil {
			for _, cmd := range cmds {
				n.execute(cmd)
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (n *SimNode) report(ctx context.Context) ([]string, error) {
	n.mu.Lock()
	logs := n.logs
	n.logs = nil
	n.mu.Unlock()

	payload, err := json.Marshal(state.Report{
		NodeId:       n.Id,
		RoutingTable: n.routingTable(),
		Neighbors:    n.Neighbors,
		Logs:         logs,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.HubURL+"/api/report", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		// keep the unsent logs for the next attempt
		n.mu.Lock()
		n.logs = append(logs, n.logs...)
		n.mu.Unlock()
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hub answered %s", resp.Status)
	}

	var body struct {
		Commands []string `json:"commands"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Commands, nil
}

// routingTable is a static distance vector: self at cost zero, each
// neighbor one hop away on its own port.
func (n *SimNode) routingTable() map[state.NodeId]state.RouteEntry {
	table := map[state.NodeId]state.RouteEntry{
		n.Id: {Cost: 0, NextHop: n.Id, Interface: "LOCAL"},
	}
	for i, nb := range n.Neighbors {
		table[nb] = state.RouteEntry{Cost: 1, NextHop: nb, Interface: fmt.Sprintf("PORT%d", i+1)}
	}
	return table
}

func (n *SimNode) logf(format string, args ...any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.logs = append(n.logs, fmt.Sprintf(format, args...))
}

func (n *SimNode) execute(command string) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return
	}
	switch strings.ToLower(fields[0]) {
	case "ping":
		if len(fields) < 2 {
			n.logf("ping: missing target")
			return
		}
		target := state.NodeId(fields[1])
		if n.reaches(target) {
			n.logf("ping %s: reply, cost=%d", target, n.routingTable()[target].Cost)
		} else {
			n.logf("ping %s: unreachable", target)
		}
	case "table":
		for _, line := range n.renderTable() {
			n.logf("%s", line)
		}
	case "send":
		if len(fields) < 3 {
			n.logf("send: usage send <node> <message>")
			return
		}
		target := state.NodeId(fields[1])
		msg := strings.Join(fields[2:], " ")
		if n.reaches(target) {
			n.logf("sent to %s: %s", target, msg)
		} else {
			n.logf("send to %s failed: unreachable", target)
		}
	default:
		n.logf("unknown command: %s", command)
	}
}

func (n *SimNode) reaches(target state.NodeId) bool {
	_, ok := n.routingTable()[target]
	return ok
}

// renderTable prints the table in the same text form real nodes use, so
// the hub's table extraction sees identical input either way.
func (n *SimNode) renderTable() []string {
	table := n.routingTable()
	lines := []string{
		fmt.Sprintf("Node %s Routing Table", n.Id),
		"Dest Cost Next Interface",
	}
	for _, id := range sortedKeys(table) {
		e := table[id]
		lines = append(lines, fmt.Sprintf("%s %d %s %s", id, e.Cost, e.NextHop, e.Interface))
	}
	return lines
}

func sortedKeys(table map[state.NodeId]state.RouteEntry) []state.NodeId {
	ids := make([]state.NodeId, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
