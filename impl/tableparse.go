package impl

import (
	"strconv"
	"strings"

	"github.com/routelab/nethub/state"
)

// header markers for the routing-table block in raw process output; the
// reference simulator prints either depending on locale
var tableHeaderMarkers = []string{"Routing Table", "路由表"}

// TableUpdate is a structured routing table recovered from free-text
// output, attributed to the node that printed it (the zero-cost
// self-route). Each emission is a full replacement snapshot.
type TableUpdate struct {
	Id    state.NodeId                      `json:"id"`
	Table map[state.NodeId]state.RouteEntry `json:"table"`
}

// TableParser scans line-oriented process output for routing-table blocks.
//
// Two states: idle until a header marker appears, then collecting. While
// collecting, parsing is attempted eagerly on every line once the buffer
// holds more than two entries, so a table that is still streaming in can
// emit several times; consumers must treat each emission as a replacement.
// There is no footer transition back to idle. Instead the parser re-arms on
// the next header sighting, which resets the buffer and starts a new table.
type TableParser struct {
	collecting bool
	lines      []string
}

func NewTableParser() *TableParser {
	return &TableParser{}
}

// Feed consumes one output line. The returned update is valid only when
// the second result is true.
func (p *TableParser) Feed(line string) (TableUpdate, bool) {
	clean := strings.TrimSpace(line)

	if isTableHeader(clean) {
		p.collecting = true
		p.lines = p.lines[:0]
		return TableUpdate{}, false
	}
	if !p.collecting {
		return TableUpdate{}, false
	}

	p.lines = append(p.lines, clean)
	if len(p.lines) <= 2 {
		return TableUpdate{}, false
	}
	return p.parse()
}

func (p *TableParser) parse() (TableUpdate, bool) {
	entries := make(map[state.NodeId]state.RouteEntry)
	var self state.NodeId

	for _, line := range p.lines {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		dest, costStr, nextHop, iface := fields[0], fields[1], fields[2], fields[3]
		if strings.EqualFold(nextHop, "NEXT") {
			// re-scanned header row
			continue
		}
		cost, err := strconv.Atoi(costStr)
		if err != nil || cost < 0 {
			continue
		}
		entries[state.NodeId(dest)] = state.RouteEntry{
			Cost:      cost,
			NextHop:   state.NodeId(nextHop),
			Interface: iface,
		}
		if cost == 0 {
			self = state.NodeId(dest)
		}
	}

	// without a zero-cost row we cannot attribute the table to a node;
	// silently incomplete rather than an error
	if len(entries) == 0 || self == "" {
		return TableUpdate{}, false
	}
	return TableUpdate{Id: self, Table: entries}, true
}

func isTableHeader(line string) bool {
	for _, marker := range tableHeaderMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}
