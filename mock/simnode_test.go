package mock

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routelab/nethub/state"
)

func TestSimNodeRoutingTableShape(t *testing.T) {
	n := NewSimNode("A", []state.NodeId{"B", "C"}, "http://localhost")
	table := n.routingTable()

	require.Len(t, table, 3)
	assert.Equal(t, state.RouteEntry{Cost: 0, NextHop: "A", Interface: "LOCAL"}, table["A"])
	assert.Equal(t, state.RouteEntry{Cost: 1, NextHop: "B", Interface: "PORT1"}, table["B"])
	assert.Equal(t, state.RouteEntry{Cost: 1, NextHop: "C", Interface: "PORT2"}, table["C"])
}

func TestSimNodePingCommand(t *testing.T) {
	n := NewSimNode("A", []state.NodeId{"B"}, "http://localhost")

	n.execute("ping B")
	n.execute("ping Z")

	require.Len(t, n.logs, 2)
	assert.Contains(t, n.logs[0], "ping B: reply")
	assert.Contains(t, n.logs[1], "ping Z: unreachable")
}

func TestSimNodeTableCommandMatchesParserInput(t *testing.T) {
	n := NewSimNode("A", []state.NodeId{"B"}, "http://localhost")
	n.execute("table")

	require.NotEmpty(t, n.logs)
	assert.Contains(t, n.logs[0], "Routing Table")
	assert.Contains(t, n.logs, "A 0 A LOCAL")
	assert.Contains(t, n.logs, "B 1 B PORT1")
}

func TestSimNodeSendCommand(t *testing.T) {
	n := NewSimNode("A", []state.NodeId{"B"}, "http://localhost")

	n.execute("send B hello world")
	n.execute("send")

	require.Len(t, n.logs, 2)
	assert.Equal(t, "sent to B: hello world", n.logs[0])
	assert.Contains(t, n.logs[1], "usage")
}

func TestSimNodeReportRoundTrip(t *testing.T) {
	var (
		mu       sync.Mutex
		received state.Report
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/report", r.URL.Path)
		mu.Lock()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"commands":["ping B"]}`))
	}))
	defer srv.Close()

	n := NewSimNode("A", []state.NodeId{"B"}, srv.URL)
	n.logf("booted")

	cmds, err := n.report(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ping B"}, cmds)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, state.NodeId("A"), received.NodeId)
	assert.Equal(t, []state.NodeId{"B"}, received.Neighbors)
	assert.Equal(t, []string{"booted"}, received.Logs)
	assert.Empty(t, n.logs, "delivered logs are cleared")
}

func TestSimNodeKeepsLogsOnDeliveryFailure(t *testing.T) {
	n := NewSimNode("A", nil, "http://127.0.0.1:1")
	n.logf("precious")

	_, err := n.report(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(strings.Join(n.logs, "\n"), "precious"))
}
