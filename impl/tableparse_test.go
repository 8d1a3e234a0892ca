package impl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routelab/nethub/state"
)

func feedAll(p *TableParser, lines []string) (TableUpdate, bool) {
	var (
		last TableUpdate
		ok   bool
	)
	for _, line := range lines {
		if upd, emitted := p.Feed(line); emitted {
			last, ok = upd, true
		}
	}
	return last, ok
}

func TestTableParserExtractsRoutingTable(t *testing.T) {
	p := NewTableParser()
	upd, ok := feedAll(p, []string{
		"Routing Table",
		"Dest Cost Next Interface",
		"A 0 A LOCAL",
		"B 1 A PORT1",
	})
	require.True(t, ok)
	assert.Equal(t, state.NodeId("A"), upd.Id)

	want := map[state.NodeId]state.RouteEntry{
		"A": {Cost: 0, NextHop: "A", Interface: "LOCAL"},
		"B": {Cost: 1, NextHop: "A", Interface: "PORT1"},
	}
	if diff := cmp.Diff(want, upd.Table); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestTableParserChineseHeader(t *testing.T) {
	p := NewTableParser()
	_, ok := feedAll(p, []string{
		"节点 A 路由表",
		"Dest Cost Next Interface",
		"A 0 A LOCAL",
		"B 2 B PORT2",
	})
	assert.True(t, ok)
}

func TestTableParserIgnoresOutputBeforeHeader(t *testing.T) {
	p := NewTableParser()
	for _, line := range []string{"booting", "A 0 A LOCAL", "B 1 A PORT1", "C 2 A PORT1"} {
		_, ok := p.Feed(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestTableParserSkipsHeaderRowViaNextGuard(t *testing.T) {
	p := NewTableParser()
	upd, ok := feedAll(p, []string{
		"Routing Table",
		"Dest Cost NEXT Interface",
		"A 0 A LOCAL",
		"B 1 A PORT1",
	})
	require.True(t, ok)
	_, headerLeaked := upd.Table["Dest"]
	assert.False(t, headerLeaked)
}

func TestTableParserRejectsMalformedRows(t *testing.T) {
	p := NewTableParser()
	upd, ok := feedAll(p, []string{
		"Routing Table",
		"garbage",
		"A 0 A LOCAL",
		"B notanumber A PORT1",
		"C -3 A PORT1",
		"D 4 A PORT2",
	})
	require.True(t, ok)
	assert.Equal(t, map[state.NodeId]state.RouteEntry{
		"A": {Cost: 0, NextHop: "A", Interface: "LOCAL"},
		"D": {Cost: 4, NextHop: "A", Interface: "PORT2"},
	}, upd.Table)
}

func TestTableParserWithoutSelfRouteStaysSilent(t *testing.T) {
	p := NewTableParser()
	_, ok := feedAll(p, []string{
		"Routing Table",
		"B 1 A PORT1",
		"C 2 A PORT1",
		"D 3 A PORT2",
	})
	assert.False(t, ok)
}

func TestTableParserEmitsRepeatedlyWhileStreaming(t *testing.T) {
	p := NewTableParser()
	p.Feed("Routing Table")
	p.Feed("Dest Cost Next Interface")
	p.Feed("A 0 A LOCAL")

	upd, ok := p.Feed("B 1 A PORT1")
	require.True(t, ok)
	assert.Len(t, upd.Table, 2)

	upd, ok = p.Feed("C 2 B PORT2")
	require.True(t, ok)
	assert.Len(t, upd.Table, 3, "each emission replaces the previous snapshot")
}

func TestTableParserReArmsOnNextHeader(t *testing.T) {
	p := NewTableParser()
	upd, ok := feedAll(p, []string{
		"Routing Table",
		"A 0 A LOCAL",
		"B 1 A PORT1",
		"C 2 A PORT1",
		"Routing Table",
		"B 0 B LOCAL",
		"A 1 B PORT1",
		"D 2 B PORT2",
	})
	require.True(t, ok)
	assert.Equal(t, state.NodeId("B"), upd.Id)
	assert.NotContains(t, upd.Table, state.NodeId("C"), "buffer resets on new header")
}
