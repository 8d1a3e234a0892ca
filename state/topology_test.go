package state

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestLivenessClassification(t *testing.T) {
	now := time.Now()
	nodes := map[NodeId]NodeRecord{
		"fresh": {Id: "fresh", LastSeen: now.Add(-4900 * time.Millisecond)},
		"stale": {Id: "stale", LastSeen: now.Add(-5100 * time.Millisecond)},
	}
	topo := BuildTopology(nodes, now, 5*time.Second)

	byId := map[NodeId]TopologyNode{}
	for _, n := range topo.Nodes {
		byId[n.Id] = n
	}
	assert.Equal(t, activeColor, byId["fresh"].Color)
	assert.Equal(t, activeVal, byId["fresh"].Val)
	assert.Equal(t, inactiveColor, byId["stale"].Color)
	assert.Equal(t, inactiveVal, byId["stale"].Val)
}

func TestLinksAreDirectedAndNotDeduped(t *testing.T) {
	now := time.Now()
	nodes := map[NodeId]NodeRecord{
		"A": {Id: "A", LastSeen: now, Neighbors: []NodeId{"B", "B", "C"}},
		"B": {Id: "B", LastSeen: now, Neighbors: []NodeId{"A"}},
	}
	topo := BuildTopology(nodes, now, 5*time.Second)

	want := []TopologyLink{
		{Source: "A", Target: "B", Color: linkColor},
		{Source: "A", Target: "B", Color: linkColor},
		{Source: "A", Target: "C", Color: linkColor},
		{Source: "B", Target: "A", Color: linkColor},
	}
	if diff := cmp.Diff(want, topo.Links); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTopologyIsDeterministic(t *testing.T) {
	now := time.Now()
	nodes := map[NodeId]NodeRecord{
		"C": {Id: "C", LastSeen: now},
		"A": {Id: "A", LastSeen: now},
		"B": {Id: "B", LastSeen: now},
	}
	first := BuildTopology(nodes, now, 5*time.Second)
	second := BuildTopology(nodes, now, 5*time.Second)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("snapshots differ (-first +second):\n%s", diff)
	}
	assert.Equal(t, []NodeId{"A", "B", "C"},
		[]NodeId{first.Nodes[0].Id, first.Nodes[1].Id, first.Nodes[2].Id})
}

func TestBuildTopologyDefensiveOnEmptyRecord(t *testing.T) {
	now := time.Now()
	// malformed reports are stored as-given; the builder must not choke on
	// nil fields
	nodes := map[NodeId]NodeRecord{
		"bare": {Id: "bare"},
	}
	topo := BuildTopology(nodes, now, 5*time.Second)
	assert.Len(t, topo.Nodes, 1)
	assert.Empty(t, topo.Links)
	assert.Equal(t, inactiveColor, topo.Nodes[0].Color)
}
