package state

import (
	"slices"
	"time"
)

// display attributes expected by the force-graph frontend
const (
	activeVal     = 10
	inactiveVal   = 5
	activeColor   = "#4CAF50"
	inactiveColor = "#9E9E9E"
	linkColor     = "#FFF"
)

// BuildTopology derives a renderable graph from a store snapshot. A node is
// active iff now - LastSeen < window. Each neighbor entry becomes one
// directed link exactly as reported; duplicate and asymmetric links pass
// through unmodified. Nodes are ordered by id so successive snapshots of
// the same state compare equal.
func BuildTopology(nodes map[NodeId]NodeRecord, now time.Time, window time.Duration) TopologySnapshot {
	topo := TopologySnapshot{
		Nodes: make([]TopologyNode, 0, len(nodes)),
		Links: make([]TopologyLink, 0),
	}
	ids := make([]NodeId, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		rec := nodes[id]
		val, color := inactiveVal, inactiveColor
		if now.Sub(rec.LastSeen) < window {
			val, color = activeVal, activeColor
		}
		topo.Nodes = append(topo.Nodes, TopologyNode{
			Id:    id,
			Name:  string(id),
			Val:   val,
			Color: color,
		})
		for _, neighbor := range rec.Neighbors {
			topo.Links = append(topo.Links, TopologyLink{
				Source: id,
				Target: neighbor,
				Color:  linkColor,
			})
		}
	}
	return topo
}
