package state

import "time"

// NodeId names one simulated node. Ids are opaque strings chosen by the
// nodes themselves; the hub never validates them beyond non-emptiness.
type NodeId string

// Broadcast is the reserved target id that fans a command out to every
// node known at enqueue time.
const Broadcast NodeId = "BROADCAST"

// RouteEntry is one row of a node's distance-vector routing table.
type RouteEntry struct {
	Cost      int    `json:"cost" yaml:"cost"`
	NextHop   NodeId `json:"next_hop" yaml:"next_hop"`
	Interface string `json:"interface" yaml:"interface"`
}

// Report is one node check-in. Raw preserves the payload exactly as
// received, typed fields included, so the detail endpoint can return
// fields the hub itself does not interpret.
type Report struct {
	NodeId       NodeId                `json:"node_id"`
	RoutingTable map[NodeId]RouteEntry `json:"routing_table,omitempty"`
	Neighbors    []NodeId              `json:"neighbors,omitempty"`
	Logs         []string              `json:"logs,omitempty"`

	Raw map[string]any `json:"-"`
}

// NodeRecord is the hub's current knowledge of one node: its last accepted
// report plus the time it arrived.
type NodeRecord struct {
	Id           NodeId
	LastSeen     time.Time
	RoutingTable map[NodeId]RouteEntry
	Neighbors    []NodeId
	RawDetails   map[string]any
}

// TopologyNode and TopologyLink carry the display attributes the
// force-graph frontend consumes verbatim.
type TopologyNode struct {
	Id    NodeId `json:"id"`
	Name  string `json:"name"`
	Val   int    `json:"val"`
	Color string `json:"color"`
}

type TopologyLink struct {
	Source NodeId `json:"source"`
	Target NodeId `json:"target"`
	Color  string `json:"color"`
}

type TopologySnapshot struct {
	Nodes []TopologyNode `json:"nodes"`
	Links []TopologyLink `json:"links"`
}

// Observers is the fan-out surface for everything watching the hub live.
type Observers interface {
	Log(line string)
	Topo(data any)
}

// ReportHandler reconciles one check-in and returns the commands the node
// should execute, drained atomically with the update.
type ReportHandler interface {
	HandleReport(rep Report) []string
}

// CommandSink accepts operator commands for queuing. Submit reports
// whether the command was accepted.
type CommandSink interface {
	Submit(target NodeId, command string) bool
}
