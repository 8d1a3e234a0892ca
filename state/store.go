package state

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Store is the single source of truth for everything the hub knows about
// the network: the last accepted report per node id and the per-node queue
// of pending operator commands.
//
// Every operation takes the one coarse store lock for its full duration.
// Check-ins arrive on a seconds-scale cadence, so consistency is worth far
// more here than lock granularity; the lock is never held across I/O.
//
// Records and queues are kept in TTL caches so that ids which stop
// reporting and are never drained again get reclaimed eventually, instead
// of accumulating forever. Any operation touching an id refreshes it.
type Store struct {
	mu      sync.Mutex
	records *ttlcache.Cache[NodeId, NodeRecord]
	pending *ttlcache.Cache[NodeId, []string]

	// Now stamps LastSeen on accepted reports. Tests substitute it.
	Now func() time.Time
}

func NewStore(reapTTL time.Duration) *Store {
	if reapTTL <= 0 {
		reapTTL = ttlcache.NoTTL
	}
	return &Store{
		records: ttlcache.New[NodeId, NodeRecord](
			ttlcache.WithTTL[NodeId, NodeRecord](reapTTL),
		),
		pending: ttlcache.New[NodeId, []string](
			ttlcache.WithTTL[NodeId, []string](reapTTL),
		),
		Now: time.Now,
	}
}

// Start runs the background expiration of reaped ids. Optional; without it
// expired entries are still dropped lazily on access.
func (st *Store) Start() {
	go st.records.Start()
	go st.pending.Start()
}

func (st *Store) Stop() {
	st.records.Stop()
	st.pending.Stop()
}

// UpdateNode replaces the record for id wholesale and stamps LastSeen.
// A pending command queue is created for first-time ids so a later
// broadcast reaches them. Reports are stored as given, not validated.
func (st *Store) UpdateNode(id NodeId, rep Report) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.updateLocked(id, rep)
}

// DrainCommands returns and clears the pending queue for id. Unknown ids
// yield nil without creating any state.
func (st *Store) DrainCommands(id NodeId) []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.drainLocked(id)
}

// UpdateAndDrain is UpdateNode followed by DrainCommands under one critical
// section, so a command enqueued concurrently with a report is either part
// of this drain or intact for the next one, never lost in between.
func (st *Store) UpdateAndDrain(id NodeId, rep Report) []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.updateLocked(id, rep)
	return st.drainLocked(id)
}

// EnqueueCommand appends to one queue, or, for the Broadcast sentinel, to
// the queue of every node known right now. Queues for ids without a record
// are created on demand; the command waits there until the id polls.
func (st *Store) EnqueueCommand(target NodeId, command string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if target == Broadcast {
		for _, id := range st.records.Keys() {
			st.appendLocked(id, command)
		}
		return
	}
	st.appendLocked(target, command)
}

// Snapshot returns a copy of all records safe for read-only consumption.
func (st *Store) Snapshot() map[NodeId]NodeRecord {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make(map[NodeId]NodeRecord, st.records.Len())
	for id, item := range st.records.Items() {
		rec := item.Value()
		rec.RoutingTable = maps.Clone(rec.RoutingTable)
		rec.Neighbors = slices.Clone(rec.Neighbors)
		rec.RawDetails = maps.Clone(rec.RawDetails)
		out[id] = rec
	}
	return out
}

// NodeDetails returns the full last report payload for id, or an empty map
// for unknown ids. Unknown is not an error.
func (st *Store) NodeDetails(id NodeId) map[string]any {
	st.mu.Lock()
	defer st.mu.Unlock()
	item := st.records.Get(id)
	if item == nil {
		return map[string]any{}
	}
	details := maps.Clone(item.Value().RawDetails)
	if details == nil {
		details = map[string]any{}
	}
	return details
}

func (st *Store) KnownNodes() []NodeId {
	st.mu.Lock()
	defer st.mu.Unlock()
	ids := st.records.Keys()
	slices.Sort(ids)
	return ids
}

func (st *Store) updateLocked(id NodeId, rep Report) {
	st.records.Set(id, NodeRecord{
		Id:           id,
		LastSeen:     st.Now(),
		RoutingTable: rep.RoutingTable,
		Neighbors:    rep.Neighbors,
		RawDetails:   rep.Raw,
	}, ttlcache.DefaultTTL)
	if !st.pending.Has(id) {
		st.pending.Set(id, nil, ttlcache.DefaultTTL)
	}
}

func (st *Store) drainLocked(id NodeId) []string {
	item := st.pending.Get(id)
	if item == nil {
		return nil
	}
	cmds := item.Value()
	st.pending.Set(id, nil, ttlcache.DefaultTTL)
	return cmds
}

func (st *Store) appendLocked(id NodeId, command string) {
	var queue []string
	if item := st.pending.Get(id); item != nil {
		queue = item.Value()
	}
	st.pending.Set(id, append(queue, command), ttlcache.DefaultTTL)
}
