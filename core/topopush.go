package core

import (
	"time"

	"github.com/routelab/nethub/state"
)

// TopoPush broadcasts a fresh topology snapshot to all observers on a fixed
// period, regardless of client activity. Stale nodes stay on the graph in
// their inactive coloring until the store reaps them.
type TopoPush struct{}

func (tp *TopoPush) Init(s *state.State) error {
	s.RepeatTask(pushTopology, s.TopoPush)
	return nil
}

func (tp *TopoPush) Cleanup(s *state.State) error {
	return nil
}

func pushTopology(s *state.State) error {
	if s.Observers == nil {
		return nil
	}
	snap := s.Store.Snapshot()
	s.Observers.Topo(state.BuildTopology(snap, time.Now(), s.LivenessWindow))
	return nil
}
