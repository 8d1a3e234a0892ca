package core

import (
	"fmt"
	"strings"

	"github.com/routelab/nethub/state"
)

// Reconciler implements the pull protocol: a report comes in, the record is
// replaced, and whatever commands accumulated for the node since its last
// poll go back out in the response. Update and drain happen in one store
// critical section, so a concurrently enqueued command lands either in this
// poll or the next one, never nowhere.
type Reconciler struct {
	store *state.Store
	obs   state.Observers
}

func NewReconciler(store *state.Store, obs state.Observers) *Reconciler {
	return &Reconciler{store: store, obs: obs}
}

func (r *Reconciler) HandleReport(rep state.Report) []string {
	id := state.NodeId(strings.TrimSpace(string(rep.NodeId)))
	if id == "" {
		return nil
	}
	cmds := r.store.UpdateAndDrain(id, rep)
	if r.obs != nil {
		for _, line := range rep.Logs {
			r.obs.Log(fmt.Sprintf("[%s] %s", id, line))
		}
	}
	return cmds
}
