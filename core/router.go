package core

import (
	"log/slog"
	"strings"

	"github.com/routelab/nethub/state"
)

// CommandRouter queues operator commands for pull-based delivery. Queuing
// is the only acknowledgment; the operator sees the effect, if any, in the
// target's subsequent reports.
type CommandRouter struct {
	store *state.Store
	log   *slog.Logger
}

func NewCommandRouter(store *state.Store, log *slog.Logger) *CommandRouter {
	return &CommandRouter{store: store, log: log}
}

func (c *CommandRouter) Submit(target state.NodeId, command string) bool {
	target = state.NodeId(strings.TrimSpace(string(target)))
	command = strings.TrimSpace(command)
	if target == "" || command == "" {
		return false
	}
	c.store.EnqueueCommand(target, command)
	if c.log != nil {
		c.log.Debug("queued command", "target", target, "command", command)
	}
	return true
}
