package state

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type HubModule interface {
	Init(s *State) error
	Cleanup(s *State) error
}

// State access must be done only on the dispatch Goroutine, except through
// the Store, which carries its own lock so handlers and tests can reach it
// directly.
type State struct {
	*Env
	Modules map[string]HubModule
	Store   *Store

	// cross-module wiring, set during init before any module runs
	Observers Observers
	Reports   ReportHandler
	Commands  CommandSink

	// BoundAddr is the gateway's actual listen address, useful when the
	// configured port is 0.
	BoundAddr string

	Started  atomic.Bool
	Stopping atomic.Bool
}

// Env can be read from any Goroutine
type Env struct {
	DispatchChannel chan<- func(s *State) error
	HubCfg
	Context context.Context
	Cancel  context.CancelCauseFunc
	Log     *slog.Logger
}
