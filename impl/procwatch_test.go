package impl

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routelab/nethub/state"
)

func startProcWatch(t *testing.T, watch []state.WatchCfg) (*state.State, *ProcWatch) {
	t.Helper()
	ctx, cancel := context.WithCancelCause(context.Background())
	t.Cleanup(func() { cancel(nil) })

	cfg := state.DefaultHubCfg()
	cfg.Watch = watch
	state.ExpandHubConfig(&cfg)

	s := &state.State{
		Store: state.NewStore(0),
		Env: &state.Env{
			Context: ctx,
			Cancel:  cancel,
			HubCfg:  cfg,
			Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
	}
	s.Observers = NewHub()

	p := &ProcWatch{}
	require.NoError(t, p.Init(s))
	return s, p
}

func TestProcWatchExtractsTableFromOutput(t *testing.T) {
	s, p := startProcWatch(t, []state.WatchCfg{{
		Name: "sim",
		Command: []string{"sh", "-c",
			`printf 'Routing Table\nDest Cost Next Interface\nP 0 P LOCAL\nQ 1 P PORT1\n'`},
	}})

	require.Eventually(t, func() bool {
		rec, ok := s.Store.Snapshot()["P"]
		return ok && len(rec.RoutingTable) == 2
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, state.RouteEntry{Cost: 1, NextHop: "P", Interface: "PORT1"},
		s.Store.Snapshot()["P"].RoutingTable["Q"])

	s.Stopping.Store(true)
	s.Cancel(errors.New("test finished"))
	require.NoError(t, p.Cleanup(s))
}

func TestProcWatchLinesReachObservers(t *testing.T) {
	s, p := startProcWatch(t, []state.WatchCfg{{
		Name:    "chatty",
		Command: []string{"sh", "-c", "echo hello from the process"},
	}})
	hub := s.Observers.(*Hub)
	c := newTestClient(16)
	hub.register(c)

	require.Eventually(t, func() bool {
		for _, f := range drainFrames(t, c) {
			if text, ok := f.Data.(string); ok && text == "[chatty] hello from the process" {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	s.Stopping.Store(true)
	s.Cancel(errors.New("test finished"))
	require.NoError(t, p.Cleanup(s))
}

func TestProcWatchCleanupUnblockedByOrphanedPipeHolder(t *testing.T) {
	// the watched command backgrounds a long-lived grandchild that
	// inherits the merged output pipe, then stays alive until killed;
	// shutdown must not wait for the grandchild
	s, p := startProcWatch(t, []state.WatchCfg{{
		Name:    "forker",
		Command: []string{"sh", "-c", "sleep 60 & echo started; wait"},
	}})

	s.Stopping.Store(true)
	s.Cancel(errors.New("test finished"))

	done := make(chan error, 1)
	go func() { done <- p.Cleanup(s) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * procWaitDelay):
		t.Fatal("Cleanup still blocked after context cancellation")
	}
}

func TestProcWatchSkipsEmptyCommand(t *testing.T) {
	s, p := startProcWatch(t, []state.WatchCfg{{Name: "hollow"}})
	s.Stopping.Store(true)
	s.Cancel(errors.New("test finished"))
	require.NoError(t, p.Cleanup(s))
	assert.Empty(t, s.Store.KnownNodes())
}
