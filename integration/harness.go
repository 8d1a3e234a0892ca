//go:build integration

package integration

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/routelab/nethub/core"
	"github.com/routelab/nethub/state"
)

// HubHarness runs a complete hub on a loopback port and tears it down with
// the test.
type HubHarness struct {
	State *state.State

	t    *testing.T
	errs chan error
}

func StartHub(t *testing.T, mutate func(cfg *state.HubCfg)) *HubHarness {
	t.Helper()

	cfg := state.DefaultHubCfg()
	cfg.Id = "testhub"
	cfg.Listen = "127.0.0.1:0"
	cfg.TopoPush = 100 * time.Millisecond
	state.ExpandHubConfig(&cfg)
	if mutate != nil {
		mutate(&cfg)
	}

	h := &HubHarness{t: t, errs: make(chan error, 1)}
	go func() {
		h.errs <- core.Start(cfg, slog.LevelDebug, &h.State)
	}()

	require.Eventually(t, func() bool {
		return h.State != nil && h.State.Started.Load() && h.State.BoundAddr != ""
	}, 5*time.Second, 10*time.Millisecond, "hub did not come up")
	return h
}

func (h *HubHarness) BaseURL() string {
	return "http://" + h.State.BoundAddr
}

// Stop cancels the hub and waits for the dispatch loop to return, so leak
// detection sees a fully drained process.
func (h *HubHarness) Stop() {
	h.t.Helper()
	h.State.Cancel(errors.New("test finished"))
	select {
	case err := <-h.errs:
		require.NoError(h.t, err)
	case <-time.After(5 * time.Second):
		h.t.Fatal("hub did not shut down")
	}
}

func (h *HubHarness) DialObserver() *websocket.Conn {
	h.t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws", h.State.BoundAddr), nil)
	require.NoError(h.t, err)
	return conn
}

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// WaitForFrame reads observer frames until pred accepts one.
func WaitForFrame(t *testing.T, conn *websocket.Conn, timeout time.Duration, pred func(f frame) bool) frame {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var f frame
		require.NoError(t, json.Unmarshal(data, &f))
		if pred(f) {
			return f
		}
	}
	t.Fatal("no matching frame before deadline")
	return frame{}
}
