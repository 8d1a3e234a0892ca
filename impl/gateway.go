package impl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/routelab/nethub/state"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the hub trusts its LAN; origin policy is the frontend's problem
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Gateway is the hub's network face: the report/command JSON API, the node
// detail and topology queries, the health probe, the observer websocket,
// and the optional static frontend bundle.
type Gateway struct {
	Hub *Hub

	httpSrv  *http.Server
	listener net.Listener
}

func (g *Gateway) Init(s *state.State) error {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/report", g.handleReport(s))
	mux.HandleFunc("POST /api/command", g.handleCommand(s))
	mux.HandleFunc("GET /api/nodes/{id}", g.handleNodeDetails(s))
	mux.HandleFunc("GET /api/topology", g.handleTopology(s))
	mux.HandleFunc("GET /api/health", g.handleHealth(s))
	mux.HandleFunc("GET /ws", g.handleObserver(s))

	if hasStaticBundle(s.StaticDir) {
		mux.Handle("/", http.FileServer(http.Dir(s.StaticDir)))
	}

	ln, err := net.Listen("tcp", s.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.Listen, err)
	}
	g.listener = ln
	s.BoundAddr = ln.Addr().String()
	g.httpSrv = &http.Server{
		Handler:           withCORS(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := g.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Log.Error("gateway serve failed", "error", err)
			s.Cancel(err)
		}
	}()

	s.Log.Info("gateway listening", "addr", s.BoundAddr, "mode", operatingMode(s.StaticDir))
	return nil
}

func (g *Gateway) Cleanup(s *state.State) error {
	if g.httpSrv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return g.httpSrv.Shutdown(ctx)
}

func (g *Gateway) handleReport(s *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rep state.Report
		var raw map[string]any
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize))
		if err := dec.Decode(&raw); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error"})
			return
		}
		// re-encode so the typed view and the opaque raw payload stay in
		// sync without reading the body twice
		buf, _ := json.Marshal(raw)
		_ = json.Unmarshal(buf, &rep)
		rep.Raw = raw

		if strings.TrimSpace(string(rep.NodeId)) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error"})
			return
		}

		commands := s.Reports.HandleReport(rep)
		if commands == nil {
			commands = []string{}
		}
		writeJSON(w, http.StatusOK, map[string][]string{"commands": commands})
	}
}

func (g *Gateway) handleCommand(s *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			NodeId  string `json:"node_id"`
			Command string `json:"command"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error"})
			return
		}
		if !s.Commands.Submit(state.NodeId(req.NodeId), req.Command) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "queued"})
	}
}

func (g *Gateway) handleNodeDetails(s *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// unknown ids answer with an empty object, not an error
		writeJSON(w, http.StatusOK, s.Store.NodeDetails(state.NodeId(r.PathValue("id"))))
	}
}

func (g *Gateway) handleTopology(s *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.Store.Snapshot()
		writeJSON(w, http.StatusOK, state.BuildTopology(snap, time.Now(), s.LivenessWindow))
	}
}

func (g *Gateway) handleHealth(s *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode := operatingMode(s.StaticDir)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "mode": mode})
	}
}

func (g *Gateway) handleObserver(s *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.Log.Debug("websocket upgrade failed", "error", err)
			return
		}
		client := &Client{
			id:       uuid.NewString(),
			conn:     conn,
			send:     make(chan []byte, sendQueueSize),
			hub:      g.Hub,
			console:  NewConsole(),
			commands: s.Commands,
			log:      s.Log,
		}
		g.Hub.register(client)
		s.Log.Debug("observer connected", "observer", client.id)

		go client.writePump()
		client.sendText(client.console.Welcome())
		go client.readPump()
	}
}

func hasStaticBundle(dir string) bool {
	if dir == "" {
		return false
	}
	st, err := os.Stat(dir)
	return err == nil && st.IsDir()
}

func operatingMode(staticDir string) string {
	if hasStaticBundle(staticDir) {
		return "full"
	}
	return "headless"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
