package impl

import (
	"bufio"
	"io"
	"os/exec"
	"sync"

	"github.com/routelab/nethub/state"
)

// ProcWatch spawns the configured child processes and feeds their merged
// stdout/stderr through the log fan-out and the routing table extractor, so
// nodes that only print their tables still show up on the map.
type ProcWatch struct {
	wg sync.WaitGroup
}

func (p *ProcWatch) Init(s *state.State) error {
	for _, w := range s.Watch {
		if len(w.Command) == 0 {
			s.Log.Warn("watch entry has no command, skipping", "name", w.Name)
			continue
		}
		cmd := exec.CommandContext(s.Context, w.Command[0], w.Command[1:]...)
		cmd.Dir = w.Dir
		// the context kills only the direct child; without a wait delay,
		// Wait blocks until every inheritor of the output pipe exits
		cmd.WaitDelay = procWaitDelay

		pr, pw := io.Pipe()
		cmd.Stdout = pw
		cmd.Stderr = pw

		if err := cmd.Start(); err != nil {
			pw.Close()
			pr.Close()
			s.Log.Error("failed to start watched process", "name", w.Name, "error", err)
			continue
		}
		s.Log.Info("watching process", "name", w.Name, "pid", cmd.Process.Pid)

		p.wg.Add(2)
		go func(w state.WatchCfg, cmd *exec.Cmd, pw *io.PipeWriter) {
			defer p.wg.Done()
			err := cmd.Wait()
			pw.CloseWithError(err)
			if s.Stopping.Load() {
				return
			}
			s.Log.Warn("watched process exited", "name", w.Name, "error", err)
		}(w, cmd, pw)

		go func(w state.WatchCfg, pr *io.PipeReader) {
			defer p.wg.Done()
			p.pump(s, w, pr)
		}(w, pr)
	}
	return nil
}

func (p *ProcWatch) Cleanup(s *state.State) error {
	// CommandContext kills the children once the root context is cancelled
	p.wg.Wait()
	return nil
}

func (p *ProcWatch) pump(s *state.State, w state.WatchCfg, pr *io.PipeReader) {
	defer pr.Close()
	parser := NewTableParser()
	sc := bufio.NewScanner(pr)
	sc.Buffer(make([]byte, 4096), maxMessageSize)
	for sc.Scan() {
		line := sc.Text()
		s.Observers.Log("[" + w.Name + "] " + line)
		upd, ok := parser.Feed(line)
		if !ok {
			continue
		}
		s.Store.UpdateNode(upd.Id, state.Report{
			NodeId:       upd.Id,
			RoutingTable: upd.Table,
		})
		s.Observers.Topo(upd)
		s.Log.Debug("routing table extracted", "name", w.Name, "node", upd.Id, "routes", len(upd.Table))
	}
}
