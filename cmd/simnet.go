package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/routelab/nethub/mock"
	"github.com/routelab/nethub/state"
)

// simnetCmd runs a small network of simulated nodes against a hub, for
// development and demos. Topology syntax: "A:B,C" declares node A with
// neighbors B and C; a bare "A" declares an isolated node.
var simnetCmd = &cobra.Command{
	Use:   "simnet [node[:neighbor,...]]...",
	Short: "Run simulated nodes against a hub",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Usage()
			return
		}

		hubURL, _ := cmd.Flags().GetString("hub")
		interval, _ := cmd.Flags().GetDuration("interval")

		nodes := make([]*mock.SimNode, 0, len(args))
		for _, arg := range args {
			id, neighbors, err := parseTopologyArg(arg)
			if err != nil {
				fmt.Printf("Invalid topology %q: %v\n", arg, err)
				os.Exit(-1)
			}
			node := mock.NewSimNode(id, neighbors, hubURL)
			if interval > 0 {
				node.Interval = interval
			}
			nodes = append(nodes, node)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		group, ctx := errgroup.WithContext(ctx)
		for _, node := range nodes {
			group.Go(func() error {
				return node.Run(ctx)
			})
		}
		fmt.Printf("Running %d simulated nodes against %s. Ctrl+C to stop.\n", len(nodes), hubURL)
		err := group.Wait()
		if err != nil && !errors.Is(err, context.Canceled) {
			panic(err)
		}
	},
	GroupID: "sim",
}

func parseTopologyArg(arg string) (state.NodeId, []state.NodeId, error) {
	id, rest, hasNeighbors := strings.Cut(arg, ":")
	if err := state.NameValidator(id); err != nil {
		return "", nil, err
	}
	if !hasNeighbors || rest == "" {
		return state.NodeId(id), nil, nil
	}
	var neighbors []state.NodeId
	for _, n := range strings.Split(rest, ",") {
		n = strings.TrimSpace(n)
		if err := state.NameValidator(n); err != nil {
			return "", nil, err
		}
		neighbors = append(neighbors, state.NodeId(n))
	}
	return state.NodeId(id), neighbors, nil
}

func init() {
	rootCmd.AddCommand(simnetCmd)

	simnetCmd.Flags().String("hub", "http://127.0.0.1:8000", "hub base URL")
	simnetCmd.Flags().Duration("interval", time.Duration(0), "check-in interval, defaults to the node's built-in cadence")
}
