package cmd

import (
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/routelab/nethub/core"
	"github.com/routelab/nethub/state"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the hub",
	Long:  `This starts the hub on the current host: the report/command API, the observer websocket and any configured watched processes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := state.DefaultHubCfg()
		file, err := os.ReadFile(hubConfigPath)
		if err != nil {
			panic(err)
		}
		err = yaml.Unmarshal(file, &cfg)
		if err != nil {
			panic(err)
		}
		state.ExpandHubConfig(&cfg)

		err = state.HubConfigValidator(&cfg)
		if err != nil {
			panic(err)
		}

		level := slog.LevelInfo
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			level = slog.LevelDebug
		}

		err = core.Start(cfg, level, nil)
		if err != nil {
			panic(err)
		}
	},
	GroupID: "hub",
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
}
