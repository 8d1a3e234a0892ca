package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var hubConfigPath = "hub.yaml"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nethub",
	Short: "Network State Hub CLI",
	Long: `Nethub is the coordination point for distance-vector routing simulations.
It collects node check-ins, queues operator commands for pull-based delivery,
derives a live topology graph, and multiplexes interactive console sessions
over a single observer channel.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "hub",
		Title: "Hub Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "sim",
		Title: "Simulation Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&hubConfigPath, "config", "c", hubConfigPath, "hub config file")
}
