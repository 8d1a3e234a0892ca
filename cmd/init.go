package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/routelab/nethub/state"
)

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a starter hub configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := state.DefaultHubCfg()
		if len(args) == 1 {
			cfg.Id = args[0]
		}
		err := state.NameValidator(cfg.Id)
		if err != nil {
			fmt.Printf("Invalid name: %s\n", cfg.Id)
			os.Exit(-1)
		}

		out, err := yaml.Marshal(&cfg)
		if err != nil {
			panic(err)
		}

		if _, err := os.Stat(hubConfigPath); err == nil {
			fmt.Printf("%s already exists, not overwriting\n", hubConfigPath)
			os.Exit(-1)
		}
		err = os.WriteFile(hubConfigPath, out, 0700)
		if err != nil {
			panic(err)
		}
		fmt.Printf("Wrote %s\n", hubConfigPath)
	},
	GroupID: "hub",
}

func init() {
	rootCmd.AddCommand(initCmd)
}
