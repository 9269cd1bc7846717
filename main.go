package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/etlcraft/snowbridge/cmd"
	"github.com/etlcraft/snowbridge/version"
)

var rootCmd *cobra.Command

func init() {
	rootCmd = &cobra.Command{
		Use:                "snowbridge",
		Short:              "A connector to move tabular data between Snowflake and data pipelines",
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			switch args[0] {
			case "--help", "-h":
				return cmd.Help()
			case "--version", "-v":
				fmt.Println(version.NewSnowbridgeVersion().String())
				return nil
			default:
				return fmt.Errorf("unknown flag: %s\nRun `snowbridge --help` for usage.", args[0])
			}
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Print the version of snowbridge")

	rootCmd.AddCommand(
		// connectors
		cmd.NewSourceCmd(),
		cmd.NewSinkCmd(),

		// actions
		cmd.NewUnloadCmd(),
		cmd.NewCheckCmd(),
	)
}

func main() {
	rootCmd.Execute()
}
