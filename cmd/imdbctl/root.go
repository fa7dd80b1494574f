package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var envFileFlag string
	var logLevelFlag string
	var jsonFlag bool

	ctx := newCommandContext(&configFlag, &envFileFlag, &logLevelFlag, &jsonFlag)

	rootCmd := &cobra.Command{
		Use:           "imdbctl",
		Short:         "Explore the IMDb tables from the terminal",
		Long:          "imdbctl renders the sections of the explorer dashboard as tables, or as JSON envelopes with --json.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", ".env", "Optional dotenv file loaded before the configuration")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "warn", "Log level written to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Print section envelopes as JSON")

	for _, cmd := range newRatingsCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range newTemporalCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range newEpisodesCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
