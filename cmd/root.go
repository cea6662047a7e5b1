// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface of sqlagent. It implements
// the interactive question loop, the HTTP and gRPC server, spreadsheet sync
// and connection management using the Cobra CLI framework, with pterm for
// terminal output.
package cmd

import (
	"errors"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlagent/cli/internal/logging"
)

var (
	showVersion bool
	configFile  string
	envFile     string
	verbose     bool
)

// rootCmd answers catalog questions when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "sqlagent [question]",
	Short: "Ask questions about the product catalog in plain language",
	Long: `sqlagent turns natural-language questions into SQL over the product catalog
database and answers them. Run it without arguments for an interactive session,
or pass a question to get a single answer.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			printVersion()
			return nil
		}
		return runAsk(cmd, args)
	},
}

// Execute runs the CLI application and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			pterm.Error.Println(logging.PresentDetail(err))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $XDG_CONFIG_HOME/sqlagent/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show the reasoning steps and debug logs")
}
