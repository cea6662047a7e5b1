// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlagent/cli/internal/dsn"
	"sqlagent/cli/internal/logging"
)

// dbinfoCmd shows the resolved connection string with credentials masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show current database connection string",
	Long: `The dbinfo command displays the connection string sqlagent would use, built
from the environment, the config file and the keychain, with credentials
masked. Use it to check which database you're connected to without exposing
the password.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		info, err := dsn.FromSettings(cfg.DB)
		if err != nil {
			pterm.Warning.Println("No usable database connection configured: " + logging.PresentDetail(err))
			pterm.Println("   Please run: sqlagent connect")
			return nil
		}
		conn, err := dsn.ConnString(info)
		if err != nil {
			return err
		}

		agentLine := "local (" + cfg.LLM.Model + ")"
		if cfg.Agent.RemoteAddr != "" {
			agentLine = "remote " + cfg.Agent.RemoteAddr
		}
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Database Connection")).
			WithPadding(1).
			Println(logging.Mask(conn) + "\n\nagent: " + agentLine)
		pterm.Println()
		pterm.Println("To update this connection, run: sqlagent connect")
		pterm.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
}
