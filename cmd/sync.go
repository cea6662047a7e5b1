// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sqlagent/cli/internal/sheetsync"
)

var (
	syncFile     string
	syncSheet    string
	syncTable    string
	syncKey      string
	syncWatch    bool
	syncSchedule string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Update a catalog table from a spreadsheet",
	Long: `The sync command reads a worksheet and writes it into a table. Columns present
in the sheet but missing from the table are added as text columns; each row is
updated when its key already exists and inserted otherwise. The whole run is
one transaction.

With --watch the sync runs again whenever the file changes; with --schedule it
runs on a cron schedule such as "@every 1h" or "0 6 * * *".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return reportConnError(err)
		}
		defer db.Close()

		syncer := &sheetsync.Syncer{DB: db}
		if err := runSync(ctx, syncer); err != nil {
			return err
		}

		rerun := func() {
			if err := runSync(ctx, syncer); err != nil {
				log.Error().Err(err).Msg("sync failed")
				pterm.Error.Println(syncFailure(syncTable, err))
			}
		}
		switch {
		case syncWatch:
			return sheetsync.Watch(ctx, syncFile, rerun)
		case syncSchedule != "":
			return sheetsync.Schedule(ctx, syncSchedule, rerun)
		}
		return nil
	},
}

func runSync(ctx context.Context, s *sheetsync.Syncer) error {
	sheet, err := sheetsync.ReadWorkbook(syncFile, syncSheet)
	if err != nil {
		return err
	}
	stopSpinner := startAreaSpinner("syncing " + syncTable)
	rep, err := s.Sync(ctx, sheet, syncTable, syncKey)
	stopSpinner()
	if err != nil {
		return err
	}
	pterm.Success.Printfln("%s: %s", syncTable, rep)
	return nil
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringVarP(&syncFile, "file", "f", "Admat.xlsx", "spreadsheet to read")
	syncCmd.Flags().StringVar(&syncSheet, "sheet", "", "worksheet name (default: first sheet)")
	syncCmd.Flags().StringVarP(&syncTable, "table", "t", "admat", "table to update")
	syncCmd.Flags().StringVarP(&syncKey, "key", "k", sheetsync.DefaultKey, "column that identifies a row")
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "sync again whenever the file changes")
	syncCmd.Flags().StringVar(&syncSchedule, "schedule", "", "sync on a cron schedule")
	syncCmd.MarkFlagsMutuallyExclusive("watch", "schedule")
}
