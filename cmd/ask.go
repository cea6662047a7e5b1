// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	stderrors "errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlagent/cli/internal/assistant"
	"sqlagent/cli/internal/errors"
)

// errReported marks a failure that has already been shown to the user.
var errReported = stderrors.New("failure already reported")

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer catalog questions interactively or once",
	Long: `The ask command checks the configuration, verifies the database connection and
then answers questions about the product catalog. With a question argument it
answers once and exits; otherwise it starts an interactive session that ends
with "exit", "quit", "sair", Ctrl+C or Ctrl+D.`,
	Args: cobra.ArbitraryArgs,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	stopSpinner := startAreaSpinner("connecting to the database")
	db, err := openDatabase(ctx, cfg)
	stopSpinner()
	if err != nil {
		return reportConnError(err)
	}
	defer db.Close()

	a, closer, err := buildAgent(cfg, db)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	session := &assistant.Session{Agent: a, Timeout: cfg.Agent.Timeout, Verbose: verbose}
	p := terminalPresenter{}

	if len(args) > 0 {
		return askOnce(ctx, session, p, strings.Join(args, " "))
	}
	return interactive(ctx, session, p)
}

func askOnce(ctx context.Context, s *assistant.Session, p terminalPresenter, question string) error {
	done := p.Thinking()
	answer, err := s.Ask(ctx, question)
	done()
	if err != nil {
		p.Failure(err)
		return errReported
	}
	p.Answer(answer)
	return nil
}

func interactive(ctx context.Context, s *assistant.Session, p terminalPresenter) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            pterm.FgCyan.Sprint("catalog") + pterm.FgGray.Sprint(">") + " ",
		HistoryFile:       historyFile(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return errors.Wrap(errors.AgentSetupFailed, "could not open the terminal", err)
	}
	defer rl.Close()

	// SIGTERM does not reach a line read in raw mode; closing the reader ends it.
	go func() {
		<-ctx.Done()
		rl.Close()
	}()

	pterm.Info.Println("Ask anything about the product catalog. Type 'exit' to leave.")
	if err := s.Loop(ctx, rl, p); err != nil {
		return err
	}
	pterm.Println("Bye!")
	return nil
}
