// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"

	"sqlagent/cli/internal/agent"
	"sqlagent/cli/internal/bridge"
	"sqlagent/cli/internal/config"
	"sqlagent/cli/internal/dsn"
	"sqlagent/cli/internal/errors"
	"sqlagent/cli/internal/keychain"
	"sqlagent/cli/internal/logging"
	"sqlagent/cli/internal/sqlexec"
	"sqlagent/cli/internal/xdg"
)

// loadConfig resolves configuration and sets up the logger from it. The
// keychain is only a fallback, so a system without one is not an error.
func loadConfig() (*config.Config, error) {
	opts := config.Options{ConfigFile: configFile, EnvFile: envFile}
	if km, err := keychain.GetManager(); err == nil {
		opts.Secrets = km
	}
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, errors.Wrap(errors.ConfigMissing, "could not load configuration", err)
	}
	logging.Setup(cfg.Log.Level, verbose, cfg.Log.Format == "json")
	if opts.Secrets == nil {
		log.Debug().Msg("keychain unavailable; secrets come from the environment only")
	}
	return cfg, nil
}

// openDatabase performs the single connectivity check of startup.
func openDatabase(ctx context.Context, cfg *config.Config) (sqlexec.DB, error) {
	info, err := dsn.FromSettings(cfg.DB)
	if err != nil {
		return nil, errors.Wrap(errors.ConfigMissing, "invalid database settings", err)
	}
	log.Debug().Str("driver", string(info.Type)).Str("host", info.Host).Str("database", info.Database).Msg("connecting to database")
	db, err := sqlexec.Open(ctx, info)
	if err != nil {
		return nil, errors.Wrap(errors.ConnectFailed, "could not connect to the database", err)
	}
	return db, nil
}

// buildAgent constructs the agent once per process: a remote one when an
// agent address is configured, the local SQL agent otherwise. db may be
// nil for a remote agent. The returned closer is nil for a local agent.
func buildAgent(cfg *config.Config, db sqlexec.DB) (agent.Agent, io.Closer, error) {
	if cfg.Agent.RemoteAddr != "" {
		r, err := bridge.New(cfg.Agent.RemoteAddr)
		if err != nil {
			return nil, nil, errors.Wrap(errors.AgentSetupFailed, "could not reach the remote agent", err)
		}
		log.Debug().Str("addr", cfg.Agent.RemoteAddr).Msg("using remote agent")
		return r, r, nil
	}
	if db == nil {
		return nil, nil, errors.New(errors.AgentSetupFailed, "the local agent needs a database connection")
	}

	model := agent.NewOpenAIModel(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
	a := agent.NewCatalogAgent(model, db, agent.ToolConfig{
		IncludeTables: cfg.Agent.IncludeTables,
		SampleRows:    cfg.Agent.SampleRows,
		MaxAttempts:   sqlexec.DefaultMaxAttempts,
	}, agent.WithMaxIterations(cfg.Agent.MaxIterations))
	return a, nil, nil
}

func historyFile() string {
	p, err := xdg.HistoryFile()
	if err != nil {
		log.Debug().Err(err).Msg("prompt history disabled")
		return ""
	}
	return p
}
