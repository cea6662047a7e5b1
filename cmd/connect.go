// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"net"
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sqlagent/cli/internal/config"
	"sqlagent/cli/internal/dsn"
	"sqlagent/cli/internal/keychain"
	"sqlagent/cli/internal/logging"
	"sqlagent/cli/internal/sqlexec"
	"sqlagent/cli/internal/terminal"
)

const dsnPrompt = "Connection string (empty to enter the fields one by one)"

// connectCmd prompts for connection details, verifies them against the
// database and stores them: secrets in the OS keychain, the rest in the
// config file.
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Configure and verify the database connection",
	Long: `The connect command asks for a connection string, or for the database driver,
server, database name, user and password, then verifies that the database is
reachable. The password (and optionally the OpenAI API key) is stored in the OS
keychain; the other values are written to the config file.

Server formats for SQL Server: host, host,port or host\instance.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		p := terminal.NewPrompter(os.Stdin, os.Stdout)
		raw, err := p.Ask(dsnPrompt, "")
		if err != nil {
			return err
		}

		var s dsn.Settings
		if raw != "" {
			// The string may carry a password; keep it off the screen.
			terminal.ClearPreviousLines(len(dsnPrompt) + 2 + len(raw))
			parsed, err := dsn.ParseInfo(raw)
			if err != nil {
				pterm.Error.Println(logging.PresentDetail(err))
				return errReported
			}
			s = settingsFromInfo(parsed)
		} else if s, err = promptSettings(p, cfg.DB); err != nil {
			return err
		}

		info, err := dsn.FromSettings(s)
		if err != nil {
			pterm.Error.Println(logging.PresentDetail(err))
			return errReported
		}

		stopSpinner := startAreaSpinner("verifying connection")
		db, err := sqlexec.Open(cmd.Context(), info)
		stopSpinner()
		if err != nil {
			return reportConnError(err)
		}
		tables, terr := db.Tables(cmd.Context())
		db.Close()
		if terr != nil {
			log.Debug().Err(terr).Msg("listing tables failed")
		}

		if err := saveConnection(s); err != nil {
			pterm.Warning.Println("Connection verified but not saved: " + logging.PresentDetail(err))
			return nil
		}

		if cfg.LLM.APIKey == "" && cfg.Agent.RemoteAddr == "" {
			if key, err := p.ReadPassword("OpenAI API key (empty to skip)"); err == nil && key != "" {
				if err := saveSecret(keychain.KeyOpenAIAPIKey, key); err != nil {
					pterm.Warning.Println("Could not store the API key: " + logging.PresentDetail(err))
				}
			}
		}

		pterm.Success.Printfln("Database connection verified and saved (%d tables visible).", len(tables))
		pterm.Println("You're ready to run 'sqlagent'.")
		return nil
	},
}

// promptSettings asks for each connection field, offering cur as default.
func promptSettings(p *terminal.Prompter, cur dsn.Settings) (dsn.Settings, error) {
	s := cur
	s.DSN = ""
	var err error
	if s.Driver, err = p.Ask("Driver (sqlserver, postgresql, mysql, sqlite)", string(dsn.ParseDBType(cur.Driver))); err != nil {
		return s, err
	}
	sqlite := dsn.ParseDBType(s.Driver) == dsn.DBTypeSQLite
	if !sqlite {
		if s.Server, err = p.Ask("Server", cur.Server); err != nil {
			return s, err
		}
	}
	if s.Database, err = p.Ask("Database", cur.Database); err != nil {
		return s, err
	}
	if sqlite {
		return s, nil
	}
	if s.User, err = p.Ask("User", cur.User); err != nil {
		return s, err
	}
	pw, err := p.ReadPassword("Password")
	if err != nil {
		return s, err
	}
	if pw != "" {
		s.Password = pw
	}
	return s, nil
}

// settingsFromInfo turns a parsed connection string back into the discrete
// settings stored in the config file.
func settingsFromInfo(info *dsn.Info) dsn.Settings {
	s := dsn.Settings{
		Driver:   string(info.Type),
		Database: info.Database,
		User:     info.User,
		Password: info.Password,
	}
	switch {
	case info.Type == dsn.DBTypeSQLite:
	case info.Type == dsn.DBTypeSQLServer && info.Instance != "":
		s.Server = info.Host + `\` + info.Instance
	case info.Type == dsn.DBTypeSQLServer && info.Port != "":
		s.Server = info.Host + "," + info.Port
	case info.Port != "":
		s.Server = net.JoinHostPort(info.Host, info.Port)
	default:
		s.Server = info.Host
	}
	return s
}

func saveConnection(s dsn.Settings) error {
	if s.Password != "" {
		if err := saveSecret(keychain.KeyDBPassword, s.Password); err != nil {
			return err
		}
	}
	return config.SaveConnection(configFile, s)
}

func saveSecret(key, value string) error {
	km, err := keychain.GetManager()
	if err != nil {
		return err
	}
	return km.Save(key, value)
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
