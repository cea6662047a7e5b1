// Package config loads CLI configuration from the process environment, an
// optional .env file, and an optional YAML file in the XDG config dir.
// Secrets may also come from the OS keychain; they are never written to the
// config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"sqlagent/cli/internal/dsn"
	apperrors "sqlagent/cli/internal/errors"
	"sqlagent/cli/internal/keychain"
	"sqlagent/cli/internal/xdg"
)

// Environment variable names.
const (
	EnvDBServer      = "DB_SERVER"
	EnvDBDatabase    = "DB_DATABASE"
	EnvDBUser        = "DB_USER"
	EnvDBPassword    = "DB_PASSWORD"
	EnvDBDriver      = "DB_DRIVER"
	EnvDBDSN         = "DB_DSN"
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvOpenAIModel   = "OPENAI_MODEL"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	EnvAgentAddr     = "AGENT_GRPC_ADDR"
	EnvAgentTimeout  = "AGENT_TIMEOUT"
	EnvMaxIterations = "AGENT_MAX_ITERATIONS"
	EnvIncludeTables = "INCLUDE_TABLES"
	EnvAPIKey        = "API_KEY"
	EnvAPIAddr       = "API_ADDR"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFormat     = "LOG_FORMAT"
)

// Defaults.
const (
	DefaultModel         = "gpt-3.5-turbo"
	DefaultTimeout       = 30 * time.Second
	DefaultMaxIterations = 5
	DefaultSampleRows    = 3
	DefaultAPIAddr       = ":8000"
	DefaultRateLimit     = 5.0
	DefaultRateBurst     = 10
)

// DefaultIncludeTables is the catalog table set exposed to the agent.
var DefaultIncludeTables = []string{"Admat_OPCOM", "Opcom"}

// viper key -> environment variable
var bindings = map[string]string{
	"db.server":            EnvDBServer,
	"db.database":          EnvDBDatabase,
	"db.user":              EnvDBUser,
	"db.password":          EnvDBPassword,
	"db.driver":            EnvDBDriver,
	"db.dsn":               EnvDBDSN,
	"llm.api_key":          EnvOpenAIKey,
	"llm.model":            EnvOpenAIModel,
	"llm.base_url":         EnvOpenAIBaseURL,
	"agent.grpc_addr":      EnvAgentAddr,
	"agent.timeout":        EnvAgentTimeout,
	"agent.max_iterations": EnvMaxIterations,
	"agent.include_tables": EnvIncludeTables,
	"api.key":              EnvAPIKey,
	"api.addr":             EnvAPIAddr,
	"log.level":            EnvLogLevel,
	"log.format":           EnvLogFormat,
}

// Config holds the resolved settings.
type Config struct {
	DB    dsn.Settings
	LLM   LLMConfig
	Agent AgentConfig
	API   APIConfig
	Log   LogConfig
}

// LLMConfig configures the hosted language model.
type LLMConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// AgentConfig configures the reasoning agent.
type AgentConfig struct {
	// RemoteAddr, when set, routes questions to a remote agent over gRPC
	// instead of running the local agent.
	RemoteAddr    string
	Timeout       time.Duration
	MaxIterations int
	IncludeTables []string
	SampleRows    int
}

// APIConfig configures the HTTP endpoint.
type APIConfig struct {
	Addr      string
	Key       string
	RateLimit float64
	RateBurst int
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string
	Format string
}

// SecretStore is the subset of the keychain used as a fallback for secrets.
type SecretStore interface {
	Load(key string) (string, error)
}

// Options control where configuration is read from.
type Options struct {
	// ConfigFile overrides the default <config dir>/config.yaml.
	ConfigFile string
	// EnvFile is loaded into the process environment when present.
	// Defaults to ".env" in the working directory.
	EnvFile string
	// Secrets is consulted for DB_PASSWORD and OPENAI_API_KEY when the
	// environment does not provide them. May be nil.
	Secrets SecretStore
}

// Load resolves configuration. Environment variables win over the config
// file, which wins over the keychain, which wins over defaults.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", envFile, err)
	}

	v := viper.New()
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}
	v.SetDefault("llm.model", DefaultModel)
	v.SetDefault("agent.max_iterations", DefaultMaxIterations)
	v.SetDefault("agent.sample_rows", DefaultSampleRows)
	v.SetDefault("api.addr", DefaultAPIAddr)
	v.SetDefault("api.rate_limit", DefaultRateLimit)
	v.SetDefault("api.rate_burst", DefaultRateBurst)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	file := opts.ConfigFile
	if file == "" {
		if p, err := Path(); err == nil {
			file = p
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("reading config %s: %w", file, err)
			}
		}
	}

	timeout, err := parseTimeout(v.GetString("agent.timeout"))
	if err != nil {
		return nil, err
	}

	c := &Config{
		DB: dsn.Settings{
			Driver:   v.GetString("db.driver"),
			DSN:      v.GetString("db.dsn"),
			Server:   v.GetString("db.server"),
			Database: v.GetString("db.database"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
		},
		LLM: LLMConfig{
			APIKey:  v.GetString("llm.api_key"),
			Model:   v.GetString("llm.model"),
			BaseURL: v.GetString("llm.base_url"),
		},
		Agent: AgentConfig{
			RemoteAddr:    v.GetString("agent.grpc_addr"),
			Timeout:       timeout,
			MaxIterations: v.GetInt("agent.max_iterations"),
			IncludeTables: parseList(v.GetString("agent.include_tables")),
			SampleRows:    v.GetInt("agent.sample_rows"),
		},
		API: APIConfig{
			Addr:      v.GetString("api.addr"),
			Key:       v.GetString("api.key"),
			RateLimit: v.GetFloat64("api.rate_limit"),
			RateBurst: v.GetInt("api.rate_burst"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
	if len(c.Agent.IncludeTables) == 0 {
		c.Agent.IncludeTables = v.GetStringSlice("agent.include_tables")
	}
	if len(c.Agent.IncludeTables) == 0 {
		c.Agent.IncludeTables = append([]string(nil), DefaultIncludeTables...)
	}
	if c.Agent.MaxIterations <= 0 {
		c.Agent.MaxIterations = DefaultMaxIterations
	}

	if opts.Secrets != nil {
		fill(&c.DB.Password, opts.Secrets, keychain.KeyDBPassword)
		fill(&c.LLM.APIKey, opts.Secrets, keychain.KeyOpenAIAPIKey)
		fill(&c.API.Key, opts.Secrets, keychain.KeyServiceKey)
	}
	return c, nil
}

func fill(dst *string, s SecretStore, key string) {
	if *dst != "" {
		return
	}
	if v, err := s.Load(key); err == nil {
		*dst = v
	}
}

// Validate reports every required setting that is missing, in one error of
// kind ConfigMissing.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.DB.DSN) == "" {
		if dsn.ParseDBType(c.DB.Driver) == dsn.DBTypeSQLite {
			if c.DB.Database == "" {
				missing = append(missing, EnvDBDatabase)
			}
		} else {
			for _, f := range []struct{ name, val string }{
				{EnvDBServer, c.DB.Server},
				{EnvDBDatabase, c.DB.Database},
				{EnvDBUser, c.DB.User},
				{EnvDBPassword, c.DB.Password},
			} {
				if strings.TrimSpace(f.val) == "" {
					missing = append(missing, f.name)
				}
			}
		}
	}
	if c.Agent.RemoteAddr == "" && strings.TrimSpace(c.LLM.APIKey) == "" {
		missing = append(missing, EnvOpenAIKey)
	}
	if len(missing) > 0 {
		return apperrors.New(apperrors.ConfigMissing, "missing required settings: "+strings.Join(missing, ", "))
	}
	return nil
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// SaveConnection writes the non-secret connection settings to the config
// file, preserving any other keys already present.
func SaveConnection(file string, s dsn.Settings) error {
	if file == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		file = p
	}
	v := viper.New()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config %s: %w", file, err)
		}
	}
	v.Set("db.driver", s.Driver)
	v.Set("db.server", s.Server)
	v.Set("db.database", s.Database)
	v.Set("db.user", s.User)
	if err := v.WriteConfigAs(file); err != nil {
		return err
	}
	return os.Chmod(file, 0o600)
}

// parseTimeout accepts Go durations ("45s") or a bare number of seconds.
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTimeout, nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("%s must be positive, got %q", EnvAgentTimeout, s)
		}
		return time.Duration(n * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: use seconds or a duration like 45s", EnvAgentTimeout, s)
	}
	return d, nil
}

func parseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
