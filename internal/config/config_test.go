package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlagent/cli/internal/dsn"
	apperrors "sqlagent/cli/internal/errors"
	"sqlagent/cli/internal/keychain"
)

type fakeSecrets map[string]string

func (f fakeSecrets) Load(key string) (string, error) {
	if v, ok := f[key]; ok {
		return v, nil
	}
	return "", keychain.ErrNotFound
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range bindings {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

func isolated(t *testing.T) Options {
	t.Helper()
	clearEnv(t)
	dir := t.TempDir()
	return Options{
		ConfigFile: filepath.Join(dir, "config.yaml"),
		EnvFile:    filepath.Join(dir, ".env"),
	}
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(isolated(t))
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, c.LLM.Model)
	assert.Equal(t, DefaultTimeout, c.Agent.Timeout)
	assert.Equal(t, DefaultMaxIterations, c.Agent.MaxIterations)
	assert.Equal(t, DefaultSampleRows, c.Agent.SampleRows)
	assert.Equal(t, []string{"Admat_OPCOM", "Opcom"}, c.Agent.IncludeTables)
	assert.Equal(t, DefaultAPIAddr, c.API.Addr)
}

func TestLoadFromEnv(t *testing.T) {
	opts := isolated(t)
	t.Setenv(EnvDBServer, "FAMILIA")
	t.Setenv(EnvDBDatabase, "Projeto_Opcom")
	t.Setenv(EnvDBUser, "AgenteVirtual")
	t.Setenv(EnvDBPassword, "pw")
	t.Setenv(EnvOpenAIKey, "sk-test")
	t.Setenv(EnvAgentTimeout, "45")
	t.Setenv(EnvIncludeTables, "Produtos, Estoque")

	c, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "FAMILIA", c.DB.Server)
	assert.Equal(t, "pw", c.DB.Password)
	assert.Equal(t, 45*time.Second, c.Agent.Timeout)
	assert.Equal(t, []string{"Produtos", "Estoque"}, c.Agent.IncludeTables)
	assert.NoError(t, c.Validate())
}

func TestLoadEnvFile(t *testing.T) {
	opts := isolated(t)
	require.NoError(t, os.WriteFile(opts.EnvFile, []byte("DB_SERVER=fromfile\nAGENT_TIMEOUT=2m\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv(EnvDBServer); os.Unsetenv(EnvAgentTimeout) })

	c, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "fromfile", c.DB.Server)
	assert.Equal(t, 2*time.Minute, c.Agent.Timeout)
}

func TestLoadConfigFileAndEnvPrecedence(t *testing.T) {
	opts := isolated(t)
	yaml := "db:\n  server: yamlhost\n  database: yamldb\nagent:\n  include_tables:\n    - A\n    - B\n"
	require.NoError(t, os.WriteFile(opts.ConfigFile, []byte(yaml), 0o600))
	t.Setenv(EnvDBServer, "envhost")

	c, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "envhost", c.DB.Server)
	assert.Equal(t, "yamldb", c.DB.Database)
	assert.Equal(t, []string{"A", "B"}, c.Agent.IncludeTables)
}

func TestLoadSecretsFallback(t *testing.T) {
	opts := isolated(t)
	opts.Secrets = fakeSecrets{keychain.KeyDBPassword: "kc-pass", keychain.KeyOpenAIAPIKey: "kc-key"}
	t.Setenv(EnvOpenAIKey, "env-key")

	c, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "kc-pass", c.DB.Password)
	assert.Equal(t, "env-key", c.LLM.APIKey)
}

func TestLoadBadTimeout(t *testing.T) {
	opts := isolated(t)
	t.Setenv(EnvAgentTimeout, "soon")
	_, err := Load(opts)
	assert.Error(t, err)
}

func TestValidateNamesEveryMissingSetting(t *testing.T) {
	c := &Config{DB: dsn.Settings{Server: "h"}}
	err := c.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ConfigMissing))
	for _, name := range []string{EnvDBDatabase, EnvDBUser, EnvDBPassword, EnvOpenAIKey} {
		assert.Contains(t, err.Error(), name)
	}
	assert.NotContains(t, err.Error(), EnvDBServer)
}

func TestValidateRemoteAgentNeedsNoModelKey(t *testing.T) {
	c := &Config{
		DB:    dsn.Settings{DSN: "sqlite://catalog.db"},
		Agent: AgentConfig{RemoteAddr: "grpc://localhost:50051"},
	}
	assert.NoError(t, c.Validate())

	c = &Config{DB: dsn.Settings{Driver: "sqlite"}, LLM: LLMConfig{APIKey: "k"}}
	var e *apperrors.E
	require.True(t, errors.As(c.Validate(), &e))
	assert.Contains(t, e.Message, EnvDBDatabase)
}

func TestSaveConnection(t *testing.T) {
	clearEnv(t)
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveConnection(file, dsn.Settings{Server: "FAMILIA", Database: "Projeto_Opcom", User: "u", Password: "secret"}))

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "FAMILIA")
	assert.NotContains(t, string(data), "secret")

	c, err := Load(Options{ConfigFile: file, EnvFile: filepath.Join(t.TempDir(), ".env")})
	require.NoError(t, err)
	assert.Equal(t, "Projeto_Opcom", c.DB.Database)
}
