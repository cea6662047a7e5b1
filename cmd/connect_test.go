package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sqlagent/cli/internal/dsn"
)

func TestSettingsFromInfo(t *testing.T) {
	tests := []struct {
		name string
		info dsn.Info
		want dsn.Settings
	}{
		{
			name: "sql server with port",
			info: dsn.Info{Type: dsn.DBTypeSQLServer, Host: "db01", Port: "1433", User: "sa", Password: "pw", Database: "Catalog"},
			want: dsn.Settings{Driver: "sqlserver", Server: "db01,1433", User: "sa", Password: "pw", Database: "Catalog"},
		},
		{
			name: "sql server instance",
			info: dsn.Info{Type: dsn.DBTypeSQLServer, Host: "db01", Instance: "SQLEXPRESS", Database: "Catalog"},
			want: dsn.Settings{Driver: "sqlserver", Server: `db01\SQLEXPRESS`, Database: "Catalog"},
		},
		{
			name: "postgres",
			info: dsn.Info{Type: dsn.DBTypePostgreSQL, Host: "pg", Port: "5432", User: "u", Database: "d"},
			want: dsn.Settings{Driver: "postgresql", Server: "pg:5432", User: "u", Database: "d"},
		},
		{
			name: "sqlite",
			info: dsn.Info{Type: dsn.DBTypeSQLite, Database: "/tmp/catalog.db"},
			want: dsn.Settings{Driver: "sqlite", Database: "/tmp/catalog.db"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, settingsFromInfo(&tt.info))
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"ask", "serve", "sync", "connect", "dbinfo", "version"} {
		assert.True(t, names[want], want)
	}
}
