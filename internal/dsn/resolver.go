// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"
)

// DetectDBType detects the database type from a DSN string
func DetectDBType(dsn string) DBType {
	lower := strings.ToLower(strings.TrimSpace(dsn))

	switch {
	case strings.HasPrefix(lower, "sqlserver://"), strings.HasPrefix(lower, "mssql://"):
		return DBTypeSQLServer
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DBTypePostgreSQL
	case strings.HasPrefix(lower, "mysql://"):
		return DBTypeMySQL
	case strings.HasPrefix(lower, "sqlite://"), strings.HasPrefix(lower, "file:"),
		strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"), lower == ":memory:":
		return DBTypeSQLite
	case strings.Contains(lower, "server=") || strings.Contains(lower, "data source="):
		return DBTypeSQLServer
	}
	return DBTypeUnknown
}

// ParseDBType maps a driver name from configuration to a DBType.
// An empty name selects SQL Server.
func ParseDBType(name string) DBType {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlserver", "mssql":
		return DBTypeSQLServer
	case "postgres", "postgresql", "pgx":
		return DBTypePostgreSQL
	case "mysql", "mariadb":
		return DBTypeMySQL
	case "sqlite", "sqlite3":
		return DBTypeSQLite
	}
	return DBTypeUnknown
}

// ResolverFor returns the resolver for a database type.
func ResolverFor(t DBType) (Resolver, error) {
	switch t {
	case DBTypeSQLServer:
		return NewSQLServerResolver(), nil
	case DBTypePostgreSQL:
		return NewPostgreSQLResolver(), nil
	case DBTypeMySQL:
		return NewMySQLResolver(), nil
	case DBTypeSQLite:
		return NewSQLiteResolver(), nil
	}
	return nil, NewParseError("", "unknown database type", "use sqlserver://, postgres://, mysql:// or a .db file path")
}

func resolverForDSN(dsn string) (Resolver, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}
	r, err := ResolverFor(DetectDBType(dsn))
	if err != nil {
		return nil, NewParseError(dsn, "unknown database type", "use sqlserver://, postgres://, mysql:// or a .db file path")
	}
	return r, nil
}

// Parse parses a DSN string and returns the driver connection string.
// This is the main entry point for DSN parsing
func Parse(dsn string) (string, error) {
	r, err := resolverForDSN(dsn)
	if err != nil {
		return "", err
	}
	info, err := r.Parse(dsn)
	if err != nil {
		return "", err
	}
	return r.Normalize(info)
}

// Validate validates a DSN string without normalizing it
func Validate(dsn string) error {
	r, err := resolverForDSN(dsn)
	if err != nil {
		return err
	}
	return r.Validate(dsn)
}

// ParseInfo parses a DSN string and returns detailed DSN info
func ParseInfo(dsn string) (*Info, error) {
	r, err := resolverForDSN(dsn)
	if err != nil {
		return nil, err
	}
	return r.Parse(dsn)
}

// ConnString normalizes info into the connection string for its driver.
func ConnString(info *Info) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	r, err := ResolverFor(info.Type)
	if err != nil {
		return "", err
	}
	return r.Normalize(info)
}
