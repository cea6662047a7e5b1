// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn parses, validates and normalizes database connection strings.
// SQL Server is the default backend; PostgreSQL, MySQL and SQLite are also
// accepted. Connection details can come either from a single DSN or from the
// separate DB_SERVER / DB_DATABASE / DB_USER / DB_PASSWORD settings.
package dsn

import "fmt"

// DBType represents the type of database
type DBType string

const (
	DBTypeSQLServer  DBType = "sqlserver"
	DBTypePostgreSQL DBType = "postgresql"
	DBTypeMySQL      DBType = "mysql"
	DBTypeSQLite     DBType = "sqlite"
	DBTypeUnknown    DBType = "unknown"
)

// Info contains parsed information from a DSN string
type Info struct {
	Type     DBType
	Host     string
	Port     string
	Instance string // SQL Server named instance, e.g. SQLEXPRESS
	User     string
	Password string
	Database string // database name, or file path for SQLite
	Params   map[string]string
	Original string
}

// String returns the DSN the info was parsed from.
func (d *Info) String() string {
	return d.Original
}

// Resolver is an interface for database-specific DSN resolution
type Resolver interface {
	// Parse parses a DSN string and returns normalized DSN info
	Parse(dsn string) (*Info, error)

	// Normalize converts DSN info to the connection string the driver expects
	Normalize(info *Info) (string, error)

	// Validate checks if the DSN is valid for the database type
	Validate(dsn string) error
}

// ParseError represents an error that occurred during DSN parsing
type ParseError struct {
	DSN    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid DSN format: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid DSN format: %s", e.Reason)
}

// NewParseError creates a new ParseError
func NewParseError(dsn, reason, hint string) *ParseError {
	return &ParseError{
		DSN:    dsn,
		Reason: reason,
		Hint:   hint,
	}
}
