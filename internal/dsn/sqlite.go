// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"
)

// SQLiteResolver handles local SQLite database files.
type SQLiteResolver struct{}

// NewSQLiteResolver creates a new SQLite resolver
func NewSQLiteResolver() *SQLiteResolver {
	return &SQLiteResolver{}
}

// Parse accepts sqlite://path, file: URIs, bare paths and ":memory:".
func (r *SQLiteResolver) Parse(dsn string) (*Info, error) {
	path := strings.TrimSpace(dsn)
	if len(path) >= len("sqlite://") && strings.EqualFold(path[:len("sqlite://")], "sqlite://") {
		path = path[len("sqlite://"):]
	}
	if path == "" {
		return nil, NewParseError(dsn, "empty database path", "use sqlite://path/to/file.db")
	}
	return &Info{
		Type:     DBTypeSQLite,
		Database: path,
		Params:   map[string]string{},
		Original: dsn,
	}, nil
}

// Normalize returns the path or file: URI the modernc driver opens.
func (r *SQLiteResolver) Normalize(info *Info) (string, error) {
	if info == nil || info.Database == "" {
		return "", NewParseError("", "empty database path", "")
	}
	return info.Database, nil
}

// Validate checks that a path was supplied.
func (r *SQLiteResolver) Validate(dsn string) error {
	_, err := r.Parse(dsn)
	return err
}
