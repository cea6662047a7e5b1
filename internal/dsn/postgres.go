// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"net/url"
	"strings"
)

// PostgreSQLResolver handles PostgreSQL DSN parsing and normalization
type PostgreSQLResolver struct {
	p urlParser
}

// NewPostgreSQLResolver creates a new PostgreSQL resolver
func NewPostgreSQLResolver() *PostgreSQLResolver {
	return &PostgreSQLResolver{p: urlParser{
		typ:         DBTypePostgreSQL,
		schemes:     []string{"postgresql", "postgres"},
		defaultPort: "5432",
	}}
}

// Parse parses a PostgreSQL DSN string.
func (r *PostgreSQLResolver) Parse(dsn string) (*Info, error) {
	info, path, err := r.p.parse(dsn)
	if err != nil {
		return nil, err
	}
	info.Database = path
	if err := r.p.require(info); err != nil {
		return nil, err
	}
	return info, nil
}

// Normalize renders a postgresql:// URL with encoded credentials for pgx.
func (r *PostgreSQLResolver) Normalize(info *Info) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	var b strings.Builder
	b.WriteString("postgresql://")
	if info.User != "" {
		b.WriteString(url.QueryEscape(info.User))
		if info.Password != "" {
			b.WriteString(":")
			b.WriteString(url.QueryEscape(info.Password))
		}
		b.WriteString("@")
	}
	b.WriteString(info.Host)
	port := info.Port
	if port == "" {
		port = r.p.defaultPort
	}
	b.WriteString(":" + port)
	b.WriteString("/" + info.Database)
	writeQuery(&b, info.Params)
	return b.String(), nil
}

// Validate checks if the DSN is valid for PostgreSQL
func (r *PostgreSQLResolver) Validate(dsn string) error {
	info, err := r.Parse(dsn)
	if err != nil {
		return err
	}
	return validatePort(info)
}
