// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"net"

	"github.com/go-sql-driver/mysql"
)

// MySQLResolver handles mysql:// DSNs and renders them in the
// go-sql-driver format (user:pass@tcp(host:port)/db).
type MySQLResolver struct {
	p urlParser
}

// NewMySQLResolver creates a new MySQL resolver
func NewMySQLResolver() *MySQLResolver {
	return &MySQLResolver{p: urlParser{
		typ:         DBTypeMySQL,
		schemes:     []string{"mysql"},
		defaultPort: "3306",
	}}
}

// Parse parses a mysql:// DSN string.
func (r *MySQLResolver) Parse(dsn string) (*Info, error) {
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

// Normalize renders the driver DSN via mysql.Config.
func (r *MySQLResolver) Normalize(info *Info) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	port := info.Port
	if port == "" {
		port = r.p.defaultPort
	}
	cfg := mysql.NewConfig()
	cfg.User = info.User
	cfg.Passwd = info.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(info.Host, port)
	cfg.DBName = info.Database
	cfg.ParseTime = true
	if len(info.Params) > 0 {
		cfg.Params = make(map[string]string, len(info.Params))
		for k, v := range info.Params {
			cfg.Params[k] = v
		}
	}
	return cfg.FormatDSN(), nil
}

// Validate checks if the DSN is valid for MySQL
func (r *MySQLResolver) Validate(dsn string) error {
	info, err := r.Parse(dsn)
	if err != nil {
		return err
	}
	return validatePort(info)
}
