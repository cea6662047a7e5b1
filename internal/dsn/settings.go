// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import "strings"

// Settings are the discrete connection values read from the environment.
type Settings struct {
	Driver   string // sqlserver (default), postgresql, mysql or sqlite
	DSN      string // full connection string; overrides the fields below
	Server   string
	Database string
	User     string
	Password string
}

// FromSettings builds connection info from either the DSN or the discrete
// server/database/user/password values.
func FromSettings(s Settings) (*Info, error) {
	if strings.TrimSpace(s.DSN) != "" {
		info, err := ParseInfo(s.DSN)
		if err != nil {
			return nil, err
		}
		if info.Password == "" && s.Password != "" {
			info.Password = s.Password
		}
		return info, nil
	}

	t := ParseDBType(s.Driver)
	info := &Info{
		Type:     t,
		User:     s.User,
		Password: s.Password,
		Database: s.Database,
		Params:   map[string]string{},
	}

	switch t {
	case DBTypeUnknown:
		return nil, NewParseError("", "unsupported driver "+s.Driver, "use sqlserver, postgresql, mysql or sqlite")
	case DBTypeSQLite:
		if info.Database == "" {
			info.Database = s.Server
		}
		if info.Database == "" {
			return nil, NewParseError("", "missing database path", "set DB_DATABASE to the SQLite file")
		}
		return info, nil
	case DBTypeSQLServer:
		info.Host, info.Port, info.Instance = SplitServer(s.Server)
		if info.Port == "" && info.Instance == "" {
			info.Port = "1433"
		}
	default:
		info.Host, info.Port, _ = SplitServer(s.Server)
	}

	if strings.TrimSpace(info.Host) == "" {
		return nil, NewParseError("", "missing server", "set DB_SERVER")
	}
	if strings.TrimSpace(info.Database) == "" {
		return nil, NewParseError("", "missing database name", "set DB_DATABASE")
	}
	return info, nil
}
