package sheetsync

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"sqlagent/cli/internal/errors"
	"sqlagent/cli/internal/sqlexec"
)

// DefaultKey is the identifier column of the catalog export.
const DefaultKey = "CÓDIGO"

// Report summarizes one sync run.
type Report struct {
	AddedColumns []string
	Inserted     int
	Updated      int
	Skipped      int
}

func (r Report) String() string {
	return fmt.Sprintf("%d inserted, %d updated, %d skipped, %d columns added",
		r.Inserted, r.Updated, r.Skipped, len(r.AddedColumns))
}

// Syncer writes sheets into a database table.
type Syncer struct {
	DB sqlexec.DB
	// Inspector, when set, is the cache shared with the agent tools; it is
	// cleared after columns are added so the agent sees the new shape.
	Inspector *sqlexec.SchemaInspector
}

// Sync adds the sheet columns missing from table and then inserts or
// updates every row, matching rows on the key column. All writes happen in
// one transaction. Rows with an empty key are skipped. Empty cells are
// written as NULL.
func (s *Syncer) Sync(ctx context.Context, sheet *Sheet, table, key string) (Report, error) {
	var rep Report
	if key == "" {
		key = DefaultKey
	}
	keyIdx := sheet.Index(key)
	if keyIdx < 0 {
		return rep, errors.New(errors.SyncFailed, fmt.Sprintf("key column %q not in sheet %q", key, sheet.Name))
	}

	cols, err := s.DB.Columns(ctx, table)
	if err != nil {
		return rep, errors.Wrap(errors.SyncFailed, "read table columns", err)
	}
	if len(cols) == 0 {
		return rep, errors.New(errors.SyncFailed, fmt.Sprintf("table %q not found", table))
	}
	existing := &sqlexec.SchemaInfo{TableName: table, Columns: cols}
	for _, c := range sheet.Columns {
		if !existing.HasColumn(c) {
			rep.AddedColumns = append(rep.AddedColumns, c)
		}
	}

	d := s.DB.Dialect()
	stmts := newStatements(d, table, sheet.Columns, keyIdx)

	err = s.DB.InTx(ctx, func(q sqlexec.Querier) error {
		for _, c := range rep.AddedColumns {
			ddl := fmt.Sprintf("ALTER TABLE %s ADD %s %s", d.QuoteIdent(table), d.QuoteIdent(c), d.TextType)
			if _, err := q.Exec(ctx, ddl); err != nil {
				return fmt.Errorf("add column %q: %w", c, err)
			}
			log.Info().Str("table", table).Str("column", c).Msg("column added")
		}

		for i, row := range sheet.Rows {
			keyVal := strings.TrimSpace(row[keyIdx])
			if keyVal == "" {
				log.Warn().Int("row", i+2).Msg("row without key skipped")
				rep.Skipped++
				continue
			}
			res, err := q.Query(ctx, stmts.count, keyVal)
			if err != nil {
				return fmt.Errorf("look up %s=%s: %w", key, keyVal, err)
			}
			n, err := scalar(res)
			if err != nil {
				return err
			}

			if n > 0 {
				if stmts.update == "" {
					rep.Updated++
					continue
				}
				if _, err := q.Exec(ctx, stmts.update, stmts.updateArgs(row, keyVal)...); err != nil {
					return fmt.Errorf("update %s=%s: %w", key, keyVal, err)
				}
				rep.Updated++
				log.Debug().Str(key, keyVal).Msg("row updated")
				continue
			}
			if _, err := q.Exec(ctx, stmts.insert, cells(row)...); err != nil {
				return fmt.Errorf("insert %s=%s: %w", key, keyVal, err)
			}
			rep.Inserted++
			log.Debug().Str(key, keyVal).Msg("row inserted")
		}
		return nil
	})
	if err != nil {
		return Report{}, errors.Wrap(errors.SyncFailed, "sync "+table, err)
	}

	if len(rep.AddedColumns) > 0 && s.Inspector != nil {
		s.Inspector.ClearCache()
	}
	log.Info().Str("table", table).Str("result", rep.String()).Msg("sync finished")
	return rep, nil
}

type statements struct {
	count, update, insert string
	keyIdx                int
}

func newStatements(d sqlexec.Dialect, table string, columns []string, keyIdx int) statements {
	t := d.QuoteIdent(table)
	k := d.QuoteIdent(columns[keyIdx])

	var set []string
	n := 1
	for i, c := range columns {
		if i == keyIdx {
			continue
		}
		set = append(set, fmt.Sprintf("%s = %s", d.QuoteIdent(c), d.Placeholder(n)))
		n++
	}
	update := ""
	if len(set) > 0 {
		update = fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s", t, strings.Join(set, ", "), k, d.Placeholder(n))
	}

	names := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		names[i] = d.QuoteIdent(c)
		marks[i] = d.Placeholder(i + 1)
	}
	return statements{
		count:  fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = %s", t, k, d.Placeholder(1)),
		update: update,
		insert: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t, strings.Join(names, ", "), strings.Join(marks, ", ")),
		keyIdx: keyIdx,
	}
}

// updateArgs orders the non-key cells first and the key last, matching the
// placeholders of the UPDATE statement.
func (s statements) updateArgs(row []string, key string) []any {
	args := make([]any, 0, len(row))
	for i, v := range row {
		if i != s.keyIdx {
			args = append(args, cell(v))
		}
	}
	return append(args, key)
}

func cells(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = cell(v)
	}
	return out
}

func cell(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func scalar(res *sqlexec.Result) (int64, error) {
	if res == nil || len(res.Rows) == 0 || len(res.Rows[0]) == 0 {
		return 0, fmt.Errorf("count query returned no rows")
	}
	switch v := res.Rows[0][0].(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	default:
		return strconv.ParseInt(fmt.Sprint(v), 10, 64)
	}
}
