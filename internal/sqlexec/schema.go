// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// SchemaInfo holds cached metadata about one table.
type SchemaInfo struct {
	// TableName is the table name as requested
	TableName string
	// Columns lists the table columns in ordinal order
	Columns []Column
}

// HasColumn reports whether the table has a column with the given name,
// compared case-insensitively.
func (s *SchemaInfo) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// SchemaInspector provides database schema inspection and caching capabilities.
// It queries the catalog views for column metadata and caches results to
// minimize database roundtrips.
type SchemaInspector struct {
	db    DB
	cache map[string]*SchemaInfo
	mu    sync.RWMutex
}

// NewSchemaInspector creates a new SchemaInspector over db.
func NewSchemaInspector(db DB) *SchemaInspector {
	return &SchemaInspector{
		db:    db,
		cache: make(map[string]*SchemaInfo),
	}
}

// GetSchemaInfo retrieves or caches schema information for a table.
func (si *SchemaInspector) GetSchemaInfo(ctx context.Context, tableName string) (*SchemaInfo, error) {
	si.mu.RLock()
	if info, exists := si.cache[tableName]; exists {
		si.mu.RUnlock()
		return info, nil
	}
	si.mu.RUnlock()

	cols, err := si.db.Columns(ctx, tableName)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %q not found", tableName)
	}
	info := &SchemaInfo{TableName: tableName, Columns: cols}

	si.mu.Lock()
	si.cache[tableName] = info
	si.mu.Unlock()

	return info, nil
}

// ClearCache clears all cached schema information.
// Call it after statements that change table structure.
func (si *SchemaInspector) ClearCache() {
	si.mu.Lock()
	defer si.mu.Unlock()
	si.cache = make(map[string]*SchemaInfo)
}

// Describe renders a CREATE TABLE style description of the table followed
// by up to sampleRows example rows, the shape the agent's schema tool returns.
func (si *SchemaInspector) Describe(ctx context.Context, tableName string, sampleRows int) (string, error) {
	info, err := si.GetSchemaInfo(ctx, tableName)
	if err != nil {
		return "", err
	}
	d := si.db.Dialect()

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", d.QuoteIdent(tableName))
	for i, c := range info.Columns {
		fmt.Fprintf(&b, "\t%s %s", d.QuoteIdent(c.Name), strings.ToUpper(c.Type))
		if !c.Nullable {
			b.WriteString(" NOT NULL")
		}
		if i < len(info.Columns)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")

	if sampleRows <= 0 {
		return b.String(), nil
	}
	res, err := si.db.Run(ctx, d.SampleQuery(tableName, sampleRows))
	if err != nil {
		// The description is still useful without samples.
		fmt.Fprintf(&b, "\n\n/*\nsample rows unavailable: %v\n*/", err)
		return b.String(), nil
	}
	fmt.Fprintf(&b, "\n\n/*\n%d rows from %s table:\n%s\n*/", sampleRows, tableName, res.String())
	return b.String(), nil
}
