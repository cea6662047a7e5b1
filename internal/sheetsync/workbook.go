// Package sheetsync keeps a catalog table in step with a spreadsheet export:
// it adds columns the sheet has and the table lacks, then upserts every row
// by a key column. It is a trusted maintenance path, so its statements do
// not go through the guard classifier.
package sheetsync

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrFileNotFound is returned when the workbook path does not exist.
var ErrFileNotFound = errors.New("spreadsheet file not found")

// Sheet is the tabular content of one worksheet. The first row is the
// header; every row in Rows has exactly len(Columns) cells.
type Sheet struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// ReadWorkbook loads one worksheet of an .xlsx file. An empty sheet name
// selects the first worksheet. Fully empty rows are dropped and short rows
// are padded with empty cells.
func ReadWorkbook(path, sheet string) (*Sheet, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = list[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	out := &Sheet{Name: sheet}
	seen := make(map[string]bool)
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, fmt.Errorf("sheet %q: header cell %d is empty", sheet, i+1)
		}
		if seen[strings.ToLower(h)] {
			return nil, fmt.Errorf("sheet %q: duplicate column %q", sheet, h)
		}
		seen[strings.ToLower(h)] = true
		out.Columns = append(out.Columns, h)
	}

	for _, r := range rows[1:] {
		if blank(r) {
			continue
		}
		row := make([]string, len(out.Columns))
		copy(row, r)
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// Index returns the position of column name, compared case-insensitively,
// or -1.
func (s *Sheet) Index(name string) int {
	for i, c := range s.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
