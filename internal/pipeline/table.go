package pipeline

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is an in-memory spreadsheet: ordered headers plus raw string cells.
// Rows may be ragged (excelize trims trailing empty cells).
type Table struct {
	Headers []string
	Rows    [][]string
}

// ReadWorkbook parses the first sheet of an xlsx document. The first row is
// taken as the header row.
func ReadWorkbook(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}
	return &Table{Headers: rows[0], Rows: rows[1:]}, nil
}

// Project applies a header mapping and returns one record per row, keyed by
// canonical field name. Columns the mapping does not cover keep their cleaned
// header name, so a sheet already carrying canonical names still resolves.
// When several source columns collapse onto the same canonical name, the
// first non-empty cell per row wins.
func (t *Table) Project(mapping map[string]string) []map[string]string {
	names := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		if target, ok := mapping[h]; ok {
			names[i] = target
		} else {
			names[i] = snakeHeader(h)
		}
	}

	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(names))
		for i, name := range names {
			if name == "" {
				continue
			}
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if cur, ok := rec[name]; ok && strings.TrimSpace(cur) != "" {
				continue
			}
			rec[name] = cell
		}
		out = append(out, rec)
	}
	return out
}

// snakeHeader is the light cleanup applied to unmapped headers: trimmed,
// lowercased, spaces to underscores.
func snakeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}
