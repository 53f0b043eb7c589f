package fileio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyTable        = errors.New("table has no rows")
)

// Table — прочитанный лист: заголовки в порядке колонок и строки как map[header]value.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// ReadAny выбирает парсер по расширению. headerRow — номер строки заголовков (1-based).
func ReadAny(r io.Reader, filename string, headerRow int) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx", ".xlsm":
		return readXLSX(r, headerRow)
	case ".xls":
		return readXLS(r, headerRow)
	case ".csv", ".txt":
		return readCSV(r, headerRow)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
}

func buildTable(rows [][]string, headerRow int) (*Table, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}
	if headerRow < 1 {
		headerRow = 1
	}
	if headerRow > len(rows) {
		return nil, fmt.Errorf("header row %d is beyond the last row %d", headerRow, len(rows))
	}
	h := pickHeader(rows, headerRow)
	return &Table{Headers: h, Rows: rowsToMaps(rows, h, headerRow)}, nil
}

// pickHeader — берёт строку заголовков и подставляет Column N для пустых.
// Повторяющиеся заголовки получают суффикс, чтобы не затирать значения.
func pickHeader(rows [][]string, headerRow int) []string {
	h := rows[headerRow-1]
	out := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, v := range h {
		v = normalizeCell(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		if n := seen[v]; n > 0 {
			seen[v] = n + 1
			v = fmt.Sprintf("%s (%d)", v, n+1)
		} else {
			seen[v] = 1
		}
		out[i] = v
	}
	return out
}

// rowsToMaps — конвертирует AoA в []map по заголовкам, пропуская полностью пустые строки.
func rowsToMaps(rows [][]string, headers []string, headerRow int) []map[string]string {
	var out []map[string]string
	for r := headerRow; r < len(rows); r++ {
		rec := rows[r]
		m := make(map[string]string, len(headers))
		empty := true
		for c := 0; c < len(headers); c++ {
			var v string
			if c < len(rec) {
				v = rec[c]
			}
			if strings.TrimSpace(v) != "" {
				empty = false
			}
			m[headers[c]] = v
		}
		if !empty {
			out = append(out, m)
		}
	}
	return out
}

// normalizeCell: NBSP/NNBSP → пробел, обрезка по краям.
func normalizeCell(s string) string {
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ").Replace(s)
	return strings.TrimSpace(s)
}
