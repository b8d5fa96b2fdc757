package dbset

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Delimiter separates fields in a dataset line.
const Delimiter = "|"

// maxLineSize bounds a single dataset line.
const maxLineSize = 4 << 20

// Row is one record: column name to field value.
type Row map[string]string

// Table is a keyed, read-only dataset.
type Table struct {
	name    string
	file    string
	columns []string
	rows    map[string]Row
}

// Name returns the dataset name (the file name without its extension).
func (t *Table) Name() string { return t.name }

// File returns the file name the table was loaded from.
func (t *Table) File() string { return t.file }

// Columns returns the header columns in file order.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// Len returns the number of distinct keys.
func (t *Table) Len() int { return len(t.rows) }

// Keys returns all row keys, sorted.
func (t *Table) Keys() []string {
	return slices.Sorted(maps.Keys(t.rows))
}

// Row returns a copy of the row stored under key.
func (t *Table) Row(key string) (Row, bool) {
	row, ok := t.rows[key]
	if !ok {
		return nil, false
	}
	return maps.Clone(row), true
}

// Get returns one field of the row stored under key.
func (t *Table) Get(key, field string) (string, bool) {
	row, ok := t.rows[key]
	if !ok {
		return "", false
	}
	v, ok := row[field]
	return v, ok
}

// ParseTable reads a dataset from r line by line. file is used for naming only.
func ParseTable(file string, r io.Reader) (*Table, error) {
	t := &Table{
		name: tableName(file),
		file: file,
		rows: make(map[string]Row),
	}

	// Tolerate a leading byte order mark from spreadsheet exports.
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := splitAndTrim(line)
		if t.columns == nil {
			t.columns = fields
			continue
		}

		row := make(Row, len(t.columns))
		for i, col := range t.columns {
			if i < len(fields) {
				row[col] = fields[i]
			} else {
				row[col] = ""
			}
		}
		t.rows[fields[0]] = row
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s line %d: %w", file, lineNo+1, err)
	}

	return t, nil
}

func splitAndTrim(line string) []string {
	fields := strings.Split(line, Delimiter)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func tableName(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
