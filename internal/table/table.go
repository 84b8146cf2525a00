// Package table reads and writes the CSV-ish tables at both ends of the
// bridge. Archive exports are read with the same tolerances the training
// pipeline used: lines starting with '#' are comments, blank lines are
// skipped, and a row whose cell count disagrees with the header is a
// per-row failure rather than a file-level one.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrEmptyTable is returned when a table has no header row.
var ErrEmptyTable = errors.New("table has no header row")

// Row is one raw record plus its zero-based position in the input (counting
// data rows only). Malformed rows carry Err instead of Cells; order in
// Table.Rows always matches input order either way.
type Row struct {
	Index int
	Cells []string
	Err   error
}

// Table is a raw parsed table.
type Table struct {
	Header []string
	Rows   []Row
}

// ColumnIndex returns the position of the named column in the header
// (case-insensitive), or -1 when the column is absent.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i
		}
	}
	return -1
}

// Read parses a CSV stream. The first non-comment, non-blank record is the
// header; every later record must have the same cell count. Records that do
// not are kept as failed rows so the caller can report them without
// aborting the siblings.
func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.TrimLeadingSpace = true
	// Field-count validation is done here so a bad row is isolated instead
	// of poisoning the stream.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := &Table{Header: header}
	index := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Rows = append(t.Rows, Row{Index: index, Err: fmt.Errorf("parse row: %w", err)})
			index++
			continue
		}
		if isBlank(record) {
			continue
		}
		if len(record) != len(t.Header) {
			t.Rows = append(t.Rows, Row{
				Index: index,
				Err:   fmt.Errorf("row has %d cells, header has %d", len(record), len(t.Header)),
			})
			index++
			continue
		}
		t.Rows = append(t.Rows, Row{Index: index, Cells: record})
		index++
	}
	return t, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Write emits a unified table as CSV.
func Write(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseCurve parses a semicolon-separated list of light-curve flux samples.
// An empty cell means no curve; any unparsable sample discards the whole
// curve (a partial curve would silently shift the topological descriptors).
func ParseCurve(cell string) []float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	parts := strings.Split(cell, ";")
	samples := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil
		}
		samples = append(samples, v)
	}
	return samples
}
