// Package export serializes listing rows into downloadable CSV and PDF
// artifacts. Both writers consume the same Table so the two formats always
// carry the same rows and columns in the same order.
package export

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNoColumns     = errors.New("export: at least one column is required")
	ErrUnknownFormat = errors.New("export: unknown format")
)

// Value is a single exported field: either text or a number.
type Value struct {
	text    string
	number  float64
	numeric bool
}

// Text builds a text value.
func Text(s string) Value { return Value{text: s} }

// Number builds a numeric value.
func Number(f float64) Value { return Value{number: f, numeric: true} }

// Int builds a numeric value from an int.
func Int(n int) Value { return Number(float64(n)) }

// IsNumber reports whether the value is numeric.
func (v Value) IsNumber() bool { return v.numeric }

// IsEmpty reports whether the value is blank text.
func (v Value) IsEmpty() bool { return !v.numeric && strings.TrimSpace(v.text) == "" }

// String renders the value without any quoting.
func (v Value) String() string {
	if v.numeric {
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	}
	return v.text
}

// Column names one exported field and how to extract it from a record.
type Column[R any] struct {
	Name    string
	Extract func(R) Value
}

// Table is the format-neutral export payload.
type Table struct {
	Headers []string
	Rows    [][]Value
}

// BuildTable extracts every column of every row, preserving order.
func BuildTable[R any](columns []Column[R], rows []R) (Table, error) {
	if len(columns) == 0 {
		return Table{}, ErrNoColumns
	}
	table := Table{
		Headers: make([]string, len(columns)),
		Rows:    make([][]Value, 0, len(rows)),
	}
	for i, col := range columns {
		if col.Extract == nil {
			return Table{}, fmt.Errorf("export: column %q has no extractor", col.Name)
		}
		table.Headers[i] = col.Name
	}
	for _, row := range rows {
		values := make([]Value, len(columns))
		for i, col := range columns {
			values[i] = col.Extract(row)
		}
		table.Rows = append(table.Rows, values)
	}
	return table, nil
}

// Format is an export file format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts csv or pdf, case-insensitively.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownFormat, value)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Filename builds "<Name>.<ext>".
func Filename(name string, format Format) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Export"
	}
	return name + "." + string(format)
}
