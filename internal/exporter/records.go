package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"epicli/pkg/contracts/domain"
)

// Options configures delimited record export.
type Options struct {
	Delimiter rune // defaults to ','
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CoreHeaders are the fixed leading columns of every export.
func CoreHeaders() []string {
	headers := make([]string, 0, 2+len(domain.MetricRoles))
	headers = append(headers, string(domain.RoleDate), string(domain.RoleLocation))
	for _, role := range domain.MetricRoles {
		headers = append(headers, string(role))
	}
	return headers
}

// Headers returns the export header for records: the fixed columns plus the
// extra columns of the first record. Extras that only later records carry
// are not exported.
func Headers(records []domain.Record) []string {
	headers := CoreHeaders()
	if len(records) > 0 {
		headers = append(headers, records[0].Extra.Keys()...)
	}
	return headers
}

// Rows converts records to export rows aligned with Headers(records).
func Rows(records []domain.Record) [][]string {
	var extraKeys []string
	if len(records) > 0 {
		extraKeys = records[0].Extra.Keys()
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = recordToRow(r, extraKeys)
	}
	return rows
}

func recordToRow(r domain.Record, extraKeys []string) []string {
	row := make([]string, 0, 2+len(domain.MetricRoles)+len(extraKeys))
	row = append(row, formatDate(r.Date), r.Location)
	for _, role := range domain.MetricRoles {
		row = append(row, formatInt(r.Metric(role)))
	}
	for _, key := range extraKeys {
		v, _ := r.Extra.Get(key)
		row = append(row, v)
	}
	return row
}

// ExportCSV writes records as delimited text to w.
func ExportCSV(w io.Writer, records []domain.Record, opts Options) error {
	if opts.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		writer.Comma = opts.Delimiter
	}

	if err := writer.Write(Headers(records)); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, row := range Rows(records) {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportText renders records as comma-delimited text.
func ExportText(records []domain.Record) (string, error) {
	var buf bytes.Buffer
	if err := ExportCSV(&buf, records, Options{}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
