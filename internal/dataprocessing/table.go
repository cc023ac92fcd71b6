package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"epicli/pkg/contracts/domain"
)

const (
	// classificationRows is how many data rows feed column classification.
	classificationRows = 10
	// minRowFields is the smallest row that can carry a date and a location.
	minRowFields = 2
)

const utf8BOM = "\ufeff"

// Row is one data row as an ordered column name -> trimmed value mapping.
type Row []domain.Field

// Get returns the value of column.
func (r Row) Get(column string) (string, bool) {
	for _, f := range r {
		if f.Name == column {
			return f.Value, true
		}
	}
	return "", false
}

// Columns returns the column names present in the row, in order.
func (r Row) Columns() []string {
	cols := make([]string, len(r))
	for i, f := range r {
		cols[i] = f.Name
	}
	return cols
}

// Table is the structural reading of a delimited text.
type Table struct {
	Delimiter rune
	HasHeader bool
	Columns   []string
	Rows      []Row
	Mapping   domain.RoleMapping

	// DataRows counts rows after the header, before short rows are dropped.
	DataRows      int
	ShortRows     int
	MalformedRows int
}

// Empty reports whether the table produced no usable rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// ParseTable detects the delimiter and header of text, classifies its
// columns and returns the data rows in input order.
func ParseTable(text string) Table {
	text = strings.TrimPrefix(text, utf8BOM)
	if strings.TrimSpace(text) == "" {
		return Table{}
	}

	delimiter := DetectDelimiter(text)
	records, malformed := readRows(text, delimiter)

	table := Table{Delimiter: delimiter, MalformedRows: malformed}
	if len(records) == 0 {
		return table
	}

	dataRows := records
	table.HasHeader = IsHeaderRow(records[0])
	if table.HasHeader {
		table.Columns = headerColumns(records[0])
		dataRows = records[1:]
	} else {
		table.Columns = genericColumns(len(records[0]))
	}

	table.DataRows = len(dataRows)
	if len(dataRows) == 0 {
		return table
	}

	sample := dataRows
	if len(sample) > classificationRows {
		sample = sample[:classificationRows]
	}
	table.Mapping = ClassifyColumns(table.Columns, sample)

	table.Rows = make([]Row, 0, len(dataRows))
	for _, raw := range dataRows {
		if len(raw) < minRowFields {
			table.ShortRows++
			continue
		}
		table.Rows = append(table.Rows, zipRow(table.Columns, raw))
	}

	return table
}

// readRows splits text with quoted-field CSV semantics. Rows the reader
// rejects are skipped and counted.
func readRows(text string, delimiter rune) ([][]string, int) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var rows [][]string
	malformed := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				malformed++
				continue
			}
			break
		}
		rows = append(rows, row)
	}
	return rows, malformed
}

func zipRow(columns []string, raw []string) Row {
	n := len(raw)
	if n > len(columns) {
		n = len(columns)
	}
	row := make(Row, n)
	for i := 0; i < n; i++ {
		row[i] = domain.Field{Name: columns[i], Value: strings.TrimSpace(raw[i])}
	}
	return row
}

func genericColumns(n int) []string {
	cols := make([]string, n)
	for i := range cols {
		cols[i] = fmt.Sprintf("column_%d", i+1)
	}
	return cols
}

// headerColumns trims header cells. Blank cells get a generic name and
// repeated names a positional suffix so every column stays addressable.
func headerColumns(header []string) []string {
	cols := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, cell := range header {
		name := strings.TrimSpace(cell)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		for seen[name] {
			name = fmt.Sprintf("%s_%d", name, i+1)
		}
		seen[name] = true
		cols[i] = name
	}
	return cols
}
