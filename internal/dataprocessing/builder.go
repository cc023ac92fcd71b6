package dataprocessing

import (
	"math"
	"strconv"
	"strings"

	"epicli/pkg/contracts/domain"
)

// BuildInfo tells which fallbacks were used while building a record.
type BuildInfo struct {
	PositionalDate     bool
	PositionalLocation bool
	PositionalMetrics  bool
	DateFallback       bool
}

// RecordBuilder converts table rows into records.
type RecordBuilder struct {
	dates *DateResolver
}

// NewRecordBuilder creates a builder. A nil resolver uses the wall clock.
func NewRecordBuilder(dates *DateResolver) *RecordBuilder {
	if dates == nil {
		dates = NewDateResolver(nil)
	}
	return &RecordBuilder{dates: dates}
}

// Build converts row into a record, or reports false when the row has no
// usable date or location.
func (b *RecordBuilder) Build(row Row, mapping domain.RoleMapping) (domain.Record, bool) {
	rec, _, ok := b.BuildDetailed(row, mapping)
	return rec, ok
}

// BuildDetailed is Build plus the fallbacks that were applied.
func (b *RecordBuilder) BuildDetailed(row Row, mapping domain.RoleMapping) (domain.Record, BuildInfo, bool) {
	var info BuildInfo
	columns := row.Columns()

	dateCol, hasDate := mapping.ColumnFor(domain.RoleDate)
	locCol, hasLoc := mapping.ColumnFor(domain.RoleLocation)
	if (!hasDate || !hasLoc) && len(columns) >= 2 {
		if !hasDate {
			dateCol, hasDate = columns[0], true
			info.PositionalDate = true
		}
		if !hasLoc {
			locCol, hasLoc = columns[1], true
			info.PositionalLocation = true
		}
	}
	if !hasDate || !hasLoc {
		return domain.Record{}, info, false
	}

	dateValue, _ := row.Get(dateCol)
	location, _ := row.Get(locCol)
	if dateValue == "" || location == "" {
		return domain.Record{}, info, false
	}

	rec := domain.Record{Location: location}
	consumed := map[string]bool{dateCol: true, locCol: true}

	allZero := true
	for _, role := range domain.MetricRoles {
		col, ok := mapping.ColumnFor(role)
		if !ok {
			continue
		}
		consumed[col] = true
		raw, _ := row.Get(col)
		v := ParseCount(raw)
		rec.SetMetric(role, v)
		if v != 0 {
			allZero = false
		}
	}

	// Nothing numeric came out of the mapped columns: read the columns that
	// follow date and location in the conventional metric order.
	if allZero && len(columns) > 2 {
		info.PositionalMetrics = true
		for i, role := range domain.MetricRoles {
			pos := i + 2
			if pos >= len(columns) {
				break
			}
			consumed[columns[pos]] = true
			raw, _ := row.Get(columns[pos])
			rec.SetMetric(role, ParseCount(raw))
		}
	}

	for _, f := range row {
		if !consumed[f.Name] {
			rec.Extra = append(rec.Extra, f)
		}
	}

	date, ok := b.dates.ResolveStrict(dateValue)
	rec.Date = date
	info.DateFallback = !ok

	return rec, info, true
}

// ParseCount reads a count from a loosely formatted number: everything but
// digits, '.', ',' and '-' is dropped, a comma is read as the decimal point
// and the fraction is truncated. Unparseable or negative input yields 0.
func ParseCount(raw string) int64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			return r
		}
		return -1
	}, raw)
	if cleaned == "" {
		return 0
	}
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || f <= 0 || f >= math.MaxInt64 {
		return 0
	}
	return int64(f)
}
