package dataprocessing

import (
	"math"
	"sort"

	"epicli/pkg/contracts/domain"
)

// MonthlySummary groups records by "MM/YYYY". New metrics are summed and
// accumulated metrics keep their maximum.
func MonthlySummary(records []domain.Record) map[string]domain.MonthlySummary {
	months := make(map[string]domain.MonthlySummary)

	for _, r := range records {
		key := r.MonthKey()
		m, ok := months[key]
		if !ok {
			m = domain.MonthlySummary{Month: key, Year: r.Date.Year(), Num: int(r.Date.Month())}
		}

		m.NewCases = addSaturating(m.NewCases, r.NewCases)
		m.NewDeaths = addSaturating(m.NewDeaths, r.NewDeaths)
		m.NewVaccinated = addSaturating(m.NewVaccinated, r.NewVaccinated)
		m.MaxAccumulatedCases = max(m.MaxAccumulatedCases, r.AccumulatedCases)
		m.MaxAccumulatedDeaths = max(m.MaxAccumulatedDeaths, r.AccumulatedDeaths)
		m.MaxAccumulatedVaccinated = max(m.MaxAccumulatedVaccinated, r.AccumulatedVaccinated)
		m.Records++

		months[key] = m
	}

	return months
}

// SortedMonthly returns the summaries in chronological order.
func SortedMonthly(months map[string]domain.MonthlySummary) []domain.MonthlySummary {
	out := make([]domain.MonthlySummary, 0, len(months))
	for _, m := range months {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Num < out[j].Num
	})
	return out
}

// OverallStatistics aggregates the whole record set. It reports false for an
// empty record set, which callers treat as "no data" rather than an error.
func OverallStatistics(records []domain.Record, columnsDetected int, mapping domain.RoleMapping) (domain.OverallStatistics, bool) {
	if len(records) == 0 {
		return domain.OverallStatistics{}, false
	}

	stats := domain.OverallStatistics{
		TotalRecords:    len(records),
		FirstDate:       records[0].Date,
		LastDate:        records[0].Date,
		ColumnsDetected: columnsDetected,
		ColumnMapping:   mapping,
	}

	locations := make(map[string]struct{})
	for _, r := range records {
		locations[r.Location] = struct{}{}

		if r.Date.Before(stats.FirstDate) {
			stats.FirstDate = r.Date
		}
		if r.Date.After(stats.LastDate) {
			stats.LastDate = r.Date
		}

		stats.TotalNewCases = addSaturating(stats.TotalNewCases, r.NewCases)
		stats.TotalNewDeaths = addSaturating(stats.TotalNewDeaths, r.NewDeaths)
		stats.TotalNewVaccinated = addSaturating(stats.TotalNewVaccinated, r.NewVaccinated)
		stats.MaxAccumulatedCases = max(stats.MaxAccumulatedCases, r.AccumulatedCases)
		stats.MaxAccumulatedDeaths = max(stats.MaxAccumulatedDeaths, r.AccumulatedDeaths)
		stats.MaxAccumulatedVaccinated = max(stats.MaxAccumulatedVaccinated, r.AccumulatedVaccinated)
	}

	stats.UniqueLocations = len(locations)
	stats.DateRange = domain.FormatDateRange(stats.FirstDate, stats.LastDate)
	stats.MortalityRate = domain.MortalityRate(stats.TotalNewDeaths, stats.TotalNewCases)

	return stats, true
}

// addSaturating adds b to a, clamping at the int64 bounds instead of
// wrapping around.
func addSaturating(a, b int64) int64 {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	}
	return a + b
}
