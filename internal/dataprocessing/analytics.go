package dataprocessing

import (
	"sort"

	"epicli/pkg/contracts/domain"
)

// LocationTotals aggregates records per location, sorted by location name.
func LocationTotals(records []domain.Record) []domain.LocationTotal {
	byLocation := make(map[string]*domain.LocationTotal)

	for _, r := range records {
		t, ok := byLocation[r.Location]
		if !ok {
			t = &domain.LocationTotal{Location: r.Location, FirstDate: r.Date, LastDate: r.Date}
			byLocation[r.Location] = t
		}

		t.Records++
		t.NewCases = addSaturating(t.NewCases, r.NewCases)
		t.NewDeaths = addSaturating(t.NewDeaths, r.NewDeaths)
		t.NewVaccinated = addSaturating(t.NewVaccinated, r.NewVaccinated)
		t.MaxAccumulatedCases = max(t.MaxAccumulatedCases, r.AccumulatedCases)
		t.MaxAccumulatedDeaths = max(t.MaxAccumulatedDeaths, r.AccumulatedDeaths)
		t.MaxAccumulatedVaccinated = max(t.MaxAccumulatedVaccinated, r.AccumulatedVaccinated)
		if r.Date.Before(t.FirstDate) {
			t.FirstDate = r.Date
		}
		if r.Date.After(t.LastDate) {
			t.LastDate = r.Date
		}
	}

	out := make([]domain.LocationTotal, 0, len(byLocation))
	for _, t := range byLocation {
		t.MortalityRate = domain.MortalityRate(t.NewDeaths, t.NewCases)
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out
}

// MonthlyTrend returns, for each month in order, the peak accumulated case
// count and its change against the previous month.
func MonthlyTrend(months map[string]domain.MonthlySummary) []domain.TrendPoint {
	sorted := SortedMonthly(months)
	points := make([]domain.TrendPoint, len(sorted))

	for i, m := range sorted {
		points[i] = domain.TrendPoint{Month: m.Month, AccumulatedCases: m.MaxAccumulatedCases}
		if i > 0 {
			points[i].Change = m.MaxAccumulatedCases - sorted[i-1].MaxAccumulatedCases
			points[i].HasPrevious = true
		}
	}
	return points
}

// MonthlySeries extracts one chart series from the monthly summaries, in
// chronological order.
func MonthlySeries(months map[string]domain.MonthlySummary, metric domain.SeriesMetric) []domain.SeriesPoint {
	sorted := SortedMonthly(months)
	points := make([]domain.SeriesPoint, len(sorted))

	for i, m := range sorted {
		var v int64
		if metric == domain.SeriesCasesPlusDeaths {
			v = m.NewCases + m.NewDeaths
		} else {
			v = m.Metric(domain.Role(metric))
		}
		points[i] = domain.SeriesPoint{Month: m.Month, Value: v}
	}
	return points
}
