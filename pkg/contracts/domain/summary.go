package domain

import (
	"fmt"
	"time"
)

// MonthlySummary aggregates the records of one calendar month.
// New metrics are summed, accumulated metrics keep the maximum observed value.
type MonthlySummary struct {
	Month string `json:"month"` // MM/YYYY
	Year  int    `json:"year"`
	Num   int    `json:"month_number"`

	NewCases      int64 `json:"new_cases"`
	NewDeaths     int64 `json:"new_deaths"`
	NewVaccinated int64 `json:"new_vaccinated"`

	MaxAccumulatedCases      int64 `json:"max_accumulated_cases"`
	MaxAccumulatedDeaths     int64 `json:"max_accumulated_deaths"`
	MaxAccumulatedVaccinated int64 `json:"max_accumulated_vaccinated"`

	Records int `json:"records"`
}

// Metric returns the monthly value matching a record role: the sum for new
// metrics and the maximum for accumulated ones.
func (m MonthlySummary) Metric(role Role) int64 {
	switch role {
	case RoleNewCases:
		return m.NewCases
	case RoleNewDeaths:
		return m.NewDeaths
	case RoleNewVaccinated:
		return m.NewVaccinated
	case RoleAccumulatedCases:
		return m.MaxAccumulatedCases
	case RoleAccumulatedDeaths:
		return m.MaxAccumulatedDeaths
	case RoleAccumulatedVaccinated:
		return m.MaxAccumulatedVaccinated
	}
	return 0
}

// OverallStatistics is the dataset-wide aggregate.
type OverallStatistics struct {
	TotalRecords    int       `json:"total_records"`
	UniqueLocations int       `json:"unique_locations"`
	FirstDate       time.Time `json:"first_date"`
	LastDate        time.Time `json:"last_date"`
	DateRange       string    `json:"date_range"`

	TotalNewCases      int64 `json:"total_new_cases"`
	TotalNewDeaths     int64 `json:"total_new_deaths"`
	TotalNewVaccinated int64 `json:"total_new_vaccinated"`

	MaxAccumulatedCases      int64 `json:"max_accumulated_cases"`
	MaxAccumulatedDeaths     int64 `json:"max_accumulated_deaths"`
	MaxAccumulatedVaccinated int64 `json:"max_accumulated_vaccinated"`

	// MortalityRate is total new deaths over total new cases, in percent.
	MortalityRate float64 `json:"mortality_rate"`

	ColumnsDetected int         `json:"columns_detected"`
	ColumnMapping   RoleMapping `json:"column_mapping"`
}

// MortalityRate returns deaths/cases*100, or 0 when there are no cases.
func MortalityRate(deaths, cases int64) float64 {
	if cases == 0 {
		return 0
	}
	return float64(deaths) / float64(cases) * 100
}

// FormatDateRange renders "DD/MM/YYYY – DD/MM/YYYY".
func FormatDateRange(first, last time.Time) string {
	return fmt.Sprintf("%s – %s", first.Format("02/01/2006"), last.Format("02/01/2006"))
}

// LocationTotal aggregates all records of one location.
type LocationTotal struct {
	Location string `json:"location"`
	Records  int    `json:"records"`

	NewCases      int64 `json:"new_cases"`
	NewDeaths     int64 `json:"new_deaths"`
	NewVaccinated int64 `json:"new_vaccinated"`

	MaxAccumulatedCases      int64 `json:"max_accumulated_cases"`
	MaxAccumulatedDeaths     int64 `json:"max_accumulated_deaths"`
	MaxAccumulatedVaccinated int64 `json:"max_accumulated_vaccinated"`

	MortalityRate float64   `json:"mortality_rate"`
	FirstDate     time.Time `json:"first_date"`
	LastDate      time.Time `json:"last_date"`
}

// TrendPoint is the month-over-month change of the accumulated case count.
type TrendPoint struct {
	Month            string `json:"month"`
	AccumulatedCases int64  `json:"accumulated_cases"`
	Change           int64  `json:"change"`
	HasPrevious      bool   `json:"has_previous"`
}

// SeriesMetric selects the monthly value plotted by a chart series.
type SeriesMetric string

const (
	SeriesNewCases              SeriesMetric = "new_cases"
	SeriesNewDeaths             SeriesMetric = "new_deaths"
	SeriesNewVaccinated         SeriesMetric = "new_vaccinated"
	SeriesAccumulatedCases      SeriesMetric = "accumulated_cases"
	SeriesAccumulatedDeaths     SeriesMetric = "accumulated_deaths"
	SeriesAccumulatedVaccinated SeriesMetric = "accumulated_vaccinated"
	SeriesCasesPlusDeaths       SeriesMetric = "cases_plus_deaths"
)

// ParseSeriesMetric validates a series name.
func ParseSeriesMetric(s string) (SeriesMetric, error) {
	switch m := SeriesMetric(s); m {
	case SeriesNewCases, SeriesNewDeaths, SeriesNewVaccinated,
		SeriesAccumulatedCases, SeriesAccumulatedDeaths, SeriesAccumulatedVaccinated,
		SeriesCasesPlusDeaths:
		return m, nil
	}
	return "", fmt.Errorf("unknown series metric %q", s)
}

// SeriesPoint is one month of a chart series.
type SeriesPoint struct {
	Month string `json:"month"`
	Value int64  `json:"value"`
}

// StructureReport describes how an input table was interpreted.
type StructureReport struct {
	Delimiter string         `json:"delimiter"`
	HasHeader bool           `json:"has_header"`
	Columns   []ColumnReport `json:"columns"`
	Roles     []RoleReport   `json:"roles"`
	Sample    []Record       `json:"sample"`
}

// ColumnReport is one original column and the role it received, if any.
type ColumnReport struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Role   Role   `json:"role,omitempty"`
	Mapped bool   `json:"mapped"`
}

// RoleReport tells which column, if any, a role was resolved to.
type RoleReport struct {
	Role   Role   `json:"role"`
	Column string `json:"column,omitempty"`
	Found  bool   `json:"found"`
}
