package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"epicli/pkg/contracts/domain"
)

const (
	// RecordsSheet holds one row per record in the delimited layout.
	RecordsSheet = "records"
	// MonthlySheet holds one row per month.
	MonthlySheet = "monthly"
)

// MonthlyHeaders is the header row of the monthly sheet.
var MonthlyHeaders = []string{
	"month", "records",
	"new_cases", "new_deaths", "new_vaccinated",
	"max_accumulated_cases", "max_accumulated_deaths", "max_accumulated_vaccinated",
}

// ExportXLSX writes a workbook with a records sheet and a monthly sheet.
// monthly is written in the order given.
func ExportXLSX(w io.Writer, records []domain.Record, monthly []domain.MonthlySummary) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", RecordsSheet); err != nil {
		return fmt.Errorf("failed to name records sheet: %w", err)
	}
	if _, err := f.NewSheet(MonthlySheet); err != nil {
		return fmt.Errorf("failed to create monthly sheet: %w", err)
	}

	if err := writeRow(f, RecordsSheet, 1, toCells(Headers(records))); err != nil {
		return err
	}
	var extraKeys []string
	if len(records) > 0 {
		extraKeys = records[0].Extra.Keys()
	}
	for i, r := range records {
		if err := writeRow(f, RecordsSheet, i+2, recordCells(r, extraKeys)); err != nil {
			return err
		}
	}

	if err := writeRow(f, MonthlySheet, 1, toCells(MonthlyHeaders)); err != nil {
		return err
	}
	for i, m := range monthly {
		cells := []interface{}{
			m.Month, m.Records,
			m.NewCases, m.NewDeaths, m.NewVaccinated,
			m.MaxAccumulatedCases, m.MaxAccumulatedDeaths, m.MaxAccumulatedVaccinated,
		}
		if err := writeRow(f, MonthlySheet, i+2, cells); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// recordCells keeps metrics numeric so spreadsheet formulas work on them.
func recordCells(r domain.Record, extraKeys []string) []interface{} {
	cells := make([]interface{}, 0, 2+len(domain.MetricRoles)+len(extraKeys))
	cells = append(cells, formatDate(r.Date), r.Location)
	for _, role := range domain.MetricRoles {
		cells = append(cells, r.Metric(role))
	}
	for _, key := range extraKeys {
		v, _ := r.Extra.Get(key)
		cells = append(cells, v)
	}
	return cells
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
