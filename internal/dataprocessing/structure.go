package dataprocessing

import "epicli/pkg/contracts/domain"

// structureSampleSize is how many records a structure report shows.
const structureSampleSize = 5

// StructureReport explains how a dataset's columns were interpreted.
func StructureReport(ds *Dataset) domain.StructureReport {
	report := domain.StructureReport{
		Delimiter: ds.Diagnostics.Delimiter,
		HasHeader: ds.Diagnostics.HasHeader,
		Columns:   make([]domain.ColumnReport, len(ds.Columns)),
		Roles:     make([]domain.RoleReport, len(domain.ClassificationOrder)),
	}

	for i, col := range ds.Columns {
		role, ok := ds.Mapping.RoleOf(col)
		report.Columns[i] = domain.ColumnReport{Index: i + 1, Name: col, Role: role, Mapped: ok}
	}

	for i, role := range domain.ClassificationOrder {
		col, ok := ds.Mapping.ColumnFor(role)
		report.Roles[i] = domain.RoleReport{Role: role, Column: col, Found: ok}
	}

	n := min(len(ds.Records), structureSampleSize)
	report.Sample = append([]domain.Record(nil), ds.Records[:n]...)

	return report
}
