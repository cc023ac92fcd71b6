// Package exporter writes normalized records back out as delimited text or
// as an Excel workbook.
//
// The delimited layout has the eight fixed columns (date, location and the
// six metrics, in that order) followed by the extra columns of the first
// record. Later records are aligned to those names, so a dataset whose
// records carry different extra columns can lose or blank some of them.
//
// Example usage:
//
//	text, err := exporter.ExportText(records)
//
//	writer := exporter.NewCSVWriter("exports", logger)
//	err = writer.WriteRecords("cases.csv", records, exporter.Options{BOMPrefix: true})
//
//	err = exporter.ExportXLSX(w, records, dataprocessing.SortedMonthly(months))
package exporter
