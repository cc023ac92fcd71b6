// Package dataprocessing turns delimited epidemiological tables of unknown
// layout into normalized records and aggregates them.
//
// # Pipeline
//
// A load runs these steps in order:
//
//  1. DetectDelimiter picks the field separator from the first lines.
//  2. IsHeaderRow decides whether the first row names the columns.
//  3. ClassifyColumns assigns a Role to each column from its name, or from
//     the shape of its first ten values when the name says nothing.
//  4. RecordBuilder turns each row into a domain.Record, falling back to
//     column positions when the mapping is incomplete.
//  5. MonthlySummary and OverallStatistics aggregate the records.
//
// Every heuristic is a plain function with a fixed priority order so it can
// be tested on its own.
//
// # Usage
//
//	processor := dataprocessing.NewProcessor(logger, dataprocessing.ProcessorConfig{})
//	summary, err := processor.Load(ctx, text)
//	if errors.Is(err, dataprocessing.ErrNoUsableData) {
//	    // the previous dataset is still loaded
//	}
//	stats, ok := processor.Statistics()
//
// # Error Handling
//
// Problems in single rows never fail a load. Unparseable numbers become 0,
// unparseable dates become the processing date, and rows without a date or
// location are dropped and counted in domain.Diagnostics. Only a load that
// yields no record at all fails, with ErrNoUsableData.
//
// # Known Approximations
//
// Content classification separates new from accumulated counts by magnitude
// only and always reports case roles. The digit-run date fallback cannot tell
// day/month from month/day when no four-digit year anchors the order.
package dataprocessing
