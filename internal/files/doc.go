// Package files reads data files from disk as text and discovers loadable
// files in a directory.
//
// Reader decodes delimited files by trying a list of encodings in order,
// UTF-8 first, and renders .xlsx workbooks as comma-separated text so both
// reach the ingestion pipeline the same way.
//
// Example usage:
//
//	reader := files.NewReader(files.ReaderConfig{}, logger)
//	text, err := reader.ReadSource("data/casos.csv")
//
//	found, err := files.DiscoverDataFiles("data")
package files
