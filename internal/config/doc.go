// Package config loads epicli's configuration.
//
// # Configuration Sources
//
// Values are applied in this order, later sources winning:
//
//	1. Default()
//	2. a YAML file: $EPI_CONFIG_FILE, else ./epicli.yaml when it exists
//	3. environment variables prefixed EPI_
//
// Nested sections map to underscore-joined names:
//
//	EPI_SERVER_PORT=9090
//	EPI_LOGGING_LEVEL=debug
//	EPI_INGEST_DATA_DIR=/srv/epi/data
//	EPI_INGEST_ENCODINGS=utf-8,latin1
//	EPI_EXPORT_BOM=true
//	EPI_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Validation
//
// Load validates the merged result with go-playground/validator tags and
// reports every failing field. Encodings must be ones the file reader can
// decode.
//
// # Paths
//
// ResolvePaths turns the configured data, export and log locations into
// absolute directories:
//
//	paths, err := cfg.ResolvePaths("")
//	out := paths.ExportPath(config.RecordsCSVName)
package config
