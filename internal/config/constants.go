package config

import (
	"time"

	"epicli/pkg/contracts"
)

// Application info
const (
	AppName    = "epicli"
	AppVersion = contracts.Version
)

// Defaults shared by the config loader and the commands.
const (
	DefaultDataDir      = "data"
	DefaultExportDir    = "exports"
	DefaultMaxFileBytes = 64 << 20
	DefaultMaxBodyBytes = 32 << 20

	DefaultRateLimit = 50 // requests per second
	DefaultBurstSize = 100

	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second
)

// HTTP routes
const (
	APIBasePath       = "/api"
	HealthEndpoint    = "/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)

// Export file names written by the CLI when only a directory is given.
const (
	RecordsCSVName  = "records.csv"
	RecordsXLSXName = "records.xlsx"
)
