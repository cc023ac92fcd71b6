package domain

import "time"

// Diagnostics records the structural decisions and row-level outcomes of a load.
type Diagnostics struct {
	Delimiter   string      `json:"delimiter"`
	HasHeader   bool        `json:"has_header"`
	Columns     []string    `json:"columns"`
	RoleMapping RoleMapping `json:"role_mapping"`

	DataRows               int `json:"data_rows"`
	ShortRows              int `json:"short_rows"`
	RejectedRows           int `json:"rejected_rows"`
	MalformedRows          int `json:"malformed_rows"`
	PositionalFallbackRows int `json:"positional_fallback_rows"`
	DateFallbackRows       int `json:"date_fallback_rows"`
}

// DroppedRows is the number of data rows that did not become records.
func (d Diagnostics) DroppedRows() int {
	return d.ShortRows + d.RejectedRows + d.MalformedRows
}

// LoadSummary is what a caller receives after a successful load.
type LoadSummary struct {
	DatasetID       string      `json:"dataset_id"`
	Source          string      `json:"source"`
	RecordCount     int         `json:"record_count"`
	LocationCount   int         `json:"location_count"`
	FirstDate       time.Time   `json:"first_date"`
	LastDate        time.Time   `json:"last_date"`
	DateRange       string      `json:"date_range"`
	ColumnsDetected int         `json:"columns_detected"`
	Diagnostics     Diagnostics `json:"diagnostics"`
	LoadedAt        time.Time   `json:"loaded_at"`
}
