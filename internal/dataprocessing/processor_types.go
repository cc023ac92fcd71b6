package dataprocessing

import (
	"errors"
	"time"

	"epicli/pkg/contracts/domain"
)

var (
	// ErrNoUsableData means a load produced no records. The previously loaded
	// dataset, if any, is kept.
	ErrNoUsableData = errors.New("no usable data")

	// ErrNoDataLoaded is returned by queries that need a dataset before any
	// load has succeeded.
	ErrNoDataLoaded = errors.New("no data loaded")
)

// Dataset is one successfully loaded record set and the structure it was
// read with. A dataset is never modified after it is built.
type Dataset struct {
	ID          string
	Source      string
	Records     []domain.Record
	Columns     []string
	Mapping     domain.RoleMapping
	Diagnostics domain.Diagnostics
	LoadedAt    time.Time
}

// Summary returns the load summary of the dataset.
func (d *Dataset) Summary() domain.LoadSummary {
	s := domain.LoadSummary{
		DatasetID:       d.ID,
		Source:          d.Source,
		RecordCount:     len(d.Records),
		ColumnsDetected: len(d.Columns),
		Diagnostics:     d.Diagnostics,
		LoadedAt:        d.LoadedAt,
	}
	if stats, ok := OverallStatistics(d.Records, len(d.Columns), d.Mapping); ok {
		s.LocationCount = stats.UniqueLocations
		s.FirstDate = stats.FirstDate
		s.LastDate = stats.LastDate
		s.DateRange = stats.DateRange
	}
	return s
}

// ProcessorConfig configures a Processor.
type ProcessorConfig struct {
	// Now is the processing clock used for date fallbacks and load
	// timestamps. Defaults to time.Now.
	Now func() time.Time

	// NewID generates dataset identifiers. Defaults to random UUIDs.
	NewID func() string
}
