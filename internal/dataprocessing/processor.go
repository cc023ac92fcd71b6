package dataprocessing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "epicli/internal/errors"
	"epicli/pkg/contracts/domain"
)

// Processor owns the currently loaded dataset. A load builds a complete new
// dataset and swaps it in only when it holds at least one record, so a failed
// load leaves the previous dataset untouched.
type Processor struct {
	logger  *slog.Logger
	builder *RecordBuilder
	now     func() time.Time
	newID   func() string

	mu      sync.RWMutex
	current *Dataset
}

// NewProcessor creates a processor with no dataset loaded.
func NewProcessor(logger *slog.Logger, config ProcessorConfig) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.NewID == nil {
		config.NewID = uuid.NewString
	}

	return &Processor{
		logger:  logger.With(slog.String("component", "processor")),
		builder: NewRecordBuilder(NewDateResolver(config.Now)),
		now:     config.Now,
		newID:   config.NewID,
	}
}

// Load parses text and, on success, replaces the current dataset.
func (p *Processor) Load(ctx context.Context, text string) (domain.LoadSummary, error) {
	return p.LoadSource(ctx, "text", text)
}

// LoadSource is Load with a label describing where the text came from.
func (p *Processor) LoadSource(ctx context.Context, source, text string) (domain.LoadSummary, error) {
	ds, err := p.Parse(ctx, source, text)
	if err != nil {
		p.logger.WarnContext(ctx, "load rejected, keeping previous dataset",
			slog.String("source", source),
			slog.String("error", err.Error()))
		return domain.LoadSummary{}, err
	}

	p.mu.Lock()
	p.current = ds
	p.mu.Unlock()

	summary := ds.Summary()
	p.logger.InfoContext(ctx, "dataset loaded",
		slog.String("dataset_id", ds.ID),
		slog.String("source", source),
		slog.Int("records", summary.RecordCount),
		slog.Int("locations", summary.LocationCount),
		slog.Int("columns", summary.ColumnsDetected),
		slog.Int("dropped_rows", ds.Diagnostics.DroppedRows()))

	return summary, nil
}

// Parse runs the ingestion pipeline on text without touching the current
// dataset. It fails with ErrNoUsableData when no record survives.
func (p *Processor) Parse(ctx context.Context, source, text string) (*Dataset, error) {
	table := ParseTable(text)

	diag := domain.Diagnostics{
		Delimiter:     string(table.Delimiter),
		HasHeader:     table.HasHeader,
		Columns:       table.Columns,
		RoleMapping:   table.Mapping,
		DataRows:      table.DataRows,
		ShortRows:     table.ShortRows,
		MalformedRows: table.MalformedRows,
	}

	if table.Empty() {
		return nil, apperrors.NewParsingError("input has no data rows", ErrNoUsableData).
			WithContext("source", source).
			WithContext("short_rows", table.ShortRows)
	}

	p.logger.DebugContext(ctx, "table structure detected",
		slog.String("delimiter", diag.Delimiter),
		slog.Bool("has_header", table.HasHeader),
		slog.Any("columns", table.Columns),
		slog.Any("mapping", table.Mapping.AsMap()))

	records := make([]domain.Record, 0, len(table.Rows))
	for i, row := range table.Rows {
		rec, info, ok := p.builder.BuildDetailed(row, table.Mapping)
		if !ok {
			diag.RejectedRows++
			p.logger.DebugContext(ctx, "row rejected: no date or location",
				slog.Int("row", i+1))
			continue
		}
		if info.PositionalMetrics {
			diag.PositionalFallbackRows++
		}
		if info.DateFallback {
			diag.DateFallbackRows++
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, apperrors.NewParsingError("no row produced a record", ErrNoUsableData).
			WithContext("source", source).
			WithContext("rejected_rows", diag.RejectedRows)
	}

	return &Dataset{
		ID:          p.newID(),
		Source:      source,
		Records:     records,
		Columns:     table.Columns,
		Mapping:     table.Mapping,
		Diagnostics: diag,
		LoadedAt:    p.now(),
	}, nil
}

// Dataset returns the current dataset.
func (p *Processor) Dataset() (*Dataset, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current, p.current != nil
}

// Current returns the current dataset or ErrNoDataLoaded.
func (p *Processor) Current() (*Dataset, error) {
	ds, ok := p.Dataset()
	if !ok {
		return nil, ErrNoDataLoaded
	}
	return ds, nil
}

// Records returns the records of the current dataset, or nil.
func (p *Processor) Records() []domain.Record {
	if ds, ok := p.Dataset(); ok {
		return ds.Records
	}
	return nil
}

// MonthlySummary aggregates the current dataset by month.
func (p *Processor) MonthlySummary() map[string]domain.MonthlySummary {
	return MonthlySummary(p.Records())
}

// Statistics aggregates the current dataset. It reports false when nothing
// is loaded.
func (p *Processor) Statistics() (domain.OverallStatistics, bool) {
	ds, ok := p.Dataset()
	if !ok {
		return domain.OverallStatistics{}, false
	}
	return OverallStatistics(ds.Records, len(ds.Columns), ds.Mapping)
}

// LocationTotals aggregates the current dataset per location.
func (p *Processor) LocationTotals() []domain.LocationTotal {
	return LocationTotals(p.Records())
}

// MonthlyTrend returns the month-over-month accumulated case change.
func (p *Processor) MonthlyTrend() []domain.TrendPoint {
	return MonthlyTrend(p.MonthlySummary())
}

// Series returns one monthly chart series.
func (p *Processor) Series(metric domain.SeriesMetric) []domain.SeriesPoint {
	return MonthlySeries(p.MonthlySummary(), metric)
}

// Structure describes how the current dataset was read.
func (p *Processor) Structure() (domain.StructureReport, bool) {
	ds, ok := p.Dataset()
	if !ok {
		return domain.StructureReport{}, false
	}
	return StructureReport(ds), true
}
