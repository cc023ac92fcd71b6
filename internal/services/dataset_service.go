package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"epicli/internal/config"
	"epicli/internal/dataprocessing"
	apperrors "epicli/internal/errors"
	"epicli/internal/exporter"
	"epicli/internal/files"
	"epicli/internal/infrastructure"
	ws "epicli/internal/websocket"
	"epicli/pkg/contracts/domain"
	"epicli/pkg/contracts/events"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ExportFormats lists the accepted export formats.
var ExportFormats = []string{FormatCSV, FormatXLSX}

// Notifier receives dataset events. *websocket.Hub implements it.
type Notifier interface {
	Broadcast(ctx context.Context, messageType string, data interface{}) error
}

// DatasetServiceDeps are the collaborators of a DatasetService. Only
// Processor is required.
type DatasetServiceDeps struct {
	Processor *dataprocessing.Processor
	Reader    *files.Reader
	Paths     *config.Paths
	Export    config.ExportConfig
	Notifier  Notifier
	Metrics   *infrastructure.IngestMetrics
	Tracer    trace.Tracer
	Logger    *slog.Logger
}

// DatasetService loads datasets and answers queries about the current one.
type DatasetService struct {
	processor *dataprocessing.Processor
	reader    *files.Reader
	paths     *config.Paths
	export    config.ExportConfig
	notifier  Notifier
	metrics   *infrastructure.IngestMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewDatasetService creates the service.
func NewDatasetService(deps DatasetServiceDeps) *DatasetService {
	logger := deps.Logger
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}
	reader := deps.Reader
	if reader == nil {
		reader = files.NewReader(files.ReaderConfig{}, logger)
	}
	export := deps.Export
	if export.Delimiter == "" {
		export.Delimiter = ","
	}

	return &DatasetService{
		processor: deps.Processor,
		reader:    reader,
		paths:     deps.Paths,
		export:    export,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		tracer:    tracer,
		logger:    infrastructure.WithComponent(logger, "dataset_service"),
	}
}

// LoadContent parses content and makes it the current dataset. source
// labels the load in summaries and logs.
func (s *DatasetService) LoadContent(ctx context.Context, source, content string) (domain.LoadSummary, error) {
	if source == "" {
		source = "upload"
	}
	return s.load(ctx, source, func() (string, error) { return content, nil })
}

// LoadFile reads path (relative paths resolve against the data directory)
// and makes its content the current dataset.
func (s *DatasetService) LoadFile(ctx context.Context, path string) (domain.LoadSummary, error) {
	return s.load(ctx, path, func() (string, error) {
		text, err := s.reader.ReadSource(path)
		return text, readError(err)
	})
}

// readError maps reader failures onto their API errors, keeping the
// original error in the chain.
func readError(err error) error {
	switch {
	case errors.Is(err, files.ErrUnsupportedFormat):
		return apperrors.ErrUnsupportedFormat.Wrap(err)
	case errors.Is(err, files.ErrFileTooLarge):
		return apperrors.ErrFileTooLarge.Wrap(err)
	case errors.Is(err, files.ErrUndecodable):
		return apperrors.ErrFileUnreadable.Wrap(err)
	}
	return err
}

func (s *DatasetService) load(ctx context.Context, source string, read func() (string, error)) (domain.LoadSummary, error) {
	ctx, span := s.tracer.Start(ctx, "dataset.load",
		trace.WithAttributes(attribute.String("dataset.source", source)))
	defer span.End()

	start := time.Now()
	summary, err := s.readAndLoad(ctx, source, read)
	elapsed := time.Since(start)

	s.metrics.RecordLoad(ctx, elapsed, summary.RecordCount,
		summary.Diagnostics.RejectedRows, summary.Diagnostics.MalformedRows, err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "dataset load failed",
			slog.String("source", source),
			slog.Duration("duration", elapsed),
			slog.String("error", err.Error()))
		s.notify(ctx, ws.TypeDatasetLoadFailed, events.DatasetLoadFailedEvent{
			Source: source,
			Error:  err.Error(),
		})
		return domain.LoadSummary{}, err
	}

	span.SetAttributes(
		attribute.String("dataset.id", summary.DatasetID),
		attribute.Int("dataset.records", summary.RecordCount))
	s.logger.InfoContext(ctx, "dataset load completed",
		slog.String("dataset_id", summary.DatasetID),
		slog.String("source", source),
		slog.Int("records", summary.RecordCount),
		slog.Duration("duration", elapsed))
	s.notify(ctx, ws.TypeDatasetLoaded, summary)

	return summary, nil
}

func (s *DatasetService) readAndLoad(ctx context.Context, source string, read func() (string, error)) (domain.LoadSummary, error) {
	text, err := read()
	if err != nil {
		return domain.LoadSummary{}, err
	}
	infrastructure.AddSpanEvent(ctx, "source read", attribute.Int("bytes", len(text)))
	return s.processor.LoadSource(ctx, source, text)
}

func (s *DatasetService) notify(ctx context.Context, messageType string, data interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Broadcast(ctx, messageType, data); err != nil {
		s.logger.DebugContext(ctx, "dataset notification not sent",
			slog.String("type", messageType),
			slog.String("error", err.Error()))
	}
}

func (s *DatasetService) current() (*dataprocessing.Dataset, error) {
	ds, err := s.processor.Current()
	if errors.Is(err, dataprocessing.ErrNoDataLoaded) {
		return nil, apperrors.ErrNoDataLoaded
	}
	return ds, err
}

// Summary returns the load summary of the current dataset.
func (s *DatasetService) Summary(ctx context.Context) (domain.LoadSummary, error) {
	ds, err := s.current()
	if err != nil {
		return domain.LoadSummary{}, err
	}
	return ds.Summary(), nil
}

// RecordQuery filters and pages the record listing.
type RecordQuery struct {
	Location string
	Offset   int
	Limit    int
}

// RecordPage is one page of records.
type RecordPage struct {
	Records []domain.Record `json:"records"`
	Total   int             `json:"total"`
	Offset  int             `json:"offset"`
	Limit   int             `json:"limit"`
}

// Records lists records of the current dataset in load order. Location
// matches case-insensitively; a zero Limit returns everything after Offset.
func (s *DatasetService) Records(ctx context.Context, q RecordQuery) (RecordPage, error) {
	ds, err := s.current()
	if err != nil {
		return RecordPage{}, err
	}

	matched := ds.Records
	if q.Location != "" {
		matched = make([]domain.Record, 0)
		for _, r := range ds.Records {
			if strings.EqualFold(r.Location, q.Location) {
				matched = append(matched, r)
			}
		}
	}

	page := RecordPage{Total: len(matched), Offset: q.Offset, Limit: q.Limit}
	start := min(max(q.Offset, 0), len(matched))
	end := len(matched)
	if q.Limit > 0 {
		end = min(start+q.Limit, len(matched))
	}
	page.Records = matched[start:end]
	return page, nil
}

// Monthly returns the monthly summaries in chronological order.
func (s *DatasetService) Monthly(ctx context.Context) ([]domain.MonthlySummary, error) {
	ds, err := s.current()
	if err != nil {
		return nil, err
	}
	return dataprocessing.SortedMonthly(dataprocessing.MonthlySummary(ds.Records)), nil
}

// Statistics returns the dataset-wide aggregate.
func (s *DatasetService) Statistics(ctx context.Context) (domain.OverallStatistics, error) {
	ds, err := s.current()
	if err != nil {
		return domain.OverallStatistics{}, err
	}
	stats, _ := dataprocessing.OverallStatistics(ds.Records, len(ds.Columns), ds.Mapping)
	return stats, nil
}

// Locations returns per-location totals sorted by name.
func (s *DatasetService) Locations(ctx context.Context) ([]domain.LocationTotal, error) {
	ds, err := s.current()
	if err != nil {
		return nil, err
	}
	return dataprocessing.LocationTotals(ds.Records), nil
}

// Trend returns the month-over-month change of accumulated cases.
func (s *DatasetService) Trend(ctx context.Context) ([]domain.TrendPoint, error) {
	ds, err := s.current()
	if err != nil {
		return nil, err
	}
	return dataprocessing.MonthlyTrend(dataprocessing.MonthlySummary(ds.Records)), nil
}

// Series returns one monthly chart series.
func (s *DatasetService) Series(ctx context.Context, metric string) ([]domain.SeriesPoint, error) {
	m, err := domain.ParseSeriesMetric(metric)
	if err != nil {
		return nil, apperrors.NewAppValidationError(err.Error()).WithContext("metric", metric)
	}
	ds, err := s.current()
	if err != nil {
		return nil, err
	}
	return dataprocessing.MonthlySeries(dataprocessing.MonthlySummary(ds.Records), m), nil
}

// Structure describes how the current dataset was read.
func (s *DatasetService) Structure(ctx context.Context) (domain.StructureReport, error) {
	ds, err := s.current()
	if err != nil {
		return domain.StructureReport{}, err
	}
	return dataprocessing.StructureReport(ds), nil
}

// Export writes the current dataset to w in format.
func (s *DatasetService) Export(ctx context.Context, w io.Writer, format string) error {
	ds, err := s.current()
	if err != nil {
		return err
	}

	ctx, span := s.tracer.Start(ctx, "dataset.export",
		trace.WithAttributes(attribute.String("export.format", format)))
	defer span.End()

	switch strings.ToLower(format) {
	case FormatCSV:
		err = exporter.ExportCSV(w, ds.Records, s.csvOptions())
	case FormatXLSX:
		monthly := dataprocessing.SortedMonthly(dataprocessing.MonthlySummary(ds.Records))
		err = exporter.ExportXLSX(w, ds.Records, monthly)
	default:
		return apperrors.NewAppValidationError(fmt.Sprintf("unknown export format %q", format)).
			WithContext("allowed", ExportFormats)
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return apperrors.NewExportError("export failed", err).WithContext("format", format)
	}

	s.metrics.RecordExport(ctx, strings.ToLower(format))
	s.logger.InfoContext(ctx, "dataset exported",
		slog.String("dataset_id", ds.ID),
		slog.String("format", format),
		slog.Int("records", len(ds.Records)))
	return nil
}

// SaveExport writes the current dataset into the export directory and
// returns the file path.
func (s *DatasetService) SaveExport(ctx context.Context, format string) (string, error) {
	if s.paths == nil {
		return "", apperrors.NewConfigError("export directory not configured", nil)
	}

	switch strings.ToLower(format) {
	case FormatCSV:
		ds, err := s.current()
		if err != nil {
			return "", err
		}
		writer := exporter.NewCSVWriter(s.paths.ExportDir, s.logger)
		if err := writer.WriteRecords(config.RecordsCSVName, ds.Records, s.csvOptions()); err != nil {
			return "", apperrors.NewExportError("failed to write export file", err)
		}
		s.metrics.RecordExport(ctx, FormatCSV)
		return writer.Path(config.RecordsCSVName), nil

	case FormatXLSX:
		if _, err := s.current(); err != nil {
			return "", err
		}
		path := s.paths.ExportPath(config.RecordsXLSXName)
		if err := s.writeFileAtomic(ctx, path, FormatXLSX); err != nil {
			return "", err
		}
		return path, nil
	}

	return "", apperrors.NewAppValidationError(fmt.Sprintf("unknown export format %q", format)).
		WithContext("allowed", ExportFormats)
}

// writeFileAtomic exports into a temporary file beside path and renames it
// into place, so a failed export leaves any previous file untouched.
func (s *DatasetService) writeFileAtomic(ctx context.Context, path, format string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewExportError("failed to create export directory", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return apperrors.NewExportError("failed to create export file", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := s.Export(ctx, tmp, format); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return apperrors.NewExportError("failed to write export file", err).WithContext("path", path)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewExportError("failed to write export file", err).WithContext("path", path)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return apperrors.NewExportError("failed to replace export file", err).WithContext("path", path)
	}
	return nil
}

// DataFiles lists loadable files in the data directory.
func (s *DatasetService) DataFiles(ctx context.Context) ([]files.FileInfo, error) {
	if s.paths == nil {
		return nil, apperrors.NewConfigError("data directory not configured", nil)
	}
	list, err := files.DiscoverDataFiles(s.paths.DataDir)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list data files", err).
			WithContext("dir", s.paths.DataDir)
	}
	return list, nil
}

func (s *DatasetService) csvOptions() exporter.Options {
	return exporter.Options{
		Delimiter: s.export.DelimiterRune(),
		BOMPrefix: s.export.BOM,
	}
}
