package http

import (
	"context"
	"io"

	"epicli/internal/files"
	"epicli/internal/services"
	"epicli/pkg/contracts/domain"
)

// DatasetServiceInterface defines the dataset operations the HTTP layer uses
type DatasetServiceInterface interface {
	LoadContent(ctx context.Context, source, content string) (domain.LoadSummary, error)
	LoadFile(ctx context.Context, path string) (domain.LoadSummary, error)
	Summary(ctx context.Context) (domain.LoadSummary, error)
	Records(ctx context.Context, q services.RecordQuery) (services.RecordPage, error)
	Monthly(ctx context.Context) ([]domain.MonthlySummary, error)
	Statistics(ctx context.Context) (domain.OverallStatistics, error)
	Locations(ctx context.Context) ([]domain.LocationTotal, error)
	Trend(ctx context.Context) ([]domain.TrendPoint, error)
	Series(ctx context.Context, metric string) ([]domain.SeriesPoint, error)
	Structure(ctx context.Context) (domain.StructureReport, error)
	Export(ctx context.Context, w io.Writer, format string) error
	SaveExport(ctx context.Context, format string) (string, error)
	DataFiles(ctx context.Context) ([]files.FileInfo, error)
}

var _ DatasetServiceInterface = (*services.DatasetService)(nil)
