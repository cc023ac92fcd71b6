package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"epicli/internal/infrastructure"
	"epicli/pkg/contracts"
)

// Health states.
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// HubStatus is the part of the websocket hub the health checks inspect.
type HubStatus interface {
	Running() bool
	ClientCount() int
}

// LoadSummaryView is the subset of a load summary shown by health checks.
type LoadSummaryView struct {
	DatasetID   string    `json:"dataset_id"`
	RecordCount int       `json:"record_count"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	dataDir   string
	hub       HubStatus
	datasets  *DatasetService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// NewHealthService creates a health service. hub and datasets may be nil.
func NewHealthService(version, dataDir string, hub HubStatus, datasets *DatasetService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &HealthService{
		version:   version,
		dataDir:   dataDir,
		hub:       hub,
		datasets:  datasets,
		startTime: time.Now(),
		logger:    infrastructure.WithComponent(logger, "health_service"),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "health check",
		slog.Duration("uptime", time.Since(hs.startTime)))

	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports whether the server can take loads. A missing
// dataset does not make the server unready.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"data_dir":  hs.checkDataDir(),
			"websocket": hs.checkWebSocket(),
			"dataset":   hs.checkDataset(ctx),
		},
	}

	for _, service := range status.Services {
		if service.Status != StatusReady {
			status.Status = StatusNotReady
			break
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	build := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":     hs.version,
		"api_version": build.APIVersion,
		"build_time":  build.BuildTime,
		"git_commit":  build.GitCommit,
		"go_version":  build.GoVersion,
		"os":          build.OS,
		"arch":        build.Architecture,
		"uptime":      time.Since(hs.startTime).Seconds(),
		"start_time":  hs.startTime.Format(time.RFC3339),
	}
}

func (hs *HealthService) checkDataDir() ServiceHealth {
	if hs.dataDir == "" {
		return ServiceHealth{Status: StatusReady, Message: "no data directory configured"}
	}
	info, err := os.Stat(hs.dataDir)
	if err != nil {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("data directory unavailable: %v", err),
		}
	}
	if !info.IsDir() {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("%s is not a directory", hs.dataDir),
		}
	}
	return ServiceHealth{Status: StatusReady}
}

func (hs *HealthService) checkWebSocket() ServiceHealth {
	if hs.hub == nil {
		return ServiceHealth{Status: StatusReady, Message: "websocket disabled"}
	}
	if !hs.hub.Running() {
		return ServiceHealth{Status: StatusNotReady, Message: "websocket hub not running"}
	}
	return ServiceHealth{
		Status:  StatusReady,
		Details: map[string]int{"clients": hs.hub.ClientCount()},
	}
}

func (hs *HealthService) checkDataset(ctx context.Context) ServiceHealth {
	if hs.datasets == nil {
		return ServiceHealth{Status: StatusReady, Message: "dataset service disabled"}
	}
	summary, err := hs.datasets.Summary(ctx)
	if err != nil {
		return ServiceHealth{Status: StatusReady, Message: "no dataset loaded"}
	}
	return ServiceHealth{
		Status: StatusReady,
		Details: LoadSummaryView{
			DatasetID:   summary.DatasetID,
			RecordCount: summary.RecordCount,
			LoadedAt:    summary.LoadedAt,
		},
	}
}
