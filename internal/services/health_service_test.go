package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epicli/internal/dataprocessing"
	"epicli/internal/shared/testutil"
)

type stubHub struct {
	running bool
	clients int
}

func (h stubHub) Running() bool    { return h.running }
func (h stubHub) ClientCount() int { return h.clients }

func TestHealthService_HealthAndLiveness(t *testing.T) {
	hs := NewHealthService("1.2.3", "", nil, nil, discardLogger())

	health := hs.HealthCheck(context.Background())
	assert.Equal(t, StatusOK, health.Status)
	assert.Equal(t, "1.2.3", health.Version)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, StatusAlive, live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	version := hs.Version()
	assert.Equal(t, "1.2.3", version["version"])
}

func TestHealthService_Readiness(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name       string
		dataDir    string
		hub        HubStatus
		wantStatus string
	}{
		{name: "all ready", dataDir: dir, hub: stubHub{running: true, clients: 2}, wantStatus: StatusReady},
		{name: "no hub configured", dataDir: dir, wantStatus: StatusReady},
		{name: "hub stopped", dataDir: dir, hub: stubHub{}, wantStatus: StatusNotReady},
		{name: "data dir missing", dataDir: filepath.Join(dir, "missing"), hub: stubHub{running: true}, wantStatus: StatusNotReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService("test", tt.dataDir, tt.hub, nil, discardLogger())
			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Len(t, status.Services, 3)
		})
	}
}

func TestHealthService_ReadinessReportsDataset(t *testing.T) {
	svc := NewDatasetService(DatasetServiceDeps{
		Processor: dataprocessing.NewProcessor(discardLogger(), dataprocessing.ProcessorConfig{}),
		Logger:    discardLogger(),
	})
	hs := NewHealthService("test", "", nil, svc, discardLogger())
	ctx := context.Background()

	before := hs.ReadinessCheck(ctx)
	assert.Equal(t, StatusReady, before.Status)
	assert.Equal(t, "no dataset loaded", before.Services["dataset"].Message)

	summary, err := svc.LoadContent(ctx, "", testutil.HeaderTable)
	require.NoError(t, err)

	after := hs.ReadinessCheck(ctx)
	view, ok := after.Services["dataset"].Details.(LoadSummaryView)
	require.True(t, ok)
	assert.Equal(t, summary.DatasetID, view.DatasetID)
	assert.Equal(t, 4, view.RecordCount)
}
