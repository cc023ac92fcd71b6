package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epicli/internal/app"
	"epicli/internal/config"
	apierrors "epicli/internal/errors"
	"epicli/internal/shared/testutil"
	ws "epicli/internal/websocket"
)

// latin1Table is a semicolon table whose location names are ISO-8859-1
// encoded, so it only decodes through the charmap fallback.
var latin1Table = []byte("data;municipio;novos_casos;novos_obitos\n" +
	"01/03/2024;S\xe3o Crist\xf3v\xe3o;7;1\n" +
	"02/03/2024;S\xe3o Crist\xf3v\xe3o;3;0\n" +
	"01/03/2024;Aracaju;10;2\n")

// envelope holds either a success body or the error_code of a problem
// details response.
type envelope struct {
	Status    string          `json:"status"`
	Data      json.RawMessage `json:"data"`
	ErrorCode string          `json:"-"`
}

type problem struct {
	Status    int    `json:"status"`
	ErrorCode string `json:"error_code"`
}

type pipeline struct {
	t      *testing.T
	app    *app.Application
	server *httptest.Server
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	base := t.TempDir()

	cfg := config.Default()
	cfg.Ingest.DataDir = filepath.Join(base, "data")
	cfg.Export.Dir = filepath.Join(base, "exports")
	cfg.RateLimit.Enabled = false
	require.NoError(t, os.MkdirAll(cfg.Ingest.DataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Ingest.DataDir, "casos.csv"), latin1Table, 0o644))

	a, err := app.New(cfg, app.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)

	srv := httptest.NewServer(a.Router)
	t.Cleanup(func() {
		srv.Close()
		_ = a.Shutdown(context.Background())
	})
	return &pipeline{t: t, app: a, server: srv}
}

func (p *pipeline) do(method, path, contentType, body string) (int, envelope) {
	p.t.Helper()
	req, err := http.NewRequest(method, p.server.URL+path, strings.NewReader(body))
	require.NoError(p.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(p.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(p.t, err)
	if len(raw) == 0 {
		return resp.StatusCode, env
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		require.NoError(p.t, json.Unmarshal(raw, &env), string(raw))
		return resp.StatusCode, env
	}

	var pd problem
	require.NoError(p.t, json.Unmarshal(raw, &pd), string(raw))
	assert.Equal(p.t, resp.StatusCode, pd.Status)
	env.ErrorCode = pd.ErrorCode
	return resp.StatusCode, env
}

func (p *pipeline) dial() *websocket.Conn {
	p.t.Helper()
	url := "ws" + strings.TrimPrefix(p.server.URL, "http") + config.WebSocketEndpoint
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(p.t, err)
	p.t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn, messageType string) ws.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg ws.Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == messageType {
			return msg
		}
	}
}

func TestPipeline_LoadNotifyExportReload(t *testing.T) {
	p := newPipeline(t)
	conn := p.dial()
	readMessage(t, conn, ws.TypeConnection)

	status, env := p.do(http.MethodPost, "/api/dataset", "application/json", `{"path":"casos.csv"}`)
	require.Equal(t, http.StatusCreated, status)

	var summary struct {
		DatasetID   string `json:"dataset_id"`
		RecordCount int    `json:"record_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 3, summary.RecordCount)

	loaded := readMessage(t, conn, ws.TypeDatasetLoaded)
	data, ok := loaded.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, summary.DatasetID, data["dataset_id"])

	status, env = p.do(http.MethodGet, "/api/dataset/locations", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "São Cristóvão")

	status, env = p.do(http.MethodGet, "/api/dataset/statistics", "", "")
	require.Equal(t, http.StatusOK, status)
	before := env.Data

	status, env = p.do(http.MethodPost, "/api/dataset/export?format=csv", "", "")
	require.Equal(t, http.StatusCreated, status)
	var saved struct {
		Path string `json:"path"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &saved))
	exported, err := os.ReadFile(saved.Path)
	require.NoError(t, err)

	body, err := json.Marshal(map[string]string{"content": string(exported), "source": "reload"})
	require.NoError(t, err)
	status, _ = p.do(http.MethodPost, "/api/dataset", "application/json", string(body))
	require.Equal(t, http.StatusCreated, status)

	status, env = p.do(http.MethodGet, "/api/dataset/statistics", "", "")
	require.Equal(t, http.StatusOK, status)
	assertSameTotals(t, before, env.Data)
}

func TestPipeline_FailedLoadIsBroadcast(t *testing.T) {
	p := newPipeline(t)
	conn := p.dial()
	readMessage(t, conn, ws.TypeConnection)

	status, env := p.do(http.MethodPost, "/api/dataset", "text/plain", testutil.UnusableTable)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, apierrors.CodeNoUsableData, env.ErrorCode)

	failed := readMessage(t, conn, ws.TypeDatasetLoadFailed)
	data, ok := failed.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "upload", data["source"])

	status, env = p.do(http.MethodGet, "/api/dataset", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apierrors.CodeNoDataLoaded, env.ErrorCode)
}

func TestPipeline_XLSXDownload(t *testing.T) {
	p := newPipeline(t)

	status, _ := p.do(http.MethodPost, "/api/dataset", "application/json", `{"path":"casos.csv"}`)
	require.Equal(t, http.StatusCreated, status)

	resp, err := http.Get(p.server.URL + "/api/dataset/export?format=xlsx")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("PK")), "xlsx is a zip archive")
}

func assertSameTotals(t *testing.T, before, after json.RawMessage) {
	t.Helper()
	type totals struct {
		TotalRecords    int    `json:"total_records"`
		UniqueLocations int    `json:"unique_locations"`
		DateRange       string `json:"date_range"`
		TotalNewCases   int64  `json:"total_new_cases"`
		TotalNewDeaths  int64  `json:"total_new_deaths"`
	}
	var a, b totals
	require.NoError(t, json.Unmarshal(before, &a))
	require.NoError(t, json.Unmarshal(after, &b))
	assert.Equal(t, a, b)
	assert.EqualValues(t, 20, b.TotalNewCases)
}
