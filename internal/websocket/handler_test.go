package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epicli/internal/config"
)

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestHandlerUpgradesAndDelivers(t *testing.T) {
	hub := NewHub(discardLogger(), nil)
	hub.Start()
	defer hub.Stop()

	server := httptest.NewServer(NewHandler(hub, config.Default().WebSocket, discardLogger()))
	defer server.Close()

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var welcome Message
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, TypeConnection, welcome.Type)

	require.NoError(t, hub.Broadcast(context.Background(), TypeDatasetLoaded, map[string]string{"dataset_id": "d1"}))

	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, TypeDatasetLoaded, msg.Type)
	assert.Equal(t, "d1", msg.Data["dataset_id"])
}

func TestHandlerOriginCheck(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		wantOK  bool
	}{
		{name: "no restriction", origin: "http://elsewhere.example", wantOK: true},
		{name: "allowed origin", allowed: []string{"http://app.example"}, origin: "http://app.example", wantOK: true},
		{name: "rejected origin", allowed: []string{"http://app.example"}, origin: "http://evil.example", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub(discardLogger(), nil)
			hub.Start()
			defer hub.Stop()

			cfg := config.Default().WebSocket
			cfg.AllowedOrigins = tt.allowed
			server := httptest.NewServer(NewHandler(hub, cfg, discardLogger()))
			defer server.Close()

			header := http.Header{"Origin": []string{tt.origin}}
			conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server), header)
			if tt.wantOK {
				require.NoError(t, err)
				conn.Close()
				return
			}
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}

func TestClientConfigFrom(t *testing.T) {
	cfg := config.Default().WebSocket
	got := ClientConfigFrom(cfg)
	assert.Equal(t, cfg.PingPeriod, got.PingPeriod)
	assert.Equal(t, cfg.PongWait, got.PongWait)
	assert.Equal(t, cfg.WriteWait, got.WriteWait)
	assert.Positive(t, got.SendBuffer)
}
