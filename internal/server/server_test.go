package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/lifedash/internal/config"
	"github.com/iudanet/lifedash/pkg/api"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.DefaultConfig().Server
	cfg.DBPath = filepath.Join(t.TempDir(), "server.db")
	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	cfg.ShutdownTimeout = time.Second

	s, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func authedRequest(t *testing.T, method, url, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestServer_RowRoundTrip(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	alice, _, err := s.Tokens().GenerateAccessToken("alice@example.com", 0)
	require.NoError(t, err)
	bob, _, err := s.Tokens().GenerateAccessToken("bob@example.com", 0)
	require.NoError(t, err)

	resp := authedRequest(t, http.MethodPut, ts.URL+"/api/v1/rows/tasks", alice,
		`{"data":{"items":[{"id":"1","title":"write"}]},"updated_at":1000,"schema_version":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var upsert api.UpsertResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&upsert))
	assert.True(t, upsert.Applied)

	resp = authedRequest(t, http.MethodPut, ts.URL+"/api/v1/rows/tasks", alice, `{"data":{"items":[]},"updated_at":999}`)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&upsert))
	assert.False(t, upsert.Applied, "older write must not overwrite")

	resp = authedRequest(t, http.MethodGet, ts.URL+"/api/v1/rows", alice, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rows api.RowsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows.Rows, 1)
	assert.Equal(t, int64(1000), rows.Rows[0].UpdatedAt)
	assert.JSONEq(t, `{"items":[{"id":"1","title":"write"}]}`, string(rows.Rows[0].Data))

	resp = authedRequest(t, http.MethodGet, ts.URL+"/api/v1/rows", bob, "")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	assert.Empty(t, rows.Rows)
}

func TestServer_PublicAndProtectedRoutes(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
	}{
		{name: "health is public", method: http.MethodGet, path: "/api/v1/health", wantCode: http.StatusOK},
		{name: "metrics is public", method: http.MethodGet, path: "/metrics", wantCode: http.StatusOK},
		{name: "rows require token", method: http.MethodGet, path: "/api/v1/rows", wantCode: http.StatusUnauthorized},
		{name: "upsert requires token", method: http.MethodPut, path: "/api/v1/rows/tasks", wantCode: http.StatusUnauthorized},
		{name: "realtime requires token", method: http.MethodGet, path: "/api/v1/realtime", wantCode: http.StatusUnauthorized},
		{name: "wrong method", method: http.MethodDelete, path: "/api/v1/rows/tasks", wantCode: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := authedRequest(t, tt.method, ts.URL+tt.path, "", "")
			assert.Equal(t, tt.wantCode, resp.StatusCode)
		})
	}
}

func TestServer_RealtimeReceivesUpserts(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	token, _, err := s.Tokens().GenerateAccessToken("alice@example.com", 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/api/v1/realtime",
		&websocket.DialOptions{HTTPHeader: header})
	require.NoError(t, err)
	defer func() { _ = conn.CloseNow() }()

	require.Eventually(t, func() bool { return s.hub.Subscribers("alice@example.com") == 1 },
		2*time.Second, 10*time.Millisecond)

	resp := authedRequest(t, http.MethodPut, ts.URL+"/api/v1/rows/settings", token, `{"data":{"theme":"dark"},"updated_at":42}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var event api.ChangeEvent
	require.NoError(t, wsjson.Read(ctx, conn, &event))
	assert.Equal(t, "settings", event.Row.Key)
	assert.Equal(t, int64(42), event.Row.UpdatedAt)
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	s := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/v1/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
