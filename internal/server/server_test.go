package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
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

	"github.com/flowtomic/zoo/internal/registry"
)

func testRegistry() *registry.Registry {
	reg := registry.Empty()
	reg.Version = "1.0.0"
	reg.Items = []registry.Item{
		{Name: "button", Type: registry.TypeUI, Title: "Button", Files: []registry.File{{Path: "ui/button/button.tsx", Type: registry.TypeUI, Content: strings.Repeat("x", 2048)}}},
		{Name: "card", Type: registry.TypeUI, Title: "Card", Files: []registry.File{}},
		{Name: "navbar", Type: registry.TypeBlock, Title: "Navbar", Files: []registry.File{}},
		{Name: "use-mounted", Type: registry.TypeHook, Title: "Use Mounted", Files: []registry.File{}},
	}
	return reg
}

func testServer(t *testing.T, write bool) (*Server, string) {
	t.Helper()
	file := filepath.Join(t.TempDir(), registry.FileName)
	if write {
		require.NoError(t, registry.Write(testRegistry(), file))
	}
	cfg := DefaultConfig()
	cfg.File = file
	cfg.MaxAge = 60
	cfg.StaleWhileRevalidate = 600
	return New(cfg, nil), file
}

func get(t *testing.T, h http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) *registry.Registry {
	t.Helper()
	var reg registry.Registry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	return &reg
}

func itemNames(reg *registry.Registry) []string {
	var names []string
	for _, it := range reg.Items {
		names = append(names, it.Name)
	}
	return names
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, "public, max-age=3600, s-maxage=3600, stale-while-revalidate=86400", cfg.CacheControl())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("ZOO_REGISTRY_ADDR=:9999\nZOO_REGISTRY_MAX_AGE=10\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("ZOO_REGISTRY_ADDR") })
	t.Setenv("ZOO_REGISTRY_MAX_AGE", "20")
	t.Setenv("ZOO_REGISTRY_CORS_ORIGINS", "https://a.dev,https://b.dev")

	cfg, err := LoadConfig(envFile, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 20, cfg.MaxAge)
	assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, cfg.CORSOrigins)
}

func TestViews(t *testing.T) {
	s, _ := testServer(t, true)

	tests := []struct {
		path string
		want []string
	}{
		{"/all.json", []string{"button", "card", "navbar", "use-mounted"}},
		{"/registry.json", []string{"button", "card", "navbar", "use-mounted"}},
		{"/components.json", []string{"button", "card"}},
		{"/blocks.json", []string{"navbar"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, s.Handler(), tt.path)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, "public, max-age=60, s-maxage=60, stale-while-revalidate=600", rec.Header().Get("Cache-Control"))

			reg := decode(t, rec)
			assert.Equal(t, "1.0.0", reg.Version)
			assert.Equal(t, tt.want, itemNames(reg))
		})
	}
}

func TestFallbackWhenMissing(t *testing.T) {
	s, _ := testServer(t, false)

	rec := get(t, s.Handler(), "/all.json", "Origin", "https://example.com")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{
		"$schema": "https://ui.shadcn.com/schema/registry.json",
		"name": "zoo",
		"homepage": "https://zoo.flowtomic.dev",
		"items": []
	}`, rec.Body.String())
}

func TestCORSRestrictedOrigins(t *testing.T) {
	file := filepath.Join(t.TempDir(), registry.FileName)
	cfg := DefaultConfig()
	cfg.File = file
	cfg.CORSOrigins = []string{"https://allowed.dev"}
	h := New(cfg, nil).Handler()

	assert.Equal(t, "https://allowed.dev",
		get(t, h, "/all.json", "Origin", "https://allowed.dev").Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t,
		get(t, h, "/all.json", "Origin", "https://other.dev").Header().Get("Access-Control-Allow-Origin"))
}

func TestItem(t *testing.T) {
	s, _ := testServer(t, true)

	rec := get(t, s.Handler(), "/r/button.json")
	require.Equal(t, http.StatusOK, rec.Code)
	var item registry.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, "button", item.Name)
	assert.Equal(t, registry.ItemSchemaURL, item.Schema)

	rec = get(t, s.Handler(), "/r/nope.json")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "item not found", "name": "nope"}`, rec.Body.String())
}

func TestGzip(t *testing.T) {
	s, _ := testServer(t, true)
	rec := get(t, s.Handler(), "/all.json", "Accept-Encoding", "gzip")
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := testServer(t, true)
	h := s.Handler()

	rec := get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok", "version": "1.0.0", "items": 4}`, rec.Body.String())

	get(t, h, "/components.json")
	rec = get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `zoo_registry_requests_total{route="/components.json",status="200"} 1`)
	assert.Contains(t, body, "zoo_registry_request_duration_seconds")
}

func TestUnknownRoute(t *testing.T) {
	s, _ := testServer(t, true)
	rec := get(t, s.Handler(), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestStoreCachesUntilInvalidated(t *testing.T) {
	s, file := testServer(t, true)
	store := s.Store()

	assert.Len(t, store.Get().Items, 4)
	assert.Len(t, store.Get().Items, 4)
	assert.Equal(t, int64(1), store.Loads())

	require.NoError(t, registry.Write(registry.Empty(), file))
	assert.Len(t, store.Get().Items, 4)

	store.Invalidate()
	assert.Empty(t, store.Get().Items)
	assert.Equal(t, int64(2), store.Loads())
}

func TestWatchReloadsAndNotifies(t *testing.T) {
	file := filepath.Join(t.TempDir(), registry.FileName)
	require.NoError(t, registry.Write(registry.Empty(), file))

	cfg := DefaultConfig()
	cfg.File = file
	cfg.Watch = true
	s := New(cfg, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()
	defer func() {
		cancel()
		assert.NoError(t, <-done)
	}()

	base := "http://" + ln.Addr().String()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.Hub().ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get(base + "/all.json")
	require.NoError(t, err)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	// Let the watcher register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, registry.Write(testRegistry(), file))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	for msg.Items != 4 {
		require.NoError(t, conn.ReadJSON(&msg))
	}
	assert.Equal(t, MessageRegistryUpdated, msg.Type)
	assert.Equal(t, "1.0.0", msg.Version)

	resp, err = http.Get(base + "/blocks.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), `"navbar"`))
}
