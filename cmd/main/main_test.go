package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CTAG07/loremipsum/pkg/store"
)

// testEnv is a Server over a temporary data directory.
type testEnv struct {
	dir        string
	configPath string
	cm         *ConfigManager
	server     *Server
	actionChan chan string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Server.DatabasePath = filepath.Join(dir, "test.db")
	cfg.Server.TemplateDir = filepath.Join(dir, "templates")
	cfg.Server.WatchTemplates = false
	configPath := filepath.Join(dir, "config.json")
	data, err := marshalConfig(configPath, cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(configPath, data, 0644))

	cm, err := NewConfigManager(configPath)
	require.NoError(t, err)
	logger := slog.New(slog.DiscardHandler)
	cm.SetLogger(logger)

	db, err := initDB(cfg.Server.DatabasePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.SetupSchema(db))

	actionChan := make(chan string, 1)
	server, err := NewServer(cm, logger, db, actionChan)
	require.NoError(t, err)
	t.Cleanup(server.Close)

	return &testEnv{dir: dir, configPath: configPath, cm: cm, server: server, actionChan: actionChan}
}

// do sends a request through the full handler chain.
func (e *testEnv) do(t *testing.T, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rr := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rr, req)
	return rr
}

// doJSON sends v as a JSON body.
func (e *testEnv) doJSON(t *testing.T, method, target string, v any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return e.do(t, method, target, bytes.NewReader(data))
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

func requireStatus(t *testing.T, rr *httptest.ResponseRecorder, code int) {
	t.Helper()
	require.Equal(t, code, rr.Code, "body: %s", rr.Body.String())
}
