package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctrld/internal/registry"
	"github.com/fyrsmithlabs/ctrld/internal/store"
)

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "manifest.toml"), zap.NewNop())
	require.NoError(t, err)
	reg, err := registry.New(st, zap.NewNop())
	require.NoError(t, err)
	return reg
}

func TestNewServer(t *testing.T) {
	t.Run("creates server with valid config", func(t *testing.T) {
		cfg := &Config{
			Host: "localhost",
			Port: 9090,
		}

		server, err := NewServer(newTestRegistry(t), prometheus.NewRegistry(), zap.NewNop(), cfg)
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.NotNil(t, server.echo)
		assert.Equal(t, cfg, server.config)
	})

	t.Run("uses defaults when config is nil", func(t *testing.T) {
		server, err := NewServer(newTestRegistry(t), nil, zap.NewNop(), nil)
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.Equal(t, "localhost", server.config.Host)
		assert.Equal(t, 9090, server.config.Port)
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		_, err := NewServer(newTestRegistry(t), nil, nil, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})

	t.Run("returns error when registry is nil", func(t *testing.T) {
		_, err := NewServer(nil, nil, zap.NewNop(), nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "registry cannot be nil")
	})
}

func TestHandleHealth(t *testing.T) {
	server, err := NewServer(newTestRegistry(t), prometheus.NewRegistry(), zap.NewNop(), nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleMetrics(t *testing.T) {
	promReg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ctrld_test_total",
		Help: "Test counter.",
	})
	require.NoError(t, promReg.Register(counter))
	counter.Inc()

	server, err := NewServer(newTestRegistry(t), promReg, zap.NewNop(), nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ctrld_test_total 1")
}

func TestHandleListProjects(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.Create(ctx, "widgets", "C01")
	require.NoError(t, err)
	_, err = reg.Create(ctx, "gadgets", "C02")
	require.NoError(t, err)
	require.NoError(t, reg.SetRepository(ctx, "widgets", "acme/widgets"))

	server, err := NewServer(reg, prometheus.NewRegistry(), zap.NewNop(), nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListProjectsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Projects, 2)

	// Sorted by name.
	assert.Equal(t, "gadgets", resp.Projects[0].Name)
	assert.Equal(t, "widgets", resp.Projects[1].Name)
	assert.Equal(t, "acme/widgets", resp.Projects[1].Repository)
	assert.Equal(t, "C01", resp.Projects[1].Channel)
}

func TestHandleGetProject(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.Create(ctx, "widgets", "C01")
	require.NoError(t, err)

	server, err := NewServer(reg, prometheus.NewRegistry(), zap.NewNop(), nil)
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/widgets", nil)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp ProjectResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "widgets", resp.Name)
		assert.Equal(t, "C01", resp.Channel)
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/ghost", nil)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestShutdown(t *testing.T) {
	server, err := NewServer(newTestRegistry(t), prometheus.NewRegistry(), zap.NewNop(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, server.Shutdown(ctx))
}
