package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/types"
)

func serveHealth(t *testing.T, h *HealthHandler, target string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/healthz", h.Liveness)
	engine.GET("/readyz", h.Readiness)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealthLiveness(t *testing.T) {
	h := NewHealthHandler(nil, nil)

	rec := serveHealth(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var report types.HealthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.Healthy())
	assert.Empty(t, report.Components)
}

func TestHealthReadinessAllUp(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return nil },
	}, nil)

	rec := serveHealth(t, h, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)

	var report types.HealthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.Healthy())
	assert.Equal(t, map[string]string{
		"postgres": types.HealthOK,
		"redis":    types.HealthOK,
	}, report.Components)
}

func TestHealthReadinessDependencyDown(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{
		"postgres": func(context.Context) error { return nil },
		"redis": func(context.Context) error {
			return errors.ServiceUnavailable("redis ping failed")
		},
	}, nil)

	rec := serveHealth(t, h, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var report types.HealthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.False(t, report.Healthy())
	assert.Equal(t, types.HealthOK, report.Components["postgres"])
	assert.Equal(t, types.HealthDown, report.Components["redis"])
}
