package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincatec/domain-store/internal/core/ports"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func serve(t *testing.T, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestLiveness(t *testing.T) {
	rec := serve(t, NewHealthHandler().Liveness)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadiness_AllHealthy(t *testing.T) {
	h := NewHealthDependenciesHandler(map[string]ports.Pinger{
		"store": pingFunc(func(context.Context) error { return nil }),
	})
	rec := serve(t, h.Readiness)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body readinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Dependencies["store"].Status)
}

func TestReadiness_Degraded(t *testing.T) {
	h := NewHealthDependenciesHandler(map[string]ports.Pinger{
		"store": pingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})
	rec := serve(t, h.Readiness)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body readinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unhealthy", body.Dependencies["store"].Status)
	assert.Equal(t, "connection refused", body.Dependencies["store"].Error)
}

func TestReadiness_NoDependencies(t *testing.T) {
	rec := serve(t, NewHealthDependenciesHandler(nil).Readiness)

	assert.Equal(t, http.StatusOK, rec.Code)
}
