package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matcat/internal/infrastructure/http/v1/handlers"
	"matcat/internal/infrastructure/storage/postgres"
)

type fakeDatabase struct {
	pingErr error
}

func (f fakeDatabase) Ping(context.Context) error { return f.pingErr }

func (f fakeDatabase) Stats() postgres.PoolStats {
	return postgres.PoolStats{TotalConns: 3, AcquiredConns: 1, IdleConns: 2, MaxConns: 10}
}

func healthEngine(db handlers.Database) *gin.Engine {
	h := handlers.NewHealthHandler(db, "matcat", "1.2.3")
	engine := gin.New()
	engine.GET("/live", h.Live)
	engine.GET("/ready", h.Ready)
	engine.GET("/info", h.Info)
	return engine
}

func TestHealthHandler_Ready(t *testing.T) {
	rec := serve(t, healthEngine(fakeDatabase{}), http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, healthEngine(fakeDatabase{pingErr: errors.New("refused")}), http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unhealthy: refused")
}

func TestHealthHandler_LiveAndInfo(t *testing.T) {
	engine := healthEngine(fakeDatabase{pingErr: errors.New("down")})

	rec := serve(t, engine, http.MethodGet, "/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, engine, http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "matcat", body["app"])
	assert.Equal(t, "1.2.3", body["version"])
	assert.EqualValues(t, 10, body["database"].(map[string]any)["max_conns"])
}
