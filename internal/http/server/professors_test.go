package server

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/university-api/internal/http/handlers/health"
	"github.com/aanand-mishra/university-api/internal/logger"
	"github.com/aanand-mishra/university-api/internal/storage/redis"
	"github.com/aanand-mishra/university-api/internal/storage/sqlite"
	"github.com/aanand-mishra/university-api/internal/types"
)

func newProfessorsService(t *testing.T) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	store, err := sqlite.NewProfessors(filepath.Join(t.TempDir(), "professors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cached := redis.NewProfessors(store, client, time.Minute, logger.Discard())

	checker := health.NewChecker("professors", time.Second)
	checker.AddCheck("sqlite", store.Ping)
	checker.AddSoftCheck("redis", cached.Ping)
	return Wrap(ProfessorsRoutes(cached, checker), logger.Discard()), mr
}

func TestProfessorsService(t *testing.T) {
	h, mr := newProfessorsService(t)

	rec := do(t, h, http.MethodGet, "/professors", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.True(t, mr.Exists("professors:all"), "list is cached")

	rec = do(t, h, http.MethodPost, "/professors",
		`{"firstName":"Ada","lastName":"Lovelace","department":"Mathematics","specialties":["Algebra","Analysis"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ada := decode[types.Professor](t, rec)
	assert.Len(t, ada.Specialties, 2)
	assert.False(t, mr.Exists("professors:all"), "create invalidates the cache")

	rec = do(t, h, http.MethodGet, "/professors", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]types.Professor](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/professors/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lovelace", decode[types.Professor](t, rec).LastName)

	rec = do(t, h, http.MethodGet, "/professors/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/professors/department/Mathematics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]types.Professor](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/professors/specialty/Algebra", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]types.Professor](t, rec), 1)

	rec = do(t, h, http.MethodPost, "/professors", `{"firstName":"Ada","specialties":[""]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfessorsService_HealthDegradedWithoutRedis(t *testing.T) {
	h, mr := newProfessorsService(t)
	mr.Close()

	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[health.Report](t, rec)
	assert.Equal(t, health.StatusDegraded, report.Status)
	assert.False(t, report.Checks["redis"].Healthy)
	assert.True(t, report.Checks["sqlite"].Healthy)

	// Reads keep working from SQLite.
	rec = do(t, h, http.MethodGet, "/professors", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
