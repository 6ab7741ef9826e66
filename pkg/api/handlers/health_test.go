package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfs4d/pkg/metadata"
	"github.com/marmos91/nfs4d/pkg/metadata/store/memory"
)

type fixedConns int32

func (c fixedConns) GetActiveConnections() int32 { return int32(c) }

type brokenStore struct {
	metadata.MetadataStore
}

func (brokenStore) Healthcheck(context.Context) error {
	return errors.New("disk on fire")
}

func (brokenStore) Stats(context.Context) (*metadata.StoreStats, error) {
	return nil, errors.New("disk on fire")
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func serve(h http.HandlerFunc, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLiveness(t *testing.T) {
	rec := serve(NewHealthHandler(nil, nil).Liveness, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, map[string]interface{}{"service": "nfs4d"}, resp.Data)
}

func TestReadiness(t *testing.T) {
	t.Run("NoStore", func(t *testing.T) {
		rec := serve(NewHealthHandler(nil, nil).Readiness, "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "metadata store not initialized", decode(t, rec).Error)
	})

	t.Run("Healthy", func(t *testing.T) {
		h := NewHealthHandler(memory.NewMemoryMetadataStoreWithDefaults(), fixedConns(3))
		rec := serve(h.Readiness, "/health/ready")

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decode(t, rec)
		assert.Equal(t, "healthy", resp.Status)

		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "memory", data["backend"])
		assert.EqualValues(t, 3, data["active_connections"])
		assert.NotEmpty(t, data["latency"])
	})

	t.Run("HealthcheckFails", func(t *testing.T) {
		rec := serve(NewHealthHandler(brokenStore{}, nil).Readiness, "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		resp := decode(t, rec)
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "disk on fire", resp.Error)
	})
}

func TestStats(t *testing.T) {
	t.Run("Counts", func(t *testing.T) {
		store := memory.NewMemoryMetadataStoreWithDefaults()
		ctx := context.Background()
		require.NoError(t, store.CreateDir(ctx, "/d"))
		require.NoError(t, store.CreateFile(ctx, "/d/f", 100))

		rec := serve(NewHealthHandler(store, nil).Stats, "/stats")
		assert.Equal(t, http.StatusOK, rec.Code)

		resp := decode(t, rec)
		assert.Equal(t, "ok", resp.Status)
		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "memory", data["backend"])
		assert.EqualValues(t, 3, data["entries"])
		assert.EqualValues(t, 2, data["directories"])
		assert.EqualValues(t, 1, data["files"])
		assert.EqualValues(t, 100, data["total_bytes"])
	})

	t.Run("StoreError", func(t *testing.T) {
		rec := serve(NewHealthHandler(brokenStore{}, nil).Stats, "/stats")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "error", decode(t, rec).Status)
	})

	t.Run("NoStore", func(t *testing.T) {
		rec := serve(NewHealthHandler(nil, nil).Stats, "/stats")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
