package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHealth(t *testing.T) {
	t.Parallel()

	t.Run("Healthy", func(t *testing.T) {
		t.Parallel()
		h := NewHandler(func(ctx context.Context) error { return nil })

		rec := httptest.NewRecorder()
		h.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.NotEmpty(t, resp.Uptime)
	})

	t.Run("Datastore Down", func(t *testing.T) {
		t.Parallel()
		h := NewHandler(func(ctx context.Context) error { return errors.New("no reachable servers") })

		rec := httptest.NewRecorder()
		h.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "unhealthy", resp.Status)
	})

	t.Run("No Ping Configured", func(t *testing.T) {
		t.Parallel()
		h := NewHandler(nil)

		rec := httptest.NewRecorder()
		h.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
