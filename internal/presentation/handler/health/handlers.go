package health

import (
	"context"
	"net/http"
	"time"

	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/json"
)

type Handler struct {
	started time.Time
	// Pings the datastore; nil means nothing to check.
	ping func(ctx context.Context) error
}

func NewHandler(ping func(ctx context.Context) error) *Handler {
	return &Handler{
		started: time.Now(),
		ping:    ping,
	}
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	data := healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
	}

	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.ping(ctx); err != nil {
			data.Status = "unhealthy"
			json.Write(w, http.StatusServiceUnavailable, data)
			return
		}
	}

	json.Write(w, http.StatusOK, data)
}
