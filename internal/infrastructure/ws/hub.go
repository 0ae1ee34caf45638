package ws

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ourlittlekingdom/asocijacije/internal/domain"
	"github.com/ourlittlekingdom/asocijacije/internal/game"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/identity"
	httpjson "github.com/ourlittlekingdom/asocijacije/internal/infrastructure/json"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/logging"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/metrics"
)

// Hub upgrades connections and binds each one to a room. Everything
// after the upgrade runs over the envelope protocol.
type Hub struct {
	logger   logging.Logger
	metrics  *metrics.Metrics
	registry *game.Registry
	verifier *identity.Verifier
	profiles domain.ProfileRepository

	upgrader websocket.Upgrader
	msgRate  float64
	msgBurst int
}

type HubOptions struct {
	Logger   logging.Logger
	Metrics  *metrics.Metrics
	Registry *game.Registry
	Verifier *identity.Verifier
	Profiles domain.ProfileRepository

	// Per-connection inbound message budget.
	MessagesPerSecond float64
	MessageBurst      int

	CheckOrigin func(r *http.Request) bool
}

func NewHub(opts HubOptions) *Hub {
	if opts.MessagesPerSecond <= 0 {
		opts.MessagesPerSecond = 10
	}
	if opts.MessageBurst <= 0 {
		opts.MessageBurst = 20
	}

	return &Hub{
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		registry: opts.Registry,
		verifier: opts.Verifier,
		profiles: opts.Profiles,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
		msgRate:  opts.MessagesPerSecond,
		msgBurst: opts.MessageBurst,
	}
}

// Attach is the GET /ws/rooms/{code} handler. Query parameters:
// name (display name for guests), token (session JWT, optional) and
// reconnect (seat reclaim token, optional).
func (h *Hub) Attach(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	account, err := h.resolveAccount(r)
	if err != nil {
		httpjson.WriteError(w, http.StatusUnauthorized, err, "invalid session token")
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" && account == nil {
		httpjson.WriteBadRequestError(w, "a display name is required")
		return
	}

	room, err := h.registry.Resolve(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			httpjson.WriteError(w, http.StatusNotFound, err, "no such room")
		case errors.Is(err, domain.ErrRoomFinished):
			httpjson.WriteError(w, http.StatusGone, err, "this game is over")
		default:
			httpjson.WriteInternalError(w, err)
		}
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the response.
		h.logger.Warn(logging.Realtime, logging.ExternalService, "upgrade failed", map[logging.ExtraKey]any{
			logging.RoomCode:     code,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	connID := uuid.NewString()
	client := newClient(h, conn, room, connID)
	h.metrics.ConnectedClients.Inc()

	participant := game.NewParticipant(connID, name, account, client)
	room.Join(participant, r.URL.Query().Get("reconnect"))

	h.logger.Info(logging.Realtime, logging.RoomLifecycle, "connection attached", map[logging.ExtraKey]any{
		logging.RoomCode: room.Code(),
		logging.Seat:     participant.Slot,
	})

	go client.writePump()
	go client.readPump()
}

func (h *Hub) resolveAccount(r *http.Request) (*domain.Profile, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		return nil, nil
	}

	userID, err := h.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	profile, err := h.profiles.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, identity.ErrInvalidToken
		}
		return nil, err
	}
	return profile, nil
}
