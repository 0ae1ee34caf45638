package rooms

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ourlittlekingdom/asocijacije/internal/domain"
	"github.com/ourlittlekingdom/asocijacije/internal/game"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/json"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/validate"
	"github.com/ourlittlekingdom/asocijacije/internal/presentation/utils"
)

const listLimit = 50

type Handler struct {
	registry     *game.Registry
	rooms        domain.RoomRepository
	participants domain.ParticipantRepository
}

func NewHandler(
	registry *game.Registry,
	rooms domain.RoomRepository,
	participants domain.ParticipantRepository,
) *Handler {
	return &Handler{
		registry:     registry,
		rooms:        rooms,
		participants: participants,
	}
}

func (h *Handler) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	userID := utils.UserID(r.Context())

	var req createRoomRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}
	if err := validateRoomName(req.Name); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	room, err := h.registry.Create(r.Context(), req.Name, userID)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusCreated, createRoomResponse{
		Code: room.Code(),
		Name: room.Name(),
	})
}

// GetRoomHandler reports whether a code is joinable, without touching
// the live room.
func (h *Handler) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	record, err := h.rooms.FindByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			json.WriteError(w, http.StatusNotFound, err, "no such room")
			return
		}
		json.WriteInternalError(w, err)
		return
	}

	resp := roomInfoResponse{
		Code:           record.Code,
		Name:           record.Name,
		Status:         string(record.Status),
		ScheduledStart: record.ScheduledStart,
	}
	if live, ok := h.registry.Peek(record.Code); ok {
		resp.SeatedCount = live.SeatedCount()
		resp.ConnectedCount = live.ConnectedCount()
	}

	json.Write(w, http.StatusOK, resp)
}

// ListOpenHandler lists joinable rooms with their live occupancy.
func (h *Handler) ListOpenHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.rooms.ListOpen(r.Context(), listLimit)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	open := make([]roomInfoResponse, 0, len(records))
	for i := range records {
		info := roomInfoResponse{
			Code:           records[i].Code,
			Name:           records[i].Name,
			Status:         string(records[i].Status),
			ScheduledStart: records[i].ScheduledStart,
		}
		if live, ok := h.registry.Peek(records[i].Code); ok {
			info.SeatedCount = live.SeatedCount()
			info.ConnectedCount = live.ConnectedCount()
		}
		open = append(open, info)
	}

	json.Write(w, http.StatusOK, openRoomsResponse{Rooms: open})
}

// MyRoomsHandler lists rooms the caller created.
func (h *Handler) MyRoomsHandler(w http.ResponseWriter, r *http.Request) {
	userID := utils.UserID(r.Context())

	records, err := h.rooms.ListByCreator(r.Context(), userID, listLimit)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, roomListResponse{Rooms: records})
}

// MyGamesHandler lists unfinished games the caller holds a seat in.
func (h *Handler) MyGamesHandler(w http.ResponseWriter, r *http.Request) {
	userID := utils.UserID(r.Context())

	games, err := h.participants.ListGamesByUser(r.Context(), userID, listLimit)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, gameListResponse{Games: games})
}

func (h *Handler) DeleteRoomHandler(w http.ResponseWriter, r *http.Request) {
	userID := utils.UserID(r.Context())
	code := chi.URLParam(r, "code")

	if err := h.registry.Delete(r.Context(), code, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			json.WriteError(w, http.StatusNotFound, err, "no such room")
		case errors.Is(err, domain.ErrNotCreator):
			json.WriteError(w, http.StatusForbidden, err, "only the creator can delete a room")
		default:
			json.WriteInternalError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

var roomNameValidator = validate.Field("name", validate.MaxLength(60))

func validateRoomName(name string) error {
	return roomNameValidator(name)
}
