package friends

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ourlittlekingdom/asocijacije/internal/domain"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/json"
	"github.com/ourlittlekingdom/asocijacije/internal/presentation/utils"
)

type Handler struct {
	friendships domain.FriendshipRepository
	profiles    domain.ProfileRepository
}

func NewHandler(friendships domain.FriendshipRepository, profiles domain.ProfileRepository) *Handler {
	return &Handler{
		friendships: friendships,
		profiles:    profiles,
	}
}

func (h *Handler) RequestHandler(w http.ResponseWriter, r *http.Request) {
	userID := utils.UserID(r.Context())
	friendID := chi.URLParam(r, "friendId")

	if friendID == userID {
		json.WriteBadRequestError(w, "cannot befriend yourself")
		return
	}

	if _, err := h.profiles.GetByID(r.Context(), friendID); err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			json.WriteError(w, http.StatusNotFound, err, "no such player")
			return
		}
		json.WriteInternalError(w, err)
		return
	}

	if err := h.friendships.Request(r.Context(), userID, friendID); err != nil {
		if errors.Is(err, domain.ErrFriendshipExists) {
			json.WriteError(w, http.StatusConflict, err, "friendship already exists")
			return
		}
		json.WriteInternalError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) AcceptHandler(w http.ResponseWriter, r *http.Request) {
	userID := utils.UserID(r.Context())
	friendID := chi.URLParam(r, "friendId")

	if err := h.friendships.Accept(r.Context(), userID, friendID); err != nil {
		if errors.Is(err, domain.ErrFriendshipNotFound) {
			json.WriteError(w, http.StatusNotFound, err, "no pending request")
			return
		}
		json.WriteInternalError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RemoveHandler(w http.ResponseWriter, r *http.Request) {
	userID := utils.UserID(r.Context())
	friendID := chi.URLParam(r, "friendId")

	if err := h.friendships.Remove(r.Context(), userID, friendID); err != nil {
		if errors.Is(err, domain.ErrFriendshipNotFound) {
			json.WriteError(w, http.StatusNotFound, err, "not friends")
			return
		}
		json.WriteInternalError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	userID := utils.UserID(r.Context())

	friends, err := h.friendships.ListFriends(r.Context(), userID)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, friendListResponse{Friends: friends})
}

func (h *Handler) PendingHandler(w http.ResponseWriter, r *http.Request) {
	userID := utils.UserID(r.Context())

	pending, err := h.friendships.ListPending(r.Context(), userID)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, pendingListResponse{Pending: pending})
}
