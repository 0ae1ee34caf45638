package profile

import (
	"errors"
	"net/http"

	"github.com/ourlittlekingdom/asocijacije/internal/domain"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/json"
	"github.com/ourlittlekingdom/asocijacije/internal/presentation/utils"
)

type Handler struct {
	profiles domain.ProfileRepository
}

func NewHandler(profiles domain.ProfileRepository) *Handler {
	return &Handler{profiles: profiles}
}

// MeHandler returns the caller's profile with its win/play counters.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID := utils.UserID(r.Context())

	p, err := h.profiles.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			json.WriteError(w, http.StatusNotFound, err, "profile not found")
			return
		}
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, p)
}
