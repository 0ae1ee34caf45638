package rooms

import (
	"time"

	"github.com/ourlittlekingdom/asocijacije/internal/domain"
)

type createRoomRequest struct {
	Name string `json:"name"`
}

type createRoomResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type roomInfoResponse struct {
	Code           string     `json:"code"`
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	ScheduledStart *time.Time `json:"scheduledStart,omitempty"`
	SeatedCount    int        `json:"seatedCount"`
	ConnectedCount int        `json:"connectedCount"`
}

type openRoomsResponse struct {
	Rooms []roomInfoResponse `json:"rooms"`
}

type roomListResponse struct {
	Rooms []domain.RoomRecord `json:"rooms"`
}

type gameListResponse struct {
	Games []domain.GameSummary `json:"games"`
}
