package domain

import "context"

// ParticipantRecord remembers which seat a linked account held in a
// room, so "my games" can be listed and reconnects survive restarts.
type ParticipantRecord struct {
	RoomCode string `bson:"room_code" json:"roomCode"`
	UserID   string `bson:"user_id" json:"userId"`
	Slot     int    `bson:"slot" json:"slot"`
}

// GameSummary is a joined room + seat row for the "my games" listing.
type GameSummary struct {
	Code      string     `bson:"code" json:"code"`
	Name      string     `bson:"name" json:"name"`
	Status    RoomStatus `bson:"status" json:"status"`
	CreatedBy string     `bson:"created_by" json:"createdBy"`
	Slot      int        `bson:"slot" json:"slot"`
}

type ParticipantRepository interface {
	Upsert(ctx context.Context, record *ParticipantRecord) error
	Remove(ctx context.Context, roomCode, userID string) error
	RemoveAll(ctx context.Context, roomCode string) error
	// ListGamesByUser returns the user's seats in rooms that are not finished.
	ListGamesByUser(ctx context.Context, userID string, limit int) ([]GameSummary, error)
}
