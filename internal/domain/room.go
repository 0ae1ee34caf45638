package domain

import (
	"context"
	"time"
)

type RoomStatus string

const (
	RoomStatusLobby    RoomStatus = "lobby"
	RoomStatusPlaying  RoomStatus = "playing"
	RoomStatusFinished RoomStatus = "finished"
)

// RoomRecord is the durable half of a room. The live state machine
// (seats, phase, timers) lives in memory only; this record survives
// process restarts so a room code can be rehydrated on join.
type RoomRecord struct {
	Code           string     `bson:"_id" json:"code"`
	Name           string     `bson:"name" json:"name"`
	CreatedBy      string     `bson:"created_by" json:"createdBy"`
	ScheduledStart *time.Time `bson:"scheduled_start,omitempty" json:"scheduledStart,omitempty"`
	Status         RoomStatus `bson:"status" json:"status"`
	CreatedAt      time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updatedAt"`
}

type RoomRepository interface {
	Create(ctx context.Context, record *RoomRecord) error
	FindByCode(ctx context.Context, code string) (*RoomRecord, error)
	UpdateStatus(ctx context.Context, code string, status RoomStatus) error
	UpdateSchedule(ctx context.Context, code string, scheduledStart *time.Time) error
	ListByCreator(ctx context.Context, userID string, limit int) ([]RoomRecord, error)
	// ListOpen returns joinable rooms, newest first.
	ListOpen(ctx context.Context, limit int) ([]RoomRecord, error)
	// Delete removes the record when createdBy matches; ErrNotCreator otherwise.
	Delete(ctx context.Context, code, createdBy string) error
}
