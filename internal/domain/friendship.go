package domain

import (
	"context"
	"time"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
)

type Friendship struct {
	UserID    string           `bson:"user_id" json:"userId"`
	FriendID  string           `bson:"friend_id" json:"friendId"`
	Status    FriendshipStatus `bson:"status" json:"status"`
	CreatedAt time.Time        `bson:"created_at" json:"createdAt"`
}

// FriendView is a friend row joined with their profile.
type FriendView struct {
	Profile `bson:",inline"`
	Status  FriendshipStatus `bson:"status" json:"status"`
}

type FriendshipRepository interface {
	// Request creates a pending friendship; ErrFriendshipExists when one
	// already exists in either direction.
	Request(ctx context.Context, userID, friendID string) error
	Accept(ctx context.Context, userID, friendID string) error
	// Remove deletes the friendship in either direction.
	Remove(ctx context.Context, userID, friendID string) error
	ListFriends(ctx context.Context, userID string) ([]FriendView, error)
	ListPending(ctx context.Context, userID string) ([]Profile, error)
}
