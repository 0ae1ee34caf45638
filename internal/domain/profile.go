package domain

import "context"

// Profile is the linked-account view the game engine needs. Account
// management (registration, passwords, 2FA) belongs to another service;
// we only read profiles and bump their counters.
type Profile struct {
	ID          string `bson:"_id" json:"id"`
	Username    string `bson:"username" json:"username"`
	Avatar      string `bson:"avatar" json:"avatar"`
	GamesPlayed int    `bson:"games_played" json:"gamesPlayed"`
	GamesWon    int    `bson:"games_won" json:"gamesWon"`
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	// AddGamePlayed increments games_played by one.
	AddGamePlayed(ctx context.Context, id string) error
	// AddGameWon increments both games_won and games_played by one.
	AddGameWon(ctx context.Context, id string) error
}
