package domain

import "errors"

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomAlreadyExists  = errors.New("room already exists")
	ErrRoomFinished       = errors.New("room is finished")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrNotCreator         = errors.New("not the room creator")
	ErrFriendshipExists   = errors.New("friendship already exists")
	ErrFriendshipNotFound = errors.New("friendship not found")
)
