// internal/game/errors.go
package game

import "errors"

var (
	// ErrRoomNotFound means the room code is unknown or the room was evicted.
	// Surfaced to the joining client; never fatal.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomCapacity means the registry is at its room ceiling.
	ErrRoomCapacity = errors.New("room capacity exceeded")

	// ErrNoEligiblePlayers means a round start was attempted with zero
	// players. The round start is a no-op; callers should not retry.
	ErrNoEligiblePlayers = errors.New("no eligible players")
)
