package pkg

import "errors"

var (
	// ErrRoomFull is returned by Registry.Join when the target room is at capacity.
	ErrRoomFull = errors.New("room is full")
	// ErrRoomNotFound is returned when a delivery names a room that does not exist.
	ErrRoomNotFound = errors.New("room not found")
	// ErrPlayerNotFound is returned when the target player is not a member of the room.
	ErrPlayerNotFound = errors.New("player not found in room")
	// ErrConnectionClosed is returned when the target connection is gone or its
	// send buffer is exhausted. Delivery is attempted at most once.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrBindingConflict is returned when a lobby registration claims a player
	// identity already bound by a different live connection.
	ErrBindingConflict = errors.New("player identity already bound to another connection")

	// ErrPokemonNotFound is returned by the catalog client for unknown identifiers.
	ErrPokemonNotFound = errors.New("pokemon not found")
	// ErrCatalogUnavailable is returned when the catalog cannot be reached or errors out.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)
