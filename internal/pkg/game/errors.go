package game

import "github.com/pkg/errors"

// ErrGameStarted indicates the game has left the lobby and accepts no joins.
var ErrGameStarted = errors.New("game already started")

// ErrUsernameTaken indicates the username is already in use in this game.
var ErrUsernameTaken = errors.New("username taken")

// ErrInvalidUsername indicates an empty or over-long username.
var ErrInvalidUsername = errors.New("invalid username")

// ErrCapacityOutOfRange indicates a player capacity outside the 1-10 bound.
var ErrCapacityOutOfRange = errors.New("capacity out of range")
