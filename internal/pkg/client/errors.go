package client

import "github.com/pkg/errors"

// ErrGameNotFound indicates the server knows no active game with that id.
var ErrGameNotFound = errors.New("game not found")

// ErrGameStarted indicates the game started before the join completed.
var ErrGameStarted = errors.New("game already started")

// ErrUsernameTaken indicates the username is already in use in that game.
var ErrUsernameTaken = errors.New("username taken")
