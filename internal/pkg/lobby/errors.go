package lobby

import "github.com/pkg/errors"

// ErrGameNotFound indicates no active game with the requested id.
var ErrGameNotFound = errors.New("game not found")
