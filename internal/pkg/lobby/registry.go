// Package lobby routes freshly accepted connections into games: it owns
// the table of active games and runs the host/join control exchanges.
package lobby

import (
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/game"

	"github.com/pkg/errors"
)

// Registry is the concurrency-safe table of active games keyed by their
// 4-digit id. Games deregister themselves once finished.
type Registry struct {
	mu    sync.RWMutex
	games map[string]*game.Game
	rand  *rand.Rand
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		games: make(map[string]*game.Game),
		rand:  rand.New(rand.NewSource(time.Now().Unix())),
	}
}

// Create allocates a fresh unique id, constructs a game with the given
// capacity and registers it. The game deregisters itself on finish.
func (r *Registry) Create(capacity int, cfgs ...game.Cfg) (*game.Game, error) {
	if capacity < game.MinPlayers || capacity > game.MaxPlayers {
		return nil, game.ErrCapacityOutOfRange
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.newIDLocked()
	cfgs = append(cfgs, game.WithDeregister(r.Remove))
	g, err := game.New(id, capacity, cfgs...)
	if err != nil {
		return nil, errors.Wrap(err, "new game failed")
	}
	r.games[id] = g
	return g, nil
}

// Get returns the game with the given id.
func (r *Registry) Get(id string) (*game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if g, ok := r.games[id]; ok {
		return g, nil
	}
	return nil, ErrGameNotFound
}

// Remove drops a game from the table. Unknown ids are ignored so a game
// may deregister more than once.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, id)
}

// Len returns the number of registered games.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// newIDLocked allocates a random 4-digit id unused by any registered game.
// Callers must hold mu.
func (r *Registry) newIDLocked() string {
	for {
		id := strconv.Itoa(1000 + r.rand.Intn(9000))
		if _, ok := r.games[id]; !ok {
			return id
		}
	}
}
