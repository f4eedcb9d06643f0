// Package game implements one TypeSpeed contest: a fixed set of players
// joined over the wire, five timed rounds, and a final ranking.
//
// A game moves through three states. In the lobby it accepts joins and
// pings its members every ping interval so idle connections stay alive and
// clients can tell "still waiting" apart from "starting". The moment
// membership reaches capacity it starts running: each round one sentence is
// broadcast, one goroutine per member blocks on that member's submission,
// and a barrier join collects them all before results are computed and
// broadcast. After the fifth round the final standings go out and the game
// is finished.
//
// A connection failure anywhere removes only that player; a player whose
// read fails during a round unblocks its own worker, so the barrier is
// never held hostage by a dead connection. The only abnormal end is the
// lobby emptying out before the game starts.
package game

import (
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/message"
	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/wire"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// Rounds is the number of timed rounds in one contest.
const Rounds = 5

// Capacity bounds, enforced at the lobby boundary and again here.
const (
	MinPlayers = 1
	MaxPlayers = 10
)

// MaxUsernameLen is the maximum username length in runes.
const MaxUsernameLen = 20

// DefaultPingInterval is how often lobby members are pinged.
const DefaultPingInterval = time.Second

// State is the lifecycle phase of a game.
type State int

const (
	// StateLobby accepts joins and pings members.
	StateLobby State = iota
	// StateRunning plays the rounds; no join is accepted, even if a
	// member has since disconnected.
	StateRunning
	// StateFinished is terminal: the contest completed, or the lobby
	// emptied out first.
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateLobby:
		return "lobby"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

// SentenceProvider supplies one challenge sentence per round.
type SentenceProvider interface {
	Next() string
}

type player struct {
	conn     net.Conn
	username string
}

// Game is one contest. All mutable state is guarded by mu; the round loop
// runs on its own goroutine once the lobby fills.
type Game struct {
	id           string
	capacity     int
	provider     SentenceProvider
	pingInterval time.Duration
	deregister   func(id string)

	mu          sync.Mutex
	state       State
	players     []*player // join order
	sentence    string
	submissions map[*player]float64
	aggregate   map[string]int

	pingStop chan struct{}
	stopPing sync.Once
	pingWG   sync.WaitGroup
}

// Cfg configures a Game.
type Cfg func(*Game) error

// WithSentenceProvider sets the sentence provider.
func WithSentenceProvider(provider SentenceProvider) Cfg {
	return func(g *Game) error {
		g.provider = provider
		return nil
	}
}

// WithPingInterval sets the lobby ping interval.
func WithPingInterval(interval time.Duration) Cfg {
	return func(g *Game) error {
		if interval <= 0 {
			return errors.New("ping interval must be positive")
		}
		g.pingInterval = interval
		return nil
	}
}

// WithDeregister sets the callback invoked with the game id once the game
// is finished and should be dropped from the registry.
func WithDeregister(deregister func(id string)) Cfg {
	return func(g *Game) error {
		g.deregister = deregister
		return nil
	}
}

// New creates a new Game with the given configuration and starts its lobby
// ping task. The host joins separately via AddHost.
func New(id string, capacity int, cfgs ...Cfg) (*Game, error) {
	if capacity < MinPlayers || capacity > MaxPlayers {
		return nil, ErrCapacityOutOfRange
	}
	g := &Game{
		id:           id,
		capacity:     capacity,
		pingInterval: DefaultPingInterval,
		pingStop:     make(chan struct{}),
	}
	for _, cfg := range cfgs {
		if err := cfg(g); err != nil {
			return nil, errors.Wrap(err, "apply Game cfg failed")
		}
	}
	if g.provider == nil {
		return nil, errors.New("sentence provider is required")
	}
	g.pingWG.Add(1)
	go g.pingLoop()
	return g, nil
}

// ID returns the game id.
func (g *Game) ID() string { return g.id }

// Capacity returns the fixed player capacity.
func (g *Game) Capacity() int { return g.capacity }

// State returns the current lifecycle state.
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// MemberCount returns the number of currently connected players.
func (g *Game) MemberCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.players)
}

// ValidUsername reports whether a username is acceptable: non-empty and at
// most MaxUsernameLen runes. Uniqueness is checked case-sensitively at join.
func ValidUsername(username string) bool {
	return username != "" && utf8.RuneCountInString(username) <= MaxUsernameLen
}

// AddHost attaches the hosting connection as the first member and sends it
// the game id followed by the member count.
func (g *Game) AddHost(conn net.Conn, username string) error {
	if !ValidUsername(username) {
		return ErrInvalidUsername
	}
	g.mu.Lock()
	if g.state != StateLobby {
		g.mu.Unlock()
		return ErrGameStarted
	}
	p := &player{conn: conn, username: username}
	g.players = append(g.players, p)
	g.mu.Unlock()
	logger.WithFields(logrus.Fields{
		"game":     g.id,
		"username": username,
		"capacity": g.capacity,
	}).Info("game activated")
	g.sendTo(p, []byte(g.id))
	g.broadcastCount()
	g.checkStart()
	return nil
}

// Join attaches a connection as a new member. On success the joiner is sent
// the accept reply and the game's capacity, and the new member count is
// broadcast to everyone. Fails with ErrGameStarted once the game has left
// the lobby and with ErrUsernameTaken on a case-sensitive username clash.
func (g *Game) Join(conn net.Conn, username string) error {
	if !ValidUsername(username) {
		return ErrInvalidUsername
	}
	g.mu.Lock()
	if g.state != StateLobby || len(g.players) >= g.capacity {
		g.mu.Unlock()
		return ErrGameStarted
	}
	for _, p := range g.players {
		if p.username == username {
			g.mu.Unlock()
			return ErrUsernameTaken
		}
	}
	p := &player{conn: conn, username: username}
	g.players = append(g.players, p)
	g.mu.Unlock()
	logger.WithFields(logrus.Fields{
		"game":     g.id,
		"username": username,
	}).Info("player added")
	g.sendTo(p, []byte(message.ReplyAccepted))
	g.sendTo(p, []byte(strconv.Itoa(g.capacity)))
	g.broadcastCount()
	g.checkStart()
	return nil
}

// checkStart transitions to StateRunning and launches the round loop once
// membership reaches capacity. The transition happens at most once.
func (g *Game) checkStart() {
	g.mu.Lock()
	if g.state != StateLobby || len(g.players) != g.capacity {
		g.mu.Unlock()
		return
	}
	g.state = StateRunning
	g.mu.Unlock()
	g.stopPing.Do(func() { close(g.pingStop) })
	go g.run()
}

// run is the round loop: the single coordinating goroutine for this game.
func (g *Game) run() {
	// Let any in-flight lobby ping finish so no ping frame can trail the
	// start signal.
	g.pingWG.Wait()
	logger.WithField("game", g.id).Info("game started")
	g.broadcast([]byte(message.GameStart))
	g.mu.Lock()
	g.aggregate = make(map[string]int, len(g.players))
	for _, p := range g.players {
		g.aggregate[p.username] = 0
	}
	g.mu.Unlock()
	for round := 1; round <= Rounds; round++ {
		g.playRound(round)
	}
	g.finish()
}

// playRound broadcasts one sentence, collects every member's submission
// behind a barrier, then scores and broadcasts the round result.
func (g *Game) playRound(round int) {
	sentence := g.provider.Next()
	g.mu.Lock()
	g.sentence = sentence
	g.submissions = make(map[*player]float64, len(g.players))
	g.mu.Unlock()
	g.broadcast([]byte(sentence))

	var wg sync.WaitGroup
	for _, p := range g.members() {
		wg.Add(1)
		go func(p *player) {
			defer wg.Done()
			g.receiveSubmission(p)
		}(p)
	}
	wg.Wait()

	result := g.scoreRound(sentence)
	logger.WithFields(logrus.Fields{
		"game":   g.id,
		"round":  round,
		"result": result,
	}).Info("round finished")
	payload, err := message.EncodeRoundResult(result)
	if err != nil {
		logger.WithError(err).Error("encode round result failed")
		return
	}
	g.broadcast(payload)
}

// receiveSubmission performs the single blocking read of one member's
// submitted elapsed time. A failed read means the member disconnected; they
// are removed and the barrier is released for them. A submission that does
// not parse as a number counts as a mismatched transcript, not a disconnect.
func (g *Game) receiveSubmission(p *player) {
	raw, err := wire.ReceiveText(p.conn)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"game":     g.id,
			"username": p.username,
		}).Warning("player disconnected mid-round")
		g.removePlayer(p)
		return
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		seconds = 0
	}
	g.mu.Lock()
	g.submissions[p] = seconds
	g.mu.Unlock()
}

// scoreRound builds the round result for the members still connected and
// folds their WPM into the aggregate.
func (g *Game) scoreRound(sentence string) message.RoundResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	result := make(message.RoundResult, len(g.players))
	for _, p := range g.players {
		seconds, ok := g.submissions[p]
		if !ok {
			continue
		}
		wpm := Score(sentence, seconds)
		result[p.username] = message.PlayerRound{Seconds: seconds, WPM: wpm}
		g.aggregate[p.username] += wpm
	}
	return result
}

// finish broadcasts the final standings and deactivates the game.
func (g *Game) finish() {
	standings := g.Standings()
	payload, err := message.EncodeStandings(standings)
	if err != nil {
		logger.WithError(err).Error("encode standings failed")
	} else {
		g.broadcast(payload)
	}
	logger.WithFields(logrus.Fields{
		"game":      g.id,
		"standings": standings,
	}).Info("game finished")
	g.deactivate()
}

// Standings returns the ranking of current members: descending aggregate
// WPM, ties broken by join order.
func (g *Game) Standings() []message.Standing {
	g.mu.Lock()
	defer g.mu.Unlock()
	return RankStandings(g.playersLocked(), g.aggregate)
}

func (g *Game) playersLocked() []string {
	usernames := make([]string, len(g.players))
	for i, p := range g.players {
		usernames[i] = p.username
	}
	return usernames
}

// removePlayer drops a member, discarding their score history. In the
// lobby the remaining members learn the new count; an emptied lobby
// deactivates the game.
func (g *Game) removePlayer(p *player) {
	g.mu.Lock()
	found := false
	for i, member := range g.players {
		if member == p {
			g.players = append(g.players[:i], g.players[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		g.mu.Unlock()
		return
	}
	delete(g.aggregate, p.username)
	state := g.state
	remaining := len(g.players)
	g.mu.Unlock()
	_ = p.conn.Close()
	logger.WithFields(logrus.Fields{
		"game":     g.id,
		"username": p.username,
	}).Warning("player removed")
	if state != StateLobby {
		return
	}
	if remaining == 0 {
		logger.WithField("game", g.id).Warning("no players left")
		g.deactivate()
		return
	}
	g.broadcastCount()
	g.checkStart()
}

// Deactivate force-finishes a game whose host never made it in, so its
// ping task does not outlive the failed exchange.
func (g *Game) Deactivate() {
	g.deactivate()
}

// deactivate marks the game finished, stops the lobby pings and
// deregisters the game. Safe to call more than once.
func (g *Game) deactivate() {
	g.mu.Lock()
	done := g.state == StateFinished
	g.state = StateFinished
	g.mu.Unlock()
	g.stopPing.Do(func() { close(g.pingStop) })
	if done {
		return
	}
	logger.WithField("game", g.id).Info("game deactivated")
	if g.deregister != nil {
		g.deregister(g.id)
	}
}

// pingLoop keeps lobby members alive until the game starts or dies.
func (g *Game) pingLoop() {
	defer g.pingWG.Done()
	ticker := time.NewTicker(g.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-g.pingStop:
			return
		case <-ticker.C:
			g.broadcast([]byte(message.Ping))
		}
	}
}

// members snapshots the current player list.
func (g *Game) members() []*player {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*player(nil), g.players...)
}

// broadcast sends one payload to every current member. A failed send
// removes that member and nobody else.
func (g *Game) broadcast(payload []byte) {
	for _, p := range g.members() {
		g.sendTo(p, payload)
	}
}

func (g *Game) broadcastCount() {
	g.broadcast([]byte(strconv.Itoa(g.MemberCount())))
}

func (g *Game) sendTo(p *player, payload []byte) {
	if err := wire.Send(p.conn, payload); err != nil {
		logger.WithFields(logrus.Fields{
			"game":     g.id,
			"username": p.username,
		}).Warning("send failed, removing player")
		g.removePlayer(p)
	}
}
