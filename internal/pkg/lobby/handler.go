package lobby

import (
	"net"
	"strconv"
	"strings"

	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/game"
	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/message"
	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/wire"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// Handler attaches new connections to games, either by creating one or by
// joining an existing one. Every rejection is sent as a protocol reply the
// client can recover from by re-issuing the request.
type Handler struct {
	registry *Registry
	gameCfgs []game.Cfg
}

// HandlerCfg configures a Handler.
type HandlerCfg func(*Handler) error

// WithRegistry sets the game registry.
func WithRegistry(registry *Registry) HandlerCfg {
	return func(h *Handler) error {
		h.registry = registry
		return nil
	}
}

// WithGameCfgs sets configuration passed through to every created game,
// such as the sentence provider.
func WithGameCfgs(cfgs ...game.Cfg) HandlerCfg {
	return func(h *Handler) error {
		h.gameCfgs = cfgs
		return nil
	}
}

// NewHandler creates a new Handler.
func NewHandler(cfgs ...HandlerCfg) (*Handler, error) {
	h := &Handler{}
	for _, cfg := range cfgs {
		if err := cfg(h); err != nil {
			return nil, errors.Wrap(err, "apply Handler cfg failed")
		}
	}
	if h.registry == nil {
		return nil, errors.New("registry is required")
	}
	return h, nil
}

// HandleConn runs the control exchange for one new connection. On success
// the connection belongs to a game; on any connection failure it is closed
// and forgotten. Never returns an error: connection-level failures must not
// disturb the accept loop.
func (h *Handler) HandleConn(conn net.Conn) {
	code, err := wire.ReceiveText(conn)
	if err != nil {
		closeConn(conn)
		return
	}
	switch code {
	case message.CodeHost:
		h.host(conn)
	case message.CodeJoin:
		h.join(conn)
	default:
		logger.WithFields(logrus.Fields{
			"remote": remoteAddr(conn),
			"code":   code,
		}).Warning("unknown control code")
		closeConn(conn)
	}
}

// host reads the capacity and username and creates a game with the
// connection as sole member.
func (h *Handler) host(conn net.Conn) {
	capacityText, err := wire.ReceiveText(conn)
	if err != nil {
		closeConn(conn)
		return
	}
	capacity, err := strconv.Atoi(strings.TrimSpace(capacityText))
	if err != nil || capacity < game.MinPlayers || capacity > game.MaxPlayers {
		logger.WithFields(logrus.Fields{
			"remote":   remoteAddr(conn),
			"capacity": capacityText,
		}).Warning("rejected host request: capacity out of range")
		closeConn(conn)
		return
	}
	username, err := wire.ReceiveText(conn)
	if err != nil {
		closeConn(conn)
		return
	}
	if !game.ValidUsername(username) {
		logger.WithField("remote", remoteAddr(conn)).Warning("rejected host request: invalid username")
		closeConn(conn)
		return
	}
	g, err := h.registry.Create(capacity, h.gameCfgs...)
	if err != nil {
		logger.WithError(err).Error("create game failed")
		closeConn(conn)
		return
	}
	if err := g.AddHost(conn, username); err != nil {
		logger.WithError(err).Error("add host failed")
		g.Deactivate()
		closeConn(conn)
		return
	}
	logger.WithFields(logrus.Fields{
		"remote":   remoteAddr(conn),
		"game":     g.ID(),
		"username": username,
	}).Info("game hosted")
}

// join runs the two-step join exchange: first the game id until one is
// accepted, then the username until one is accepted. The game may start (or
// die) between replies, so every acceptance is re-checked by the game
// itself and a lost race is reported as "started".
func (h *Handler) join(conn net.Conn) {
	for {
		id, err := wire.ReceiveText(conn)
		if err != nil {
			closeConn(conn)
			return
		}
		g, err := h.registry.Get(id)
		if err != nil || g.State() == game.StateFinished {
			if err := wire.SendText(conn, message.ReplyRejected); err != nil {
				closeConn(conn)
				return
			}
			continue
		}
		if g.State() != game.StateLobby {
			if err := wire.SendText(conn, message.ReplyStarted); err != nil {
				closeConn(conn)
				return
			}
			continue
		}
		if err := wire.SendText(conn, message.ReplyAccepted); err != nil {
			closeConn(conn)
			return
		}
		for {
			username, err := wire.ReceiveText(conn)
			if err != nil {
				closeConn(conn)
				return
			}
			joinErr := g.Join(conn, username)
			switch {
			case joinErr == nil:
				// The game owns the connection now; it has already sent
				// the accept reply and the capacity.
				logger.WithFields(logrus.Fields{
					"remote":   remoteAddr(conn),
					"game":     g.ID(),
					"username": username,
				}).Info("game joined")
				return
			case errors.Is(joinErr, game.ErrGameStarted):
				if err := wire.SendText(conn, message.ReplyStarted); err != nil {
					closeConn(conn)
					return
				}
			default: // taken or invalid username
				if err := wire.SendText(conn, message.ReplyRejected); err != nil {
					closeConn(conn)
					return
				}
			}
		}
	}
}

func closeConn(conn net.Conn) {
	_ = conn.Close()
	logger.WithField("remote", remoteAddr(conn)).Info("connection closed")
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "unknown"
}
