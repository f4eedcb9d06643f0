package client

import (
	"context"
	"net"
	"strconv"
	"strings"

	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/game"
	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/message"
	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/wire"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// Typist produces the submission for one challenge sentence: the elapsed
// time in seconds as decimal text, or one of the sentinels
// message.SubmissionInvalid and message.SubmissionCheated.
type Typist func(sentence string) string

// Client implements the client side of the TypeSpeed wire protocol. It
// hosts or joins one game and plays it to the end. The interactive surface
// (keystroke capture, rendering) is supplied by the caller through the
// Typist and the progress callbacks.
type Client struct {
	serverAddr string
	uuid       uuid.UUID
	username   string
	typist     Typist

	conn        net.Conn
	joinStarted bool
	gameID      string
	capacity    int
}

// Cfg configures a Client.
type Cfg func(*Client) error

// WithServerAddr sets the server address to connect to.
func WithServerAddr(addr string) Cfg {
	return func(c *Client) error {
		c.serverAddr = addr
		return nil
	}
}

// WithUsername sets the player name, at most game.MaxUsernameLen runes.
func WithUsername(username string) Cfg {
	return func(c *Client) error {
		if !game.ValidUsername(username) {
			return game.ErrInvalidUsername
		}
		c.username = username
		return nil
	}
}

// WithTypist sets the submission strategy for each round.
func WithTypist(typist Typist) Cfg {
	return func(c *Client) error {
		c.typist = typist
		return nil
	}
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfgs ...Cfg) (*Client, error) {
	client := &Client{}
	for _, cfg := range cfgs {
		if err := cfg(client); err != nil {
			return nil, errors.Wrap(err, "apply Client cfg failed")
		}
	}
	if client.username == "" {
		return nil, game.ErrInvalidUsername
	}
	if client.typist == nil {
		return nil, errors.New("typist is required")
	}
	client.uuid = uuid.New()
	return client, nil
}

// GameID returns the id of the hosted or joined game.
func (c *Client) GameID() string { return c.gameID }

// Capacity returns the player capacity of the joined game, once known.
func (c *Client) Capacity() int { return c.capacity }

// Connect dials the server and performs the handshake.
func (c *Client) Connect(ctx context.Context) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", c.serverAddr)
	if err != nil {
		return errors.Wrapf(err, "connect to %s failed", c.serverAddr)
	}
	if _, err := conn.Write([]byte(message.Handshake)); err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "send handshake failed")
	}
	c.conn = conn
	logger.WithFields(logrus.Fields{
		"uuid":   c.uuid.String(),
		"server": c.serverAddr,
	}).Info("connected")
	return nil
}

// Close closes the connection to the server.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return errors.Wrap(c.conn.Close(), "close connection failed")
}

// Host creates a new game with the given player capacity and returns the
// assigned game id.
func (c *Client) Host(capacity int) (string, error) {
	if capacity < game.MinPlayers || capacity > game.MaxPlayers {
		return "", game.ErrCapacityOutOfRange
	}
	for _, text := range []string{message.CodeHost, strconv.Itoa(capacity), c.username} {
		if err := wire.SendText(c.conn, text); err != nil {
			return "", errors.Wrap(err, "send host request failed")
		}
	}
	id, err := c.receiveControl()
	if err != nil {
		return "", errors.Wrap(err, "receive game id failed")
	}
	c.gameID = id
	c.capacity = capacity
	logger.WithFields(logrus.Fields{
		"uuid": c.uuid.String(),
		"game": id,
	}).Info("hosted game")
	return id, nil
}

// Join joins an existing game. After ErrGameNotFound or ErrGameStarted the
// server keeps its exchange open, so Join may be called again with another
// id. ErrUsernameTaken cannot be retried on this client because its
// username is fixed; close the connection and join with a fresh client.
func (c *Client) Join(gameID string) error {
	if !c.joinStarted {
		if err := wire.SendText(c.conn, message.CodeJoin); err != nil {
			return errors.Wrap(err, "send join request failed")
		}
		c.joinStarted = true
	}
	if err := c.requestJoinID(gameID); err != nil {
		return err
	}
	return c.requestUsername()
}

func (c *Client) requestJoinID(gameID string) error {
	if err := wire.SendText(c.conn, gameID); err != nil {
		return errors.Wrap(err, "send game id failed")
	}
	reply, err := wire.ReceiveText(c.conn)
	if err != nil {
		return errors.Wrap(err, "receive game id reply failed")
	}
	switch reply {
	case message.ReplyAccepted:
		c.gameID = gameID
		return nil
	case message.ReplyStarted:
		return ErrGameStarted
	default:
		return ErrGameNotFound
	}
}

func (c *Client) requestUsername() error {
	if err := wire.SendText(c.conn, c.username); err != nil {
		return errors.Wrap(err, "send username failed")
	}
	reply, err := c.receiveControl()
	if err != nil {
		return errors.Wrap(err, "receive username reply failed")
	}
	switch reply {
	case message.ReplyAccepted:
	case message.ReplyStarted:
		return ErrGameStarted
	default:
		return ErrUsernameTaken
	}
	capacityText, err := c.receiveControl()
	if err != nil {
		return errors.Wrap(err, "receive capacity failed")
	}
	capacity, err := strconv.Atoi(strings.TrimSpace(capacityText))
	if err != nil {
		return errors.Wrapf(err, "parse capacity %q failed", capacityText)
	}
	c.capacity = capacity
	logger.WithFields(logrus.Fields{
		"uuid": c.uuid.String(),
		"game": c.gameID,
	}).Info("joined game")
	return nil
}

// receiveControl reads the next non-ping frame. Lobby pings can interleave
// with a host or join exchange the moment membership is granted, so control
// replies are read through this filter.
func (c *Client) receiveControl() (string, error) {
	for {
		frame, err := wire.ReceiveText(c.conn)
		if err != nil {
			return "", err
		}
		if frame != message.Ping {
			return frame, nil
		}
	}
}

// WaitForStart consumes lobby pings and member-count updates until the
// game starts. onCount, if non-nil, observes each member-count update.
func (c *Client) WaitForStart(onCount func(members int)) error {
	for {
		frame, err := wire.ReceiveText(c.conn)
		if err != nil {
			return errors.Wrap(err, "receive lobby update failed")
		}
		switch frame {
		case message.Ping:
		case message.GameStart:
			return nil
		default:
			members, err := strconv.Atoi(strings.TrimSpace(frame))
			if err != nil {
				return errors.Wrapf(err, "parse member count %q failed", frame)
			}
			if onCount != nil {
				onCount(members)
			}
		}
	}
}

// Play runs all rounds of the started game and returns the final
// standings. onRound, if non-nil, observes each round's result.
func (c *Client) Play(onRound func(round int, sentence string, result message.RoundResult)) ([]message.Standing, error) {
	for round := 1; round <= game.Rounds; round++ {
		sentence, err := wire.ReceiveText(c.conn)
		if err != nil {
			return nil, errors.Wrapf(err, "receive round %d sentence failed", round)
		}
		if err := wire.SendText(c.conn, c.typist(sentence)); err != nil {
			return nil, errors.Wrapf(err, "send round %d submission failed", round)
		}
		payload, err := wire.Receive(c.conn)
		if err != nil {
			return nil, errors.Wrapf(err, "receive round %d result failed", round)
		}
		result, err := message.DecodeRoundResult(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "decode round %d result failed", round)
		}
		logger.WithFields(logrus.Fields{
			"uuid":   c.uuid.String(),
			"game":   c.gameID,
			"round":  round,
			"result": result,
		}).Info("round finished")
		if onRound != nil {
			onRound(round, sentence, result)
		}
	}
	payload, err := wire.Receive(c.conn)
	if err != nil {
		return nil, errors.Wrap(err, "receive standings failed")
	}
	standings, err := message.DecodeStandings(payload)
	if err != nil {
		return nil, errors.Wrap(err, "decode standings failed")
	}
	logger.WithFields(logrus.Fields{
		"uuid":      c.uuid.String(),
		"game":      c.gameID,
		"standings": standings,
	}).Info("game finished")
	return standings, nil
}
