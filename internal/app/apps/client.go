package apps

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/client"
	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/log"
	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/message"
	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/validate"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// ClientAppCfg configures a ClientApp.
type ClientAppCfg interface {
	ApplyClientApp(*ClientApp) error
}

// ClientApp is the demo TypeSpeed client application: it hosts or joins one
// game and plays it with a simulated typist.
type ClientApp struct {
	Host     string
	Port     uint16 `validate:"required"`
	Username string `validate:"required,max=20"`
	// Capacity selects host mode when GameID is empty.
	Capacity int    `validate:"min=0,max=10"`
	GameID   string
	// TypingWPM is the simulated typing speed.
	TypingWPM int `validate:"required,min=1"`
}

// NewClientApp creates a new ClientApp.
func NewClientApp(cfgs ...ClientAppCfg) (*ClientApp, error) {
	app := &ClientApp{
		TypingWPM: 40,
	}
	for _, cfg := range cfgs {
		if err := cfg.ApplyClientApp(app); err != nil {
			return nil, errors.Wrap(err, "apply ClientApp cfg failed")
		}
	}
	if err := validate.Validate().Struct(app); err != nil {
		return nil, errors.Wrap(err, "validate ClientApp failed")
	}
	if app.GameID == "" && app.Capacity == 0 {
		return nil, errors.New("either a game id to join or a capacity to host is required")
	}
	return app, nil
}

// simulatedTypist submits the time a typist at the configured WPM would
// take for the sentence, with a little jitter.
func (app *ClientApp) simulatedTypist() client.Typist {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return func(sentence string) string {
		words := float64(len(sentence)) / 5
		seconds := words / float64(app.TypingWPM) * 60
		seconds *= 0.9 + 0.2*r.Float64()
		return strconv.FormatFloat(seconds, 'f', 2, 64)
	}
}

// Run plays one full game against the configured server.
func (app *ClientApp) Run(ctx context.Context, _ []string) error {
	c, err := client.NewClient(
		client.WithServerAddr(fmt.Sprintf("%s:%d", app.Host, app.Port)),
		client.WithUsername(app.Username),
		client.WithTypist(app.simulatedTypist()),
	)
	if err != nil {
		return errors.Wrap(err, "create client failed")
	}
	if err := c.Connect(ctx); err != nil {
		return errors.Wrap(err, "connect failed")
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.WithError(err).Warning("close client failed")
		}
	}()

	if app.GameID == "" {
		gameID, err := c.Host(app.Capacity)
		if err != nil {
			return errors.Wrap(err, "host game failed")
		}
		logger.WithField("game", gameID).Info("share this game id with the other players")
	} else {
		if err := c.Join(app.GameID); err != nil {
			return errors.Wrapf(err, "join game %s failed", app.GameID)
		}
	}

	err = c.WaitForStart(func(members int) {
		logger.WithField("members", members).Info("waiting for players")
	})
	if err != nil {
		return errors.Wrap(err, "wait for start failed")
	}

	standings, err := c.Play(func(round int, _ string, result message.RoundResult) {
		logger.WithField("round", round).
			WithFields(log.RoundResultToFields(result)).
			Info("round result")
	})
	if err != nil {
		return errors.Wrap(err, "play failed")
	}
	logger.WithFields(log.StandingsToFields(standings)).Info("final standings")
	return nil
}
