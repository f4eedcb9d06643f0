package apps

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

type serverAppCfgFunc func(*ServerApp) error

func (f serverAppCfgFunc) ApplyServerApp(app *ServerApp) error { return f(app) }

type clientAppCfgFunc func(*ClientApp) error

func (f clientAppCfgFunc) ApplyClientApp(app *ClientApp) error { return f(app) }

func TestNewServerAppRequiresPort(t *testing.T) {
	_, err := NewServerApp()
	require.Error(t, err)

	app, err := NewServerApp(serverAppCfgFunc(func(app *ServerApp) error {
		app.Port = 6969
		return nil
	}))
	require.NoError(t, err)
	require.Equal(t, uint16(6969), app.Port)
}

func TestNewClientAppRequiresContest(t *testing.T) {
	base := clientAppCfgFunc(func(app *ClientApp) error {
		app.Port = 6969
		app.Username = "alice"
		return nil
	})

	_, err := NewClientApp(base)
	require.Error(t, err, "neither capacity nor game id set")

	app, err := NewClientApp(base, clientAppCfgFunc(func(app *ClientApp) error {
		app.Capacity = 2
		return nil
	}))
	require.NoError(t, err)
	require.Equal(t, 2, app.Capacity)

	app, err = NewClientApp(base, clientAppCfgFunc(func(app *ClientApp) error {
		app.GameID = "1234"
		return nil
	}))
	require.NoError(t, err)
	require.Equal(t, "1234", app.GameID)
}

func TestSimulatedTypistMatchesConfiguredSpeed(t *testing.T) {
	app, err := NewClientApp(clientAppCfgFunc(func(app *ClientApp) error {
		app.Port = 6969
		app.Username = "alice"
		app.Capacity = 2
		app.TypingWPM = 60
		return nil
	}))
	require.NoError(t, err)

	typist := app.simulatedTypist()
	submission := typist("five words of five chars!") // 25 chars = 5 words
	require.NotEmpty(t, submission)
	// 5 words at 60 WPM is 5s, jittered by at most 10%.
	seconds, err := strconv.ParseFloat(submission, 64)
	require.NoError(t, err)
	require.InDelta(t, 5.0, seconds, 0.51)
}
