// Package cfg implements configuration objects that can be applied to
// multiple app types.
//
// In order to add support for a new type, a configuration need only
// implement an ApplyX method for it.
package cfg

import (
	"github.com/Oldmacintosh/TypeSpeed/internal"
	"github.com/Oldmacintosh/TypeSpeed/internal/app/apps"
)

// AddrCfg is configuration for the TypeSpeed server address.
type AddrCfg struct {
	host string
	port uint16
}

// NewAddrCfg creates a new AddrCfg from the given host and port.
func NewAddrCfg(host string, port uint16) *AddrCfg {
	return &AddrCfg{
		host: host,
		port: port,
	}
}

// AddrFromSettings creates a new AddrCfg from parsed settings.
func AddrFromSettings(settings internal.Settings) *AddrCfg {
	return &AddrCfg{
		host: settings.Host,
		port: settings.Port,
	}
}

// ApplyServerApp applies the AddrCfg to a ServerApp.
func (cfg AddrCfg) ApplyServerApp(app *apps.ServerApp) error {
	app.Host = cfg.host
	app.Port = cfg.port
	return nil
}

// ApplyClientApp applies the AddrCfg to a ClientApp.
func (cfg AddrCfg) ApplyClientApp(app *apps.ClientApp) error {
	app.Host = cfg.host
	app.Port = cfg.port
	return nil
}

// ContestCfg is client-side configuration for the contest to play.
type ContestCfg struct {
	username string
	capacity int
	gameID   string
}

// NewContestCfg creates a new ContestCfg. An empty gameID selects host
// mode with the given capacity.
func NewContestCfg(username, gameID string, capacity int) *ContestCfg {
	return &ContestCfg{
		username: username,
		capacity: capacity,
		gameID:   gameID,
	}
}

// ApplyClientApp applies the ContestCfg to a ClientApp.
func (cfg ContestCfg) ApplyClientApp(app *apps.ClientApp) error {
	app.Username = cfg.username
	app.Capacity = cfg.capacity
	app.GameID = cfg.gameID
	return nil
}

// WPMCfg is the simulated typing speed for the demo client.
type WPMCfg struct {
	wpm int
}

// NewWPMCfg creates a new WPMCfg.
func NewWPMCfg(wpm int) *WPMCfg {
	return &WPMCfg{wpm: wpm}
}

// ApplyClientApp applies the WPMCfg to a ClientApp.
func (cfg WPMCfg) ApplyClientApp(app *apps.ClientApp) error {
	app.TypingWPM = cfg.wpm
	return nil
}
