package apps

import (
	"context"
	"fmt"

	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/game"
	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/lobby"
	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/sentence"
	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/server"
	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/validate"

	"github.com/pkg/errors"
)

// ServerAppCfg configures a ServerApp.
type ServerAppCfg interface {
	ApplyServerApp(*ServerApp) error
}

// ServerApp is the TypeSpeed server application.
type ServerApp struct {
	Host string
	Port uint16 `validate:"required"`
}

// NewServerApp creates a new ServerApp.
func NewServerApp(cfgs ...ServerAppCfg) (*ServerApp, error) {
	app := &ServerApp{}
	for _, cfg := range cfgs {
		if err := cfg.ApplyServerApp(app); err != nil {
			return nil, errors.Wrap(err, "apply ServerApp cfg failed")
		}
	}
	if err := validate.Validate().Struct(app); err != nil {
		return nil, errors.Wrap(err, "validate ServerApp failed")
	}
	return app, nil
}

// Run serves games until the context is cancelled.
func (app *ServerApp) Run(ctx context.Context, _ []string) error {
	provider, err := sentence.NewProvider()
	if err != nil {
		return errors.Wrap(err, "create sentence provider failed")
	}
	handler, err := lobby.NewHandler(
		lobby.WithRegistry(lobby.NewRegistry()),
		lobby.WithGameCfgs(game.WithSentenceProvider(provider)),
	)
	if err != nil {
		return errors.Wrap(err, "create lobby handler failed")
	}
	srv, err := server.NewServer(
		server.WithAddr(fmt.Sprintf("%s:%d", app.Host, app.Port)),
		server.WithHandler(handler),
	)
	if err != nil {
		return errors.Wrap(err, "create server failed")
	}
	return errors.Wrap(srv.ListenAndServe(ctx), "serve failed")
}
