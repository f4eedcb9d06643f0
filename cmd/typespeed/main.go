// Package main is the TypeSpeed application entrypoint.
package main

import (
	"fmt"

	"github.com/Oldmacintosh/TypeSpeed/internal"
	"github.com/Oldmacintosh/TypeSpeed/internal/app/apps"
	"github.com/Oldmacintosh/TypeSpeed/internal/app/cfg"
	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/log"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CLI command definitions.
var (
	logger logrus.FieldLogger = logrus.StandardLogger()

	flagHost     string
	flagPort     uint16
	flagLogLevel string

	flagUsername string
	flagCapacity int
	flagGameID   string
	flagWPM      int

	rootCmd = &cobra.Command{
		Use:   "typespeed",
		Short: "A real-time multiplayer typing contest.",
		RunE: func(*cobra.Command, []string) error {
			return nil
		},
	}

	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "Starts a TypeSpeed server.",
		RunE:  runCmd,
	}

	clientCmd = &cobra.Command{
		Use:   "client",
		Short: "Starts a demo TypeSpeed client that plays one game.",
		RunE:  runCmd,
	}
)

// settingsFromEnv loads the environment settings and applies flag
// overrides.
func settingsFromEnv(cmd *cobra.Command) (internal.Settings, error) {
	settings, err := internal.LoadSettings()
	if err != nil {
		return internal.Settings{}, errors.Wrap(err, "load settings failed")
	}
	if cmd.Flags().Changed("host") {
		settings.Host = flagHost
	}
	if cmd.Flags().Changed("port") {
		settings.Port = flagPort
	}
	if cmd.Flags().Changed("log-level") {
		settings.LogLevel = flagLogLevel
	}
	return settings, nil
}

func newApp(cmd *cobra.Command, settings internal.Settings) (apps.App, error) {
	switch cmd.Name() {
	case "server":
		app, err := apps.NewServerApp(cfg.AddrFromSettings(settings))
		if err != nil {
			return nil, errors.Wrap(err, "new server app failed")
		}
		return app, nil
	case "client":
		app, err := apps.NewClientApp(
			cfg.AddrFromSettings(settings),
			cfg.NewContestCfg(flagUsername, flagGameID, flagCapacity),
			cfg.NewWPMCfg(flagWPM),
		)
		if err != nil {
			return nil, errors.Wrap(err, "new client app failed")
		}
		return app, nil
	default:
		return nil, fmt.Errorf("unknown command: %s", cmd.Name())
	}
}

func runCmd(cmd *cobra.Command, args []string) error {
	settings, err := settingsFromEnv(cmd)
	if err != nil {
		return err
	}
	log.SetLogger(settings.LogLevel)
	app, err := newApp(cmd, settings)
	if err != nil {
		return errors.Wrapf(err, "new %s app failed", cmd.Name())
	}
	return errors.Wrap(app.Run(cmd.Context(), args), "run app failed")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "", "host to listen on or connect to")
	rootCmd.PersistentFlags().Uint16Var(&flagPort, "port", 6969, "port to listen on or connect to")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (trace|debug|info|warn|error)")

	clientCmd.Flags().StringVar(&flagUsername, "username", "", "player name, at most 20 characters")
	clientCmd.Flags().IntVar(&flagCapacity, "capacity", 0, "host a new game for this many players (1-10)")
	clientCmd.Flags().StringVar(&flagGameID, "game", "", "join the game with this 4-digit id")
	clientCmd.Flags().IntVar(&flagWPM, "wpm", 40, "simulated typing speed in words per minute")

	rootCmd.AddCommand(
		serverCmd,
		clientCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal(errors.Wrap(err, "execute root command failed"))
	}
}
