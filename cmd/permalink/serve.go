package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fcoo/permalink/internal/config"
	"github.com/fcoo/permalink/internal/errors"
	"github.com/fcoo/permalink/internal/server"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a shared map view",
		Long: `Serve one shared permalink over HTTP.

The configuration is read from --config, a file or a directory holding
permalink.json, permalink.yaml or permalink.yml. Without one the defaults
are used: in-memory storage, listening on :8080.

Examples:
  permalink serve
  permalink serve --config deploy/permalink.yaml --addr :9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(logLevel)
			slog.SetDefault(logger)

			cfg, err := loadConfig(cmd, configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			srv, err := server.New(cfg, server.WithLogger(logger))
			if err != nil {
				return err
			}
			defer srv.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			success(cmd, "Serving %s on %s", cfg.Server.Href, cfg.Server.Addr)
			if err := srv.ListenAndServe(ctx); err != nil {
				return errors.New("E171").Wrap(err)
			}
			info(cmd, "Shut down")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", ".", "Configuration file or directory")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from configuration)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")

	return cmd
}

// loadConfig loads path as a file or directory. A directory without a
// configuration file yields the defaults.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, errors.New("E101").Wrap(err)
	}
	if !fi.IsDir() {
		return config.LoadFile(path)
	}
	if !config.Exists(path) {
		warn(cmd, "No configuration in %s, using defaults", path)
		return config.New(), nil
	}
	return config.Load(path)
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
