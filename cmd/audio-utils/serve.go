package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"audioutils/pkg/addon"
	"audioutils/pkg/config"
	"audioutils/pkg/native"
	"audioutils/pkg/native/sndfile"
)

// ServeCmd runs the helper side of the addon protocol.
type ServeCmd struct {
	Backend string `long:"decoder" description:"decoder to serve (default: libsndfile when compiled in, else backend.name)"`
}

// serveBackend picks the decoder the helper exposes. It never returns the addon itself.
func (c *ServeCmd) serveBackend(configured string) (string, error) {
	name := c.Backend
	if name == "" {
		name = configured
		if slices.Contains(native.Names(), sndfile.Name) {
			name = sndfile.Name
		}
	}
	if name == addon.Name {
		return "", errors.New("serve cannot use the addon backend")
	}
	return name, nil
}

// stderrOnly keeps the helper away from the log files of the process that spawned it.
func stderrOnly(cfg *config.Config) {
	cfg.Log.Server.Path = ""
	cfg.Log.Probe.Path = ""
}

// Execute implements flags.Commander.
func (c *ServeCmd) Execute(_ []string) error {
	e, err := setup(stderrOnly)
	if err != nil {
		return err
	}
	defer e.Close()

	name, err := c.serveBackend(e.cfg.Backend.Name)
	if err != nil {
		return err
	}

	bcfg := e.cfg.Backend
	bcfg.Name = name
	probe, err := native.Open(&bcfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Debug("serving probe requests", "backend", probe.Backend(), "pid", os.Getpid())
	if err := addon.Serve(ctx, os.Stdin, os.Stdout, probe); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
