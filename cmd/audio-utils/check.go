package main

import (
	"context"
	"fmt"
	"io"

	"audioutils/pkg/addon"
	"audioutils/pkg/db"
	"audioutils/pkg/native"
	"audioutils/pkg/native/ffprobe"
	"audioutils/pkg/preflight"
)

// CheckCmd verifies the environment for the configured backend.
type CheckCmd struct{}

// Execute implements flags.Commander.
func (c *CheckCmd) Execute(_ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	cfg := e.cfg
	checks := []preflight.Check{
		{
			Name: "backend " + cfg.Backend.Name,
			Run: func(ctx context.Context) error {
				p, err := native.Open(&cfg.Backend)
				if err != nil {
					return err
				}
				if closer, ok := p.(io.Closer); ok {
					return closer.Close()
				}
				return nil
			},
			Critical: true,
		},
		{
			Name:     "ffprobe on PATH",
			Run:      preflight.OnPath(cfg.Backend.FFProbe.Path),
			Critical: cfg.Backend.Name == ffprobe.Name,
		},
		{
			Name: "prebuilt addon",
			Run: func(ctx context.Context) error {
				_, err := addon.Locate(cfg.Backend.Addon.Root, cfg.Backend.Addon.Name)
				return err
			},
			Critical: cfg.Backend.Name == addon.Name,
		},
	}
	if cfg.Cache.Enabled {
		checks = append(checks, preflight.Check{
			Name: "duration cache",
			Run: func(ctx context.Context) error {
				d, err := db.Init(cfg.Cache.Path)
				if err != nil {
					return err
				}
				return d.Close()
			},
			Critical: true,
		})
	}

	if err := preflight.Verify(context.Background(), checks...); err != nil {
		return fmt.Errorf("checks failed: %w", err)
	}
	fmt.Fprintln(stdout, "ok")
	return nil
}
