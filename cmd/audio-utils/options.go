package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"audioutils/pkg/cache"
	"audioutils/pkg/config"
	"audioutils/pkg/db"
	"audioutils/pkg/duration"
	"audioutils/pkg/logging"
	"audioutils/pkg/native"
	_ "audioutils/pkg/native/backends"
)

// Options is the root command. The struct tags are interpreted by
// github.com/jessevdk/go-flags.
type Options struct {
	Config  string `short:"f" long:"config" description:"config YAML path" default:"configs/audio-utils.yaml"`
	Backend string `short:"b" long:"backend" description:"override backend.name"`
	Trace   bool   `long:"trace" description:"log every decoder attempt and addon round trip at debug level"`

	Get        *GetCmd        `command:"get" description:"Print the duration of audio files in seconds"`
	Serve      *ServeCmd      `command:"serve" description:"Answer probe requests on stdin/stdout (addon helper mode)"`
	Check      *CheckCmd      `command:"check" description:"Verify the configured backend and cache"`
	Backends   *BackendsCmd   `command:"backends" description:"List compiled-in backends"`
	Version    *VersionCmd    `command:"version" description:"Print the version"`
	InitConfig *InitConfigCmd `command:"init-config" description:"Write a default config file"`
}

// Init instantiates the sub-command referenced by the first argument so that
// flags.Parse can populate its fields.
func (o *Options) Init(firstArg string) {
	switch firstArg {
	case "get":
		o.Get = &GetCmd{}
	case "serve":
		o.Serve = &ServeCmd{}
	case "check":
		o.Check = &CheckCmd{}
	case "backends":
		o.Backends = &BackendsCmd{}
	case "version":
		o.Version = &VersionCmd{}
	case "init-config":
		o.InitConfig = &InitConfigCmd{}
	}
}

// globalOpts gives sub-commands access to the root flags.
var globalOpts *Options

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout

type env struct {
	cfg     *config.Config
	cleanup []func()
}

func (e *env) Close() {
	for i := len(e.cleanup) - 1; i >= 0; i-- {
		e.cleanup[i]()
	}
}

// setup loads config, applies the root flags and mutators, and initializes logging.
func setup(mutators ...func(*config.Config)) (*env, error) {
	cfg, err := config.Load(globalOpts.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if globalOpts.Backend != "" {
		cfg.Backend.Name = globalOpts.Backend
	}
	for _, m := range mutators {
		m(cfg)
	}

	logging.EnableTrace = globalOpts.Trace

	closeLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return &env{cfg: cfg, cleanup: []func(){closeLogs}}, nil
}

// openService builds the duration service for backend, with the cache when enabled.
func (e *env) openService(backend string) (*duration.Service, error) {
	bcfg := e.cfg.Backend
	bcfg.Name = backend

	probe, err := native.Open(&bcfg)
	if err != nil {
		return nil, err
	}

	var opts []duration.Option
	if e.cfg.Cache.Enabled {
		d, err := db.Init(e.cfg.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
		e.cleanup = append(e.cleanup, func() { d.Close() })

		c := cache.NewSQLiteCache(d)
		if err := c.Prune(context.Background(), e.cfg.Cache.TTL.Std()); err != nil {
			slog.Warn("cache prune failed", "error", err)
		}
		opts = append(opts, duration.WithCache(c))
	}

	svc := duration.New(probe, opts...)
	e.cleanup = append(e.cleanup, func() {
		if err := svc.Close(); err != nil {
			slog.Warn("failed to close backend", "backend", svc.Backend(), "error", err)
		}
	})
	slog.Debug("backend opened", "backend", backend, "decoder", svc.Backend())
	return svc, nil
}
