// Command build compiles the audio-utils helper for the host platform, stages
// it under prebuilds/<GOOS>-<GOARCH>/, and can trigger and watch the remote
// release workflow.
//
// Usage:
//
//	build [-f config] [native] [clean] [ci]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"strings"
	"syscall"

	"audioutils/pkg/build"
	"audioutils/pkg/config"
	"audioutils/pkg/logging"
	"audioutils/pkg/preflight"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Options are interpreted by github.com/jessevdk/go-flags.
type Options struct {
	Config     string `short:"f" long:"config" description:"config YAML path" default:"configs/audio-utils.yaml"`
	SkipChecks bool   `long:"skip-checks" description:"do not verify tools before running"`
	Args       struct {
		Modes []string `positional-arg-name:"mode" description:"native, clean, ci"`
	} `positional-args:"yes"`
}

func main() {
	_ = godotenv.Load()

	opts := &Options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.Parse(); err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, fe.Message)
			return
		}
		fmt.Fprintf(os.Stderr, "build: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, build.NewExecRunner()); err != nil {
		fmt.Fprintf(os.Stderr, "build: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *Options, runner build.Runner) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// console only; build output already streams to the terminal
	closeLogs, err := logging.Init(&config.LogConfig{
		Server: config.LogSettings{Level: cfg.Log.Server.Level},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer closeLogs()

	if !opts.SkipChecks {
		if err := preflight.Verify(ctx, checksFor(cfg, opts.Args.Modes, runtime.GOOS)...); err != nil {
			return err
		}
	}

	return build.New(cfg, runner).Run(ctx, opts.Args.Modes)
}

func checksFor(cfg *config.Config, modes []string, goos string) []preflight.Check {
	modes = slices.Clone(modes)
	for i, m := range modes {
		modes[i] = strings.ToLower(strings.TrimSpace(m))
	}

	var checks []preflight.Check
	if slices.Contains(modes, build.ModeNative) {
		checks = append(checks, preflight.Check{
			Name:     "go toolchain",
			Run:      preflight.OnPath("go"),
			Critical: true,
		})
		if goos == "windows" && cfg.Build.ToolchainEnv != "" {
			checks = append(checks, preflight.Check{
				Name:     cfg.Build.ToolchainEnv,
				Run:      preflight.EnvSet(cfg.Build.ToolchainEnv),
				Critical: true,
			})
		}
	}
	if slices.Contains(modes, build.ModeCI) {
		checks = append(checks, preflight.Check{
			Name:     "gh cli",
			Run:      preflight.OnPath("gh"),
			Critical: true,
		})
	}
	return checks
}
