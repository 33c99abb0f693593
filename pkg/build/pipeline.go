// Package build compiles the audio-utils helper for the host platform, stages
// it where the addon backend looks for it, and drives the remote release
// workflow.
package build

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"audioutils/pkg/addon"
	"audioutils/pkg/config"
)

// Modes accepted by Pipeline.Run.
const (
	ModeNative = "native"
	ModeClean  = "clean"
	ModeCI     = "ci"
)

var (
	// ErrArtifactNotFound is returned when the compiler left no artifact behind.
	ErrArtifactNotFound = errors.New("compiled artifact not found")
	// ErrRunNotFound is returned when the triggered workflow run cannot be resolved.
	ErrRunNotFound = errors.New("failed to resolve workflow run id")
	// ErrMissingToolchain is returned when the platform toolchain variable is unset.
	ErrMissingToolchain = errors.New("missing toolchain environment")
)

// Pipeline runs the build steps.
type Pipeline struct {
	build  config.BuildConfig
	ci     config.CIConfig
	runner Runner
	stage  *stager

	goos   string
	goarch string
	getenv func(string) string
}

// New returns a pipeline for the host platform.
func New(cfg *config.Config, r Runner) *Pipeline {
	return &Pipeline{
		build:  cfg.Build,
		ci:     cfg.CI,
		runner: r,
		stage:  newStager(),
		goos:   runtime.GOOS,
		goarch: runtime.GOARCH,
		getenv: os.Getenv,
	}
}

// Run executes the steps named by modes. Unknown words are ignored, so
// "native clean ci" and "ci native" are both valid.
func (p *Pipeline) Run(ctx context.Context, modes []string) error {
	want := make(map[string]bool, len(modes))
	for _, m := range modes {
		want[strings.ToLower(strings.TrimSpace(m))] = true
	}

	if err := p.stage.ensureDir(ctx, p.build.TargetDir); err != nil {
		return fmt.Errorf("failed to create %s: %w", p.build.TargetDir, err)
	}

	if want[ModeNative] {
		if err := p.Native(ctx, want[ModeClean]); err != nil {
			return err
		}
	}
	if want[ModeCI] {
		if err := p.CI(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ArtifactFile is the artifact file name for the pipeline's platform.
func (p *Pipeline) ArtifactFile() string {
	return addon.BinaryName(p.build.ArtifactName, p.goos)
}

// PrebuildPath is where the addon backend looks for the helper first.
func (p *Pipeline) PrebuildPath() string {
	return filepath.Join(p.build.PrebuildsDir, addon.PlatformDir(p.goos, p.goarch), p.ArtifactFile())
}

// Native compiles the helper and stages it into the target and prebuilds dirs.
func (p *Pipeline) Native(ctx context.Context, clean bool) error {
	if p.goos == "windows" && p.build.ToolchainEnv != "" && p.getenv(p.build.ToolchainEnv) == "" {
		return fmt.Errorf("%w: %s must be set on windows", ErrMissingToolchain, p.build.ToolchainEnv)
	}

	if clean {
		if err := p.stage.remove(ctx, p.build.TargetDir); err != nil {
			slog.Warn("could not remove target dir", "path", p.build.TargetDir, "error", err)
		}
	}
	if p.getenv("CI") != "" {
		if err := p.stage.remove(ctx, p.build.TmpDir); err != nil {
			slog.Warn("could not remove temp dir", "path", p.build.TmpDir, "error", err)
		}
	}
	if err := p.stage.ensureDir(ctx, p.build.TmpDir); err != nil {
		return fmt.Errorf("failed to create %s: %w", p.build.TmpDir, err)
	}

	if err := p.runner.Run(ctx, "go", p.buildArgs()...); err != nil {
		return fmt.Errorf("native build failed: %w", err)
	}

	src, err := p.findArtifact(ctx)
	if err != nil {
		return err
	}

	targets := []string{
		filepath.Join(p.build.TargetDir, p.ArtifactFile()),
		p.PrebuildPath(),
	}
	for _, dst := range targets {
		if err := p.stage.copyExecutable(ctx, src, dst); err != nil {
			return err
		}
	}

	slog.Info("copied binary", "dir", filepath.Dir(p.PrebuildPath()))
	return nil
}

func (p *Pipeline) buildArgs() []string {
	args := []string{"build"}
	if len(p.build.Tags) > 0 {
		args = append(args, "-tags", strings.Join(p.build.Tags, ","))
	}
	args = append(args, "-o", filepath.Join(p.build.TmpDir, p.ArtifactFile()), p.build.Package)
	return args
}

func (p *Pipeline) findArtifact(ctx context.Context) (string, error) {
	candidates := []string{
		filepath.Join(p.build.TmpDir, p.ArtifactFile()),
		filepath.Join(p.build.TmpDir, "Release", p.ArtifactFile()),
	}
	for _, c := range candidates {
		ok, err := p.stage.exists(ctx, c)
		if err != nil {
			return "", err
		}
		if ok {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: looked in %v", ErrArtifactNotFound, candidates)
}

type workflowRun struct {
	DatabaseID int64  `json:"databaseId"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
}

// CI triggers the release workflow, resolves the run it created and watches it.
func (p *Pipeline) CI(ctx context.Context) error {
	if err := p.runner.Run(ctx, "gh", p.workflowRunArgs()...); err != nil {
		return fmt.Errorf("failed to trigger workflow: %w", err)
	}

	out, err := p.runner.Capture(ctx, "gh", "run", "list",
		"--workflow", p.ci.Workflow,
		"--limit", "1",
		"--json", "databaseId,status,conclusion")
	if err != nil {
		return fmt.Errorf("failed to list workflow runs: %w", err)
	}

	runID, err := ParseRunID(out)
	if err != nil {
		return err
	}
	slog.Info("watching workflow run", "workflow", p.ci.Workflow, "run", runID)

	if err := p.runner.Run(ctx, "gh", "run", "watch", runID, "--exit-status"); err != nil {
		return fmt.Errorf("workflow run %s failed: %w", runID, err)
	}
	return nil
}

func (p *Pipeline) workflowRunArgs() []string {
	args := []string{"workflow", "run", p.ci.Workflow}
	keys := make([]string, 0, len(p.ci.Inputs))
	for k := range p.ci.Inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-f", k+"="+p.ci.Inputs[k])
	}
	return args
}

// ParseRunID extracts the databaseId of the first run in gh's JSON listing.
func ParseRunID(out string) (string, error) {
	var runs []workflowRun
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRunNotFound, err)
	}
	if len(runs) == 0 || runs[0].DatabaseID == 0 {
		return "", ErrRunNotFound
	}
	return strconv.FormatInt(runs[0].DatabaseID, 10), nil
}
