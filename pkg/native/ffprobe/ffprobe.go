// Package ffprobe measures durations by running the ffprobe binary.
package ffprobe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"audioutils/pkg/config"
	"audioutils/pkg/native"
)

// Name is the registry name and error prefix of this backend.
const Name = "ffprobe"

func init() {
	native.Register(Name, func(cfg *config.BackendConfig) (native.Probe, error) {
		d, err := New(cfg.FFProbe.Path, cfg.FFProbe.Timeout.Std())
		if err != nil {
			return nil, err
		}
		return native.NewBridge(d), nil
	})
}

// Decoder implements native.Backend by shelling out to ffprobe.
type Decoder struct {
	bin     string
	timeout time.Duration
}

// New resolves bin on PATH. A zero timeout disables the limit.
func New(bin string, timeout time.Duration) (*Decoder, error) {
	if bin == "" {
		bin = "ffprobe"
	}
	resolved, err := exec.LookPath(bin)
	if err != nil {
		return nil, err
	}
	return &Decoder{bin: resolved, timeout: timeout}, nil
}

// Name implements native.Backend.
func (d *Decoder) Name() string {
	return Name
}

// Probe implements native.Backend.
func (d *Decoder) Probe(path string) (float64, error) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, fmt.Errorf("timed out after %s", d.timeout)
		}
		if msg := firstLine(stderr.String()); msg != "" {
			return 0, errors.New(msg)
		}
		return 0, err
	}
	return ParseOutput(stdout.String())
}

// ParseOutput parses the single duration line ffprobe prints.
func ParseOutput(out string) (float64, error) {
	line := firstLine(out)
	if line == "" || line == "N/A" {
		return 0, errors.New("duration not reported")
	}
	d, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected ffprobe output %q", line)
	}
	return d, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
