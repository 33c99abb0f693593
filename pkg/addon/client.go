package addon

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	"audioutils/pkg/config"
	"audioutils/pkg/logging"
	"audioutils/pkg/native"
)

// Name is the registry name of the addon backend.
const Name = "addon"

func init() {
	native.Register(Name, func(cfg *config.BackendConfig) (native.Probe, error) {
		bin, err := Locate(cfg.Addon.Root, cfg.Addon.Name)
		if err != nil {
			return nil, err
		}
		return Start(bin, cfg.Addon.Args...)
	})
}

// Client implements native.Probe against a helper process.
type Client struct {
	mu      sync.Mutex
	enc     *json.Encoder
	dec     *json.Decoder
	stdin   io.Closer
	cmd     *exec.Cmd
	backend string

	// transport failures, reported through LastError like backend failures
	local map[uint32]string
}

// Start launches bin with args and performs the info handshake.
func Start(bin string, args ...string) (*Client, error) {
	cmd := exec.Command(bin, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open addon stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open addon stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start addon %s: %w", bin, err)
	}

	c, err := Dial(stdout, stdin)
	if err != nil {
		_ = stdin.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}
	c.cmd = cmd
	slog.Debug("addon: started", "path", bin, "pid", cmd.Process.Pid, "backend", c.backend)
	return c, nil
}

// Dial speaks the protocol over an existing stream pair.
func Dial(r io.Reader, w io.WriteCloser) (*Client, error) {
	c := &Client{
		enc:   json.NewEncoder(w),
		dec:   json.NewDecoder(r),
		stdin: w,
		local: make(map[uint32]string),
	}

	resp, err := c.roundTrip(&Request{Op: OpInfo})
	if err != nil {
		return nil, fmt.Errorf("addon handshake failed: %w", err)
	}
	if !resp.OK || resp.Backend == "" {
		return nil, errors.New("addon handshake failed: backend not reported")
	}
	c.backend = resp.Backend
	return c, nil
}

// Backend implements native.Probe. It is the decoder inside the helper.
func (c *Client) Backend() string {
	return c.backend
}

// Duration implements native.Probe.
func (c *Client) Duration(callID uint32, path string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.roundTrip(&Request{Op: OpGetDuration, CallID: callID, Path: path})
	if err != nil {
		c.local[callID] = err.Error()
		return 0, false
	}
	return resp.Duration, resp.OK
}

// LastError implements native.Probe.
func (c *Client) LastError(callID uint32) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if msg, ok := c.local[callID]; ok {
		delete(c.local, callID)
		return msg, true
	}

	resp, err := c.roundTrip(&Request{Op: OpGetLastError, CallID: callID})
	if err != nil {
		return err.Error(), true
	}
	if !resp.OK || resp.Error == "" {
		return "", false
	}
	return resp.Error, true
}

// Close ends the session and waits for the helper to exit.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.stdin.Close()
	if c.cmd != nil {
		if waitErr := c.cmd.Wait(); waitErr != nil && err == nil {
			err = waitErr
		}
		c.cmd = nil
	}
	return err
}

func (c *Client) roundTrip(req *Request) (*Response, error) {
	if err := c.enc.Encode(req); err != nil {
		return nil, fmt.Errorf("addon write: %w", err)
	}
	var resp Response
	if err := c.dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("addon read: %w", err)
	}
	if resp.CallID != req.CallID {
		return nil, fmt.Errorf("addon answered call %d, expected %d", resp.CallID, req.CallID)
	}
	logging.Trace(slog.Default(), "addon: round trip", "op", req.Op, "call_id", req.CallID, "ok", resp.OK)
	return &resp, nil
}
