package addon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"audioutils/pkg/native"
)

// Serve answers requests read from r with p until r is exhausted or ctx is done.
func Serve(ctx context.Context, r io.Reader, w io.Writer, p native.Probe) error {
	dec := json.NewDecoder(r)
	enc := json.NewEncoder(w)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var req Request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read request: %w", err)
		}

		resp := handle(p, &req)
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
}

func handle(p native.Probe, req *Request) *Response {
	resp := &Response{CallID: req.CallID}

	switch req.Op {
	case OpInfo:
		resp.OK = true
		resp.Backend = p.Backend()
	case OpGetDuration:
		resp.Duration, resp.OK = p.Duration(req.CallID, req.Path)
	case OpGetLastError:
		resp.Error, resp.OK = p.LastError(req.CallID)
	default:
		slog.Warn("addon: unknown op", "op", req.Op, "call_id", req.CallID)
		resp.Error = fmt.Sprintf("unknown op %q", req.Op)
	}
	return resp
}
