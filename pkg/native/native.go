// Package native defines the two-call contract the duration API relies on and
// adapts plain decoding backends to it.
//
// A Probe is addressed by call id: Duration reports success or the absence
// sentinel, and LastError hands out the message recorded for that call id
// exactly once.
package native

import (
	"fmt"
	"math"
	"sync"
)

// Probe is the call-id based surface of a decoding backend.
type Probe interface {
	// Duration returns the duration of the file at path, or ok=false when the
	// backend could not determine it.
	Duration(callID uint32, path string) (seconds float64, ok bool)
	// LastError takes the message recorded for callID. ok is false when none exists.
	LastError(callID uint32) (msg string, ok bool)
	// Backend names the decoder behind the probe. It prefixes error messages.
	Backend() string
}

// Backend is a concrete decoder.
type Backend interface {
	Name() string
	Probe(path string) (float64, error)
}

// Fallback messages recorded when a backend fails without saying why.
const (
	MsgOpenFailed      = "failed to open file"
	MsgInvalidDuration = "invalid duration"
)

// Bridge turns a Backend into a Probe by keeping a per-call error book.
type Bridge struct {
	backend Backend

	mu     sync.Mutex
	errors map[uint32]string
}

// NewBridge wraps b.
func NewBridge(b Backend) *Bridge {
	return &Bridge{
		backend: b,
		errors:  make(map[uint32]string),
	}
}

// Backend implements Probe.
func (br *Bridge) Backend() string {
	return br.backend.Name()
}

// Duration implements Probe.
func (br *Bridge) Duration(callID uint32, path string) (float64, bool) {
	d, err := br.backend.Probe(path)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = MsgOpenFailed
		}
		br.set(callID, msg)
		return 0, false
	}
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		br.set(callID, fmt.Sprintf("%s: %v", MsgInvalidDuration, d))
		return 0, false
	}
	return d, true
}

// LastError implements Probe.
func (br *Bridge) LastError(callID uint32) (string, bool) {
	msg := br.take(callID)
	return msg, msg != ""
}

// Pending reports how many error messages have not been taken yet.
func (br *Bridge) Pending() int {
	br.mu.Lock()
	defer br.mu.Unlock()
	return len(br.errors)
}

func (br *Bridge) set(callID uint32, msg string) {
	br.mu.Lock()
	defer br.mu.Unlock()
	br.errors[callID] = msg
}

func (br *Bridge) take(callID uint32) string {
	br.mu.Lock()
	defer br.mu.Unlock()
	msg, ok := br.errors[callID]
	if !ok {
		return ""
	}
	delete(br.errors, callID)
	return msg
}
