// Package duration returns the duration of audio files through a native probe.
//
// Every call gets a fresh call id. When the probe reports failure, the error
// message recorded for that id is fetched and returned as a *ProbeError whose
// text is prefixed with the backend name.
package duration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"audioutils/pkg/cache"
	"audioutils/pkg/callid"
	"audioutils/pkg/logging"
	"audioutils/pkg/native"
)

// Service resolves durations. It is safe for concurrent use when its probe is.
type Service struct {
	ids   *callid.Allocator
	probe native.Probe
	cache cache.Cacher
}

// Option configures a Service.
type Option func(*Service)

// WithAllocator shares an allocator between services.
func WithAllocator(a *callid.Allocator) Option {
	return func(s *Service) {
		s.ids = a
	}
}

// WithCache stores successful results keyed by path, size and mtime.
func WithCache(c cache.Cacher) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// New returns a Service over p with its own allocator.
func New(p native.Probe, opts ...Option) *Service {
	s := &Service{
		ids:   callid.New(),
		probe: p,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend names the decoder behind the service.
func (s *Service) Backend() string {
	return s.probe.Backend()
}

// Get returns the duration of the file at path in seconds, exactly as the
// backend reports it.
func (s *Service) Get(path string) (float64, error) {
	key := s.cacheKey(path)
	if key != "" {
		if d, ok := s.cached(key); ok {
			slog.Debug("duration: cache hit", "path", path)
			return d, nil
		}
	}

	id := s.ids.Next()
	d, ok := s.probe.Duration(id, path)
	if !ok {
		msg, found := s.probe.LastError(id)
		if !found || msg == "" {
			msg = UnknownError
		}
		logging.ProbeLogger.Info("probe failed",
			"call_id", id, "backend", s.probe.Backend(), "path", path, "error", msg)
		return 0, &ProbeError{
			Backend: s.probe.Backend(),
			Path:    path,
			CallID:  id,
			Message: msg,
		}
	}

	logging.ProbeLogger.Info("probe",
		"call_id", id, "backend", s.probe.Backend(), "path", path, "duration", d)

	if key != "" {
		s.store(key, d)
	}
	return d, nil
}

// Close releases the probe if it holds resources, such as a helper process.
func (s *Service) Close() error {
	if c, ok := s.probe.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Service) cacheKey(path string) string {
	if s.cache == nil {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		// the probe reports the failure
		return ""
	}
	return fmt.Sprintf("duration:%s:%s:%d:%d", s.probe.Backend(), abs, info.Size(), info.ModTime().UnixNano())
}

func (s *Service) cached(key string) (float64, bool) {
	raw, ok := s.cache.GetCache(context.Background(), key)
	if !ok {
		return 0, false
	}
	d, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		slog.Warn("duration: ignoring corrupt cache entry", "key", key, "error", err)
		return 0, false
	}
	return d, true
}

func (s *Service) store(key string, d float64) {
	val := []byte(strconv.FormatFloat(d, 'g', -1, 64))
	if err := s.cache.SetCache(context.Background(), key, val); err != nil {
		slog.Warn("duration: failed to cache result", "key", key, "error", err)
	}
}
