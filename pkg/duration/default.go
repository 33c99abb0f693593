package duration

import (
	"sync"

	"audioutils/pkg/callid"
	"audioutils/pkg/native"
	"audioutils/pkg/native/beepdec"
)

var (
	defaultOnce sync.Once
	defaultSvc  *Service
)

// Default returns the process-wide service backed by the beep decoders.
func Default() *Service {
	defaultOnce.Do(func() {
		defaultSvc = New(native.NewBridge(beepdec.New()), WithAllocator(callid.Default))
	})
	return defaultSvc
}

// GetDuration is Default().Get(path).
func GetDuration(path string) (float64, error) {
	return Default().Get(path)
}
