//go:build sndfile && cgo

package sndfile

/*
#cgo pkg-config: sndfile
#include <stdlib.h>
#include <sndfile.h>
*/
import "C"

import (
	"errors"
	"unsafe"

	"audioutils/pkg/config"
	"audioutils/pkg/native"
)

func init() {
	native.Register(Name, func(cfg *config.BackendConfig) (native.Probe, error) {
		return native.NewBridge(New()), nil
	})
}

// Decoder implements native.Backend on top of sf_open.
type Decoder struct{}

// New returns a libsndfile backed decoder.
func New() *Decoder {
	return &Decoder{}
}

// Name implements native.Backend.
func (d *Decoder) Name() string {
	return Name
}

// Probe implements native.Backend.
func (d *Decoder) Probe(path string) (float64, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	var info C.SF_INFO
	file := C.sf_open(cpath, C.SFM_READ, &info)
	if file == nil {
		// sf_strerror(NULL) reports the last sf_open failure
		return 0, errors.New(C.GoString(C.sf_strerror(nil)))
	}
	defer C.sf_close(file)

	if info.samplerate <= 0 {
		return 0, errors.New("invalid samplerate")
	}
	return float64(info.frames) / float64(info.samplerate), nil
}
