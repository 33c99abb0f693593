// Package testaudio writes small audio fixtures for tests.
package testaudio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// WriteSilentWAV writes a 16-bit mono WAV of frames silent frames at rate Hz
// into dir and returns its path.
func WriteSilentWAV(t testing.TB, dir, name string, rate, frames int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()

	format := beep.Format{
		SampleRate:  beep.SampleRate(rate),
		NumChannels: 1,
		Precision:   2,
	}
	if err := wav.Encode(f, beep.Silence(frames), format); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return path
}

// WriteGarbage writes bytes that no decoder accepts.
func WriteGarbage(t testing.TB, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("this is not an audio file"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}
