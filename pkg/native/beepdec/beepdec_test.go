package beepdec

import (
	"path/filepath"
	"testing"

	"audioutils/internal/testaudio"
	"audioutils/pkg/config"
	"audioutils/pkg/native"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe(t *testing.T) {
	dir := t.TempDir()
	fiveSeconds := testaudio.WriteSilentWAV(t, dir, "valid_5_seconds.wav", 8000, 40000)
	quarter := testaudio.WriteSilentWAV(t, dir, "quarter.wav", 44100, 11025)
	noExt := testaudio.WriteSilentWAV(t, dir, "no_extension", 16000, 32000)
	garbageWav := testaudio.WriteGarbage(t, dir, "corrupt.wav")

	tests := []struct {
		name    string
		path    string
		want    float64
		wantErr bool
	}{
		{name: "Five seconds", path: fiveSeconds, want: 5},
		{name: "Fractional", path: quarter, want: 0.25},
		{name: "Sniffed without extension", path: noExt, want: 2},
		{name: "Missing file", path: filepath.Join(dir, "missing.wav"), wantErr: true},
		{name: "Corrupt header", path: garbageWav, wantErr: true},
	}

	d := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Probe(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				assert.NotEmpty(t, err.Error())
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestProbe_Idempotent(t *testing.T) {
	path := testaudio.WriteSilentWAV(t, t.TempDir(), "a.wav", 22050, 12345)

	d := New()
	first, err := d.Probe(path)
	require.NoError(t, err)
	second, err := d.Probe(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRegistered(t *testing.T) {
	p, err := native.Open(&config.BackendConfig{Name: Name})
	require.NoError(t, err)
	assert.Equal(t, Name, p.Backend())

	path := testaudio.WriteSilentWAV(t, t.TempDir(), "b.wav", 8000, 8000)
	got, ok := p.Duration(1, path)
	require.True(t, ok)
	assert.Equal(t, 1.0, got)
}
