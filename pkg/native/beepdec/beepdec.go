// Package beepdec measures durations with the gopxl/beep decoders.
package beepdec

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"audioutils/pkg/config"
	"audioutils/pkg/logging"
	"audioutils/pkg/native"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// Name is the registry name and error prefix of this backend.
const Name = "beep"

// ErrUnsupportedFormat is returned when no decoder accepts the file.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// ErrInvalidSampleRate is returned for streams that report a non-positive rate.
var ErrInvalidSampleRate = errors.New("invalid samplerate")

func init() {
	native.Register(Name, func(cfg *config.BackendConfig) (native.Probe, error) {
		return native.NewBridge(New()), nil
	})
}

type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

type decoder struct {
	name   string
	decode decodeFunc
}

var (
	wavDecoder = decoder{"wav", func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return wav.Decode(f)
	}}
	mp3Decoder = decoder{"mp3", func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return mp3.Decode(f)
	}}
	flacDecoder = decoder{"flac", func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return flac.Decode(f)
	}}
	vorbisDecoder = decoder{"vorbis", func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return vorbis.Decode(f)
	}}
)

var byExtension = map[string]decoder{
	".wav":  wavDecoder,
	".wave": wavDecoder,
	".mp3":  mp3Decoder,
	".flac": flacDecoder,
	".ogg":  vorbisDecoder,
	".oga":  vorbisDecoder,
}

// sniff order for unknown extensions; mp3 last because it resyncs on garbage
var sniffOrder = []decoder{wavDecoder, flacDecoder, vorbisDecoder, mp3Decoder}

// Decoder implements native.Backend.
type Decoder struct{}

// New returns a beep backed decoder.
func New() *Decoder {
	return &Decoder{}
}

// Name implements native.Backend.
func (d *Decoder) Name() string {
	return Name
}

// Probe implements native.Backend. The result is frames / samplerate in seconds.
func (d *Decoder) Probe(path string) (float64, error) {
	candidates := sniffOrder
	if dec, ok := byExtension[strings.ToLower(filepath.Ext(path))]; ok {
		candidates = []decoder{dec}
	}

	var errs []error
	for _, dec := range candidates {
		seconds, err := probeWith(dec, path)
		if err == nil {
			return seconds, nil
		}
		var pathErr *os.PathError
		if errors.As(err, &pathErr) || errors.Is(err, ErrInvalidSampleRate) {
			return 0, err
		}
		logging.TraceDefault("beep: decoder rejected file", "decoder", dec.name, "path", path, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", dec.name, err))
	}

	if len(candidates) == 1 {
		return 0, errs[0]
	}
	slog.Debug("beep: no decoder accepted file", "path", path, "tried", len(candidates))
	return 0, fmt.Errorf("%w: %w", ErrUnsupportedFormat, errors.Join(errs...))
}

func probeWith(dec decoder, path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	streamer, format, err := dec.decode(f)
	if err != nil {
		return 0, err
	}
	defer streamer.Close()

	if format.SampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}

	frames := streamer.Len()
	if frames < 0 {
		return 0, fmt.Errorf("stream length unknown: %w", io.ErrUnexpectedEOF)
	}
	return float64(frames) / float64(format.SampleRate), nil
}
