// Package backends links every decoding backend into the native registry.
package backends

import (
	_ "audioutils/pkg/addon"          // "addon"
	_ "audioutils/pkg/native/beepdec" // "beep"
	_ "audioutils/pkg/native/ffprobe" // "ffprobe"
	_ "audioutils/pkg/native/sndfile" // "libsndfile", with -tags sndfile
)
