package backends

import (
	"testing"

	"audioutils/pkg/native"

	"github.com/stretchr/testify/assert"
)

func TestRegistered(t *testing.T) {
	names := native.Names()
	for _, want := range []string{"addon", "beep", "ffprobe"} {
		assert.Contains(t, names, want)
	}
}
