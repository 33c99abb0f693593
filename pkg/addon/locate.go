package addon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ErrAddonNotFound is returned when no prebuilt helper exists for this platform.
var ErrAddonNotFound = errors.New("prebuilt addon not found")

// PlatformDir is the per-platform directory name, e.g. "linux-amd64".
func PlatformDir(goos, goarch string) string {
	return goos + "-" + goarch
}

// BinaryName appends the executable suffix for goos.
func BinaryName(name, goos string) string {
	if goos == "windows" {
		return name + ".exe"
	}
	return name
}

// Candidates lists where the helper is looked for under root, in order.
func Candidates(root, name, goos, goarch string) []string {
	bin := BinaryName(name, goos)
	return []string{
		filepath.Join(root, "prebuilds", PlatformDir(goos, goarch), bin),
		filepath.Join(root, "build", bin),
	}
}

// Locate returns the first candidate for the running platform that is a regular file.
func Locate(root, name string) (string, error) {
	tried := Candidates(root, name, runtime.GOOS, runtime.GOARCH)
	for _, p := range tried {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %v", ErrAddonNotFound, tried)
}
