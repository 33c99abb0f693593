package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"audioutils/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

// fakeRunner records commands. A "go build" writes a fake binary to the -o
// path (or to outDir when set), simulating a compiler.
type fakeRunner struct {
	calls      []call
	failOn     string
	captureOut string
	outDir     string
	skipOutput bool
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	f.calls = append(f.calls, call{name, args})
	line := name + " " + strings.Join(args, " ")
	if f.failOn != "" && strings.HasPrefix(line, f.failOn) {
		return errors.New("exit status 1")
	}
	if name == "go" && !f.skipOutput {
		out := args[len(args)-2]
		if f.outDir != "" {
			out = filepath.Join(f.outDir, filepath.Base(out))
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		return os.WriteFile(out, []byte("fake-binary"), 0o644)
	}
	return nil
}

func (f *fakeRunner) Capture(ctx context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, call{name, args})
	if f.failOn != "" && strings.HasPrefix(name+" "+strings.Join(args, " "), f.failOn) {
		return "", errors.New("exit status 1")
	}
	return f.captureOut, nil
}

func testPipeline(t *testing.T, r Runner) (*Pipeline, string) {
	t.Helper()
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Build.TargetDir = filepath.Join(root, "build")
	cfg.Build.TmpDir = filepath.Join(root, "build", "native-tmp")
	cfg.Build.PrebuildsDir = filepath.Join(root, "prebuilds")

	p := New(cfg, r)
	p.goos = "linux"
	p.goarch = "amd64"
	p.getenv = func(string) string { return "" }
	return p, root
}

func TestNative(t *testing.T) {
	r := &fakeRunner{}
	p, root := testPipeline(t, r)

	require.NoError(t, p.Run(context.Background(), []string{"native"}))

	require.Len(t, r.calls, 1)
	assert.Equal(t, "go", r.calls[0].name)
	assert.Equal(t, []string{
		"build", "-tags", "sndfile",
		"-o", filepath.Join(root, "build", "native-tmp", "audio-utils"),
		"./cmd/audio-utils",
	}, r.calls[0].args)

	for _, staged := range []string{
		filepath.Join(root, "build", "audio-utils"),
		filepath.Join(root, "prebuilds", "linux-amd64", "audio-utils"),
	} {
		data, err := os.ReadFile(staged)
		require.NoError(t, err, staged)
		assert.Equal(t, "fake-binary", string(data))
	}
}

func TestNative_ReleaseSubdir(t *testing.T) {
	r := &fakeRunner{}
	p, root := testPipeline(t, r)
	r.outDir = filepath.Join(root, "build", "native-tmp", "Release")

	require.NoError(t, p.Native(context.Background(), false))
	_, err := os.Stat(filepath.Join(root, "prebuilds", "linux-amd64", "audio-utils"))
	assert.NoError(t, err)
}

func TestNative_Clean(t *testing.T) {
	r := &fakeRunner{}
	p, root := testPipeline(t, r)

	stale := filepath.Join(root, "build", "stale.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))

	require.NoError(t, p.Run(context.Background(), []string{"clean", "native"}))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "clean must remove the target dir")
	_, err = os.Stat(filepath.Join(root, "build", "audio-utils"))
	assert.NoError(t, err)
}

func TestNative_Failures(t *testing.T) {
	tests := []struct {
		name   string
		runner *fakeRunner
		goos   string
		env    map[string]string
		is     error
	}{
		{
			name:   "Compiler fails",
			runner: &fakeRunner{failOn: "go build"},
			goos:   "linux",
		},
		{
			name:   "No artifact",
			runner: &fakeRunner{skipOutput: true},
			goos:   "linux",
			is:     ErrArtifactNotFound,
		},
		{
			name:   "Windows without toolchain",
			runner: &fakeRunner{},
			goos:   "windows",
			is:     ErrMissingToolchain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := testPipeline(t, tt.runner)
			p.goos = tt.goos
			p.getenv = func(k string) string { return tt.env[k] }

			err := p.Native(context.Background(), false)
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestNative_WindowsWithToolchain(t *testing.T) {
	r := &fakeRunner{}
	p, root := testPipeline(t, r)
	p.goos = "windows"
	p.getenv = func(k string) string {
		if k == "PKG_CONFIG_PATH" {
			return `C:\vcpkg\installed\x64-windows\lib\pkgconfig`
		}
		return ""
	}

	require.NoError(t, p.Native(context.Background(), false))
	_, err := os.Stat(filepath.Join(root, "prebuilds", "windows-amd64", "audio-utils.exe"))
	assert.NoError(t, err)
}

func TestCI(t *testing.T) {
	r := &fakeRunner{captureOut: `[{"databaseId":123456,"status":"queued","conclusion":""}]`}
	p, _ := testPipeline(t, r)

	require.NoError(t, p.Run(context.Background(), []string{"ci"}))

	require.Len(t, r.calls, 3)
	assert.Equal(t, []string{"workflow", "run", "release", "-f", "mode=build_only"}, r.calls[0].args)
	assert.Equal(t, []string{"run", "list", "--workflow", "release", "--limit", "1", "--json", "databaseId,status,conclusion"}, r.calls[1].args)
	assert.Equal(t, []string{"run", "watch", "123456", "--exit-status"}, r.calls[2].args)
}

func TestCI_Failures(t *testing.T) {
	tests := []struct {
		name   string
		runner *fakeRunner
		is     error
	}{
		{name: "Trigger fails", runner: &fakeRunner{failOn: "gh workflow"}},
		{name: "Empty list", runner: &fakeRunner{captureOut: "[]"}, is: ErrRunNotFound},
		{name: "Garbage list", runner: &fakeRunner{captureOut: "not json"}, is: ErrRunNotFound},
		{name: "Watch fails", runner: &fakeRunner{captureOut: `[{"databaseId":7}]`, failOn: "gh run watch"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := testPipeline(t, tt.runner)
			err := p.CI(context.Background())
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestRun_NoModes(t *testing.T) {
	r := &fakeRunner{}
	p, root := testPipeline(t, r)

	require.NoError(t, p.Run(context.Background(), nil))
	assert.Empty(t, r.calls)

	info, err := os.Stat(filepath.Join(root, "build"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestParseRunID(t *testing.T) {
	id, err := ParseRunID(`[{"databaseId":987,"status":"in_progress","conclusion":""},{"databaseId":1}]`)
	require.NoError(t, err)
	assert.Equal(t, "987", id)
}
