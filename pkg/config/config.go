package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Log     LogConfig     `yaml:"log"`
	Cache   CacheConfig   `yaml:"cache"`
	Build   BuildConfig   `yaml:"build"`
	CI      CIConfig      `yaml:"ci"`
}

// BackendConfig selects and tunes the decoding backend.
type BackendConfig struct {
	Name    string        `yaml:"name"` // "beep", "ffprobe", "addon", "libsndfile"
	FFProbe FFProbeConfig `yaml:"ffprobe"`
	Addon   AddonConfig   `yaml:"addon"`
}

// FFProbeConfig holds settings for the ffprobe backend.
type FFProbeConfig struct {
	Path    string   `yaml:"path"`
	Timeout Duration `yaml:"timeout"`
}

// AddonConfig holds settings for locating the prebuilt helper binary.
type AddonConfig struct {
	Root string   `yaml:"root"` // directory containing prebuilds/ and build/
	Name string   `yaml:"name"` // artifact name without platform suffix
	Args []string `yaml:"args"` // arguments that put the helper into serve mode
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server LogSettings `yaml:"server"`
	Probe  LogSettings `yaml:"probe"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// CacheConfig holds settings for the persistent duration cache.
type CacheConfig struct {
	Enabled bool     `yaml:"enabled"`
	Path    string   `yaml:"path"`
	TTL     Duration `yaml:"ttl"`
}

// BuildConfig holds settings for compiling and staging the helper binary.
type BuildConfig struct {
	TargetDir    string   `yaml:"target_dir"`
	TmpDir       string   `yaml:"tmp_dir"`
	PrebuildsDir string   `yaml:"prebuilds_dir"`
	ArtifactName string   `yaml:"artifact_name"`
	Package      string   `yaml:"package"`
	Tags         []string `yaml:"tags"`
	ToolchainEnv string   `yaml:"toolchain_env"` // required on windows
}

// CIConfig holds settings for the remote build workflow.
type CIConfig struct {
	Workflow string            `yaml:"workflow"`
	Inputs   map[string]string `yaml:"inputs"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			Name: "beep",
			FFProbe: FFProbeConfig{
				Path:    "ffprobe",
				Timeout: Duration(30 * time.Second),
			},
			Addon: AddonConfig{
				Root: ".",
				Name: "audio-utils",
				Args: []string{"serve"},
			},
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/audio-utils.log",
				Level: "INFO",
			},
			Probe: LogSettings{
				Path:  "./logs/probe.log",
				Level: "INFO",
			},
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    "./data/durations.db",
			TTL:     Duration(30 * Day),
		},
		Build: BuildConfig{
			TargetDir:    "build",
			TmpDir:       "build/native-tmp",
			PrebuildsDir: "prebuilds",
			ArtifactName: "audio-utils",
			Package:      "./cmd/audio-utils",
			Tags:         []string{"sndfile"},
			ToolchainEnv: "PKG_CONFIG_PATH",
		},
		CI: CIConfig{
			Workflow: "release",
			Inputs: map[string]string{
				"mode": "build_only",
			},
		},
	}
}

// Load loads the configuration from the given path.
// A missing file yields the defaults; an existing file is merged over them.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("AUDIO_UTILS_BACKEND"); v != "" {
		cfg.Backend.Name = v
	}
	if v := os.Getenv("AUDIO_UTILS_ADDON_ROOT"); v != "" {
		cfg.Backend.Addon.Root = v
	}
	if v := os.Getenv("AUDIO_UTILS_CACHE_PATH"); v != "" {
		cfg.Cache.Path = v
		cfg.Cache.Enabled = true
	}
}

var artifactName = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Validate checks the fields that would otherwise fail deep inside a backend or the build.
func (c *Config) Validate() error {
	if c.Backend.Name == "" {
		return fmt.Errorf("backend.name must not be empty")
	}
	if !artifactName.MatchString(c.Build.ArtifactName) {
		return fmt.Errorf("invalid build.artifact_name '%s': only letters, digits, '.', '_' and '-' are allowed", c.Build.ArtifactName)
	}
	if !artifactName.MatchString(c.Backend.Addon.Name) {
		return fmt.Errorf("invalid backend.addon.name '%s'", c.Backend.Addon.Name)
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		return fmt.Errorf("cache.path must be set when the cache is enabled")
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# audio-utils configuration
# ------------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)

`)
	data = append(header, data...)

	reName := regexp.MustCompile(`(?m)^(\s+)name: beep`)
	data = reName.ReplaceAll(data, []byte("${1}# Options: beep, ffprobe, addon, libsndfile (requires -tags sndfile)\n${1}name: beep"))

	reEnv := regexp.MustCompile(`(?m)^(\s+)toolchain_env:`)
	data = reEnv.ReplaceAll(data, []byte("${1}# Must be set when building natively on windows\n${1}toolchain_env:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
