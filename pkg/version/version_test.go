package version

import (
	"regexp"
	"testing"
)

func TestVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		pattern string
	}{
		{
			name:    "Release tag",
			version: Version,
			pattern: `^v\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !regexp.MustCompile(tt.pattern).MatchString(tt.version) {
				t.Errorf("Version = %q, want match for %s", tt.version, tt.pattern)
			}
		})
	}
}
