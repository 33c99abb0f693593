// Package version holds the release version, overridable with
// -ldflags "-X audioutils/pkg/version.Version=...".
package version

// Version is the current release.
var Version = "v0.3.1"
