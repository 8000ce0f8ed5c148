package buildtime

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

//go:embed revision
var revision string

// Version is the release version baked into this binary.
func Version() string {
	return strings.TrimSpace(version)
}

// Revision is the VCS revision baked into this binary.
func Revision() string {
	return strings.TrimSpace(revision)
}

// VersionString renders version and revision for `dstack version`.
func VersionString() string {
	return Version() + " (commit: " + Revision() + ")"
}
