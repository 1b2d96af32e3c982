// Package buildinfo carries the version stamp shown by --version.
package buildinfo

// Injected via -ldflags at release time; the defaults mark dev builds.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
