// Package version holds the build version string.
package version

// Version is the current release, overridden at build time via
// -ldflags "-X .../pkg/version.Version=v1.2.3".
var Version = "dev"
