// Package version carries build metadata, set with -ldflags "-X".
package version

// Version is the release version.
var Version = "dev"

// Commit is the VCS revision the binary was built from.
var Commit = "unknown"

// String returns "version (commit)".
func String() string {
	return Version + " (" + Commit + ")"
}
