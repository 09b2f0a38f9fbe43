package imagefmt

import "runtime"

// Version is the semantic version of the imagefmt library.
const Version = "0.1.0"

// VersionInfo contains detailed version information.
type VersionInfo struct {
	// Version is the semantic version (e.g., "0.1.0")
	Version string
	// GitCommit is the git commit hash (set via ldflags at build time)
	GitCommit string
	// GoVersion is the Go version used to build
	GoVersion string
}

// GetVersionInfo returns detailed version information.
//
// GitCommit is populated at build time via -ldflags:
//
//	go build -ldflags="-X github.com/simonhull/imagefmt.gitCommit=$(git rev-parse HEAD)" ./cmd/imagefmt
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: gitCommit,
		GoVersion: runtime.Version(),
	}
}

// Set via -ldflags.
var gitCommit = "unknown"
