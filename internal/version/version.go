// Package version carries build identification, injected via -ldflags.
package version

var (
	// Version is the release version of the bridge.
	Version = "dev"
	// GitSHA is the git commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// String renders the build identification for logs and the home endpoint.
func String() string {
	return Version + " (" + GitSHA + ", " + BuildTime + ")"
}
