// Package version exposes the build version of carbonledger.
package version

// version is set at build time via
// -ldflags "-X github.com/greenbim/carbonledger/pkg/version.version=v1.2.3".
var version = "0.1.0-dev" //nolint:gochecknoglobals // Set by the linker.

// GetVersion returns the build version string.
func GetVersion() string {
	return version
}
