package utils

import (
	"runtime/debug"
	"strings"
)

// DevVersion is reported for builds that carry no module version, such as
// `go run` or a plain `go build` in the work tree.
const DevVersion = "dev"

// version is set with -ldflags "-X github.com/gnomegl/contribreport/internal/utils.version=..."
var version string

// GetVersion returns the release version without its "v" prefix, falling back
// to the module version from build info and then to DevVersion.
func GetVersion() string {
	v := version
	if v == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	if v == "" {
		return DevVersion
	}
	return strings.TrimPrefix(v, "v")
}

// IsRelease reports whether the running binary was built from a tagged
// version.
func IsRelease() bool {
	return GetVersion() != DevVersion
}
