// Package version provides the build version of the tools.
package version

import (
	"runtime/debug"
	"strconv"
	"strings"
)

// Build is set at link time with
// -ldflags "-X github.com/effective-security/csrkit/internal/version.Build=v1.2.3"
var Build = "v0.0.0"

// Info describes a version
type Info struct {
	Major int
	Minor int
	Patch int
	Build string
}

func (v Info) String() string {
	return v.Build
}

// Current returns the version of the binary
func Current() Info {
	build := Build
	if build == "v0.0.0" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			build = bi.Main.Version
		}
	}
	return parse(build)
}

func parse(build string) Info {
	v := Info{Build: build}
	parts := strings.SplitN(strings.TrimPrefix(build, "v"), ".", 3)
	nums := []*int{&v.Major, &v.Minor, &v.Patch}
	for i, p := range parts {
		// drop pre-release and build metadata
		if idx := strings.IndexAny(p, "-+"); idx >= 0 {
			p = p[:idx]
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			break
		}
		*nums[i] = n
	}
	return v
}
