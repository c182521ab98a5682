package meta

import (
	"fmt"
	"runtime"
)

// Info describes the build context of a topicsender binary, as stamped by
// the Go linker. See the vars below.
type Info struct {
	Version   string
	Build     string
	Branch    string
	BuildTime string
	Platform  string
	GoVersion string
	GoTag     string
}

// These will be filled in using the linker -X flag, e.g.
//
//   go build -ldflags "-X github.com/luma/topicsender/internal/meta.Version=v0.2.0"
var (
	Version = "dev"

	// Build is the Git sha from when we are building
	Build string

	Branch string

	// BuildTimeUTC is the build time in UTC (year/month/day hour:min:sec)
	BuildTimeUTC string

	// GoTag is the Go build tags, see https://golang.org/pkg/go/build/#hdr-Build_Constraints
	GoTag string

	platform = fmt.Sprintf("%s %s", runtime.GOOS, runtime.GOARCH)
)

// GetInfo returns an Info struct populated with the build information.
func GetInfo() Info {
	return Info{
		GoVersion: runtime.Version(),
		Version:   Version,
		Build:     Build,
		Branch:    Branch,
		BuildTime: BuildTimeUTC,
		GoTag:     GoTag,
		Platform:  platform,
	}
}
