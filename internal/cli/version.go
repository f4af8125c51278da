package cli

import (
	"runtime"
	"runtime/debug"

	"github.com/MakeNowJust/heredoc/v2"
)

const appURL = "https://github.com/babarot/saferm"

// Version carries the values stamped in by -ldflags
type Version struct {
	AppName   string
	Version   string
	Revision  string
	BuildDate string
}

// String renders the -V output. Builds without ldflags fall back to the
// module version recorded by go install.
func (v Version) String() string {
	if v.Version == "" || v.Version == "unset" {
		v.Version = "(devel)"
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
			v.Version = info.Main.Version
		}
	}
	return heredoc.Docf(`
		%s %s (%s, built %s, %s)
		A safer rm that keeps what you delete.
		%s
		`,
		v.AppName, v.Version, v.Revision, v.BuildDate, runtime.Version(), appURL,
	)
}
