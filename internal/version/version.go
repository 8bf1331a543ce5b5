// Package version carries build metadata injected with -ldflags.
package version

import (
	"fmt"
	"io"
	"strings"
)

var (
	App       = "psychmag"
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
	BuildOS   string
	BuildArch string
)

// String returns a one-line summary such as "psychmag v1.2.0 (abc1234)".
func String() string {
	s := App + " " + getVersion()
	if GitCommit != "" {
		s += " (" + getShortCommit() + ")"
	}
	return s
}

// PrintVersion writes the full build information to w.
func PrintVersion(w io.Writer) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s version %s\n", App, getVersion())
	if GitCommit != "" {
		fmt.Fprintf(&b, "Git commit: %s\n", getShortCommit())
	}
	if BuildTime != "" {
		fmt.Fprintf(&b, "Build time: %s\n", BuildTime)
	}
	if GoVersion != "" {
		fmt.Fprintf(&b, "Go version: %s\n", GoVersion)
	}
	if BuildOS != "" && BuildArch != "" {
		fmt.Fprintf(&b, "Built for: %s/%s\n", BuildOS, BuildArch)
	}
	_, _ = io.WriteString(w, b.String())
}

func getShortCommit() string {
	if len(GitCommit) > 7 {
		return GitCommit[:7]
	}
	return GitCommit
}

func getVersion() string {
	if Version != "" {
		return Version
	}
	return "dev"
}
