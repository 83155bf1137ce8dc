// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package version reports build information of the running binary.
package version

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"go.astrophena.name/checkbox/syncx"
)

// Info contains version information about the running binary.
type Info struct {
	// Name is the command name (see CmdName).
	Name string `json:"name"`
	// Commit is the VCS revision the binary was built from, if known.
	Commit string `json:"commit,omitempty"`
	// Dirty reports whether the working tree had uncommitted changes.
	Dirty bool `json:"dirty,omitempty"`
	// BuildTime is the commit time of Commit.
	BuildTime time.Time `json:"build_time,omitzero"`
	// Go is the Go version used to build the binary.
	Go string `json:"go"`
	// OS and Arch are runtime.GOOS and runtime.GOARCH.
	OS   string `json:"os"`
	Arch string `json:"arch"`
}

// String returns a human-readable representation of i, terminated by
// a newline.
func (i Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s", i.Name)
	if i.Commit != "" {
		rev := i.Commit
		if len(rev) > 12 {
			rev = rev[:12]
		}
		fmt.Fprintf(&sb, " (%s", rev)
		if i.Dirty {
			sb.WriteString(", dirty")
		}
		if !i.BuildTime.IsZero() {
			fmt.Fprintf(&sb, ", %s", i.BuildTime.Format(time.RFC3339))
		}
		sb.WriteString(")")
	}
	fmt.Fprintf(&sb, " built with %s for %s/%s\n", i.Go, i.OS, i.Arch)
	return sb.String()
}

var info syncx.Lazy[Info]

// Version returns version information about the running binary.
func Version() Info { return info.Get(readInfo) }

func readInfo() Info {
	i := Info{
		Name: CmdName(),
		Go:   runtime.Version(),
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return i
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			i.Commit = s.Value
		case "vcs.modified":
			i.Dirty = s.Value == "true"
		case "vcs.time":
			i.BuildTime, _ = time.Parse(time.RFC3339, s.Value)
		}
	}
	return i
}

// CmdName returns the base name of the current binary, without the
// ".exe" suffix on Windows.
func CmdName() string {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	return strings.TrimSuffix(filepath.Base(exe), ".exe")
}
