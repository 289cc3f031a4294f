// Package compileinfo reports the VCS stamp that the Go toolchain embeds in
// every binary built from a checkout.
package compileinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
)

type CompileInfo struct {
	Tool       string
	Module     string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool
}

func (c CompileInfo) String() string {
	commit := "an unknown commit"
	if c.Commit != "" {
		commit = "commit " + c.Commit
		if c.CommitTime != "" {
			commit += " (" + c.CommitTime + ")"
		}
	}

	dirty := ""
	if c.Modified {
		dirty = " with uncommitted changes"
	}

	return fmt.Sprintf("%s from %s was built with %s at %s%s", c.Tool, c.Module, c.GoVersion, commit, dirty)
}

func Get() CompileInfo {
	out := CompileInfo{
		Tool: filepath.Base(os.Args[0]),
	}

	z, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	out.GoVersion = z.GoVersion
	out.Module = z.Main.Path
	for _, s := range z.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

func PrintToStdErr() {
	fmt.Fprintln(os.Stderr, Get())
}
