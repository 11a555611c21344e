// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the release version, injected for release builds:
//
//	go build -ldflags "-X github.com/bureau-foundation/routines/lib/version.Version=1.2.0"
var Version = "0.1.0-dev"

// Info returns the one-line form: version, commit, and commit time.
func Info() string {
	commit, when, dirty := vcsStamp()
	return fmt.Sprintf("%s (%s%s, %s)", Version, commit, dirty, when)
}

// Full returns Info plus the Go toolchain and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// vcsStamp reads the commit identity the toolchain embedded at build
// time. Binaries without a stamp (go run, test binaries) report
// "unknown".
func vcsStamp() (commit, when, dirty string) {
	commit, when = "unknown", "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, when, dirty
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if len(setting.Value) > 12 {
				commit = setting.Value[:12]
			} else if setting.Value != "" {
				commit = setting.Value
			}
		case "vcs.time":
			when = setting.Value
		case "vcs.modified":
			if setting.Value == "true" {
				dirty = "-dirty"
			}
		}
	}
	return commit, when, dirty
}
