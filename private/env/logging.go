// Copyright 2019 ETH Zurich
// Copyright 2026 The fwnet Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package env

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/sdrfw/fwnet/pkg/log"
)

// LogAppStarted should be called by applications as soon as logging is
// initialized.
func LogAppStarted(svcType, elemID string) error {
	info := fmt.Sprintf("=====================> Service started %s %s\n"+
		"%s  %s\n  %s\n  %s\n",
		svcType,
		elemID,
		VersionInfo(),
		fmt.Sprintf("pid:           %d", os.Getpid()),
		fmt.Sprintf("euid/egid:     %d %d", os.Geteuid(), os.Getegid()),
		fmt.Sprintf("cmd line:      %q", os.Args),
	)
	log.Info(info)
	return nil
}

// LogAppStopped logs the end of the application.
func LogAppStopped(svcType, elemID string) {
	log.Info(fmt.Sprintf("=====================> Service stopped %s %s", svcType, elemID))
}

// VersionInfo returns the build information embedded by the Go toolchain.
func VersionInfo() string {
	version, revision, goVersion := "(unknown)", "(unknown)", "(unknown)"
	if bi, ok := debug.ReadBuildInfo(); ok {
		version = bi.Main.Version
		goVersion = bi.GoVersion
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				revision = s.Value
			}
		}
	}
	return fmt.Sprintf("  %s\n  %s\n  %s\n",
		fmt.Sprintf("Version:       %s", version),
		fmt.Sprintf("Revision:      %s", revision),
		fmt.Sprintf("Go version:    %s", goVersion),
	)
}
