// Copyright 2021 FerretDB Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package version provides information about docmatch version and build configuration.
//
// # Extra files
//
// The following text files are embedded from this (`build/version`) directory:
//   - version.txt (required) contains information about the version in a format
//     similar to `git describe` output: `v<major>.<minor>.<patch>`.
//
// # Go build tags
//
// The following Go build tags (also known as build constraints) affect builds:
//
//	docmatch_debug - enables debug build (implied by builds with race detector)
package version

import (
	_ "embed"
	"runtime"
	runtimedebug "runtime/debug"
	"strconv"
	"strings"

	"github.com/FerretDB/docmatch/internal/util/debugbuild"
)

//go:embed version.txt
var versionTxt string

// Info provides details about the current build.
//
//nolint:vet // for readability
type Info struct {
	Version          string
	Commit           string
	Dirty            bool
	DebugBuild       bool
	BuildEnvironment map[string]string
}

// info singleton instance set by init().
var info *Info

// unknown is a placeholder for unknown commit value.
const unknown = "unknown"

// Get returns current build's info.
//
// It returns a shared instance without any synchronization.
func Get() *Info {
	return info
}

func init() {
	info = &Info{
		Version:    strings.TrimSpace(versionTxt),
		Commit:     unknown,
		DebugBuild: debugbuild.Enabled,
		BuildEnvironment: map[string]string{
			"go.runtime": runtime.Version(),
		},
	}

	buildInfo, ok := runtimedebug.ReadBuildInfo()
	if !ok {
		return
	}

	info.BuildEnvironment["go.version"] = buildInfo.GoVersion

	for _, s := range buildInfo.Settings {
		if s.Value == "" {
			continue
		}

		info.BuildEnvironment[s.Key] = s.Value

		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value

		case "vcs.modified":
			info.Dirty, _ = strconv.ParseBool(s.Value)

		case "-race":
			if raceEnabled, _ := strconv.ParseBool(s.Value); raceEnabled {
				info.DebugBuild = true
			}
		}
	}
}
