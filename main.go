// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// include_cleaner runs clang-include-cleaner (iwyu replacement) on files
// in the webrtc source tree, and fixes up includes to the tree's conventions.
package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/includecleaner/subcmd/apply"
	"go.chromium.org/infra/build/includecleaner/subcmd/help"
	"go.chromium.org/infra/build/includecleaner/subcmd/mapping"
	"go.chromium.org/infra/build/includecleaner/subcmd/version"
)

const versionID = "v0.1.0"

var verbose bool

func getApplication() *cli.Application {
	return &cli.Application{
		Name:  "include_cleaner",
		Title: "Runs the include-cleaner tool on a list of files",
		Context: func(ctx context.Context) context.Context {
			return ctx
		},
		Commands: []*subcommands.Command{
			apply.Cmd(),
			mapping.Cmd(),

			help.Cmd(),
			version.Cmd(versionID),
		},
		EnvVars: map[string]subcommands.EnvVarDefinition{
			"INCLUDE_CLEANER_CONFIG": {
				ShortDesc: "starlark config file for apply and mapping",
			},
		},
	}
}

func main() {
	os.Exit(includeCleanerMain())
}

func includeCleanerMain() int {
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	flag.Usage = func() {
		subcommands.Usage(os.Stderr, getApplication(), false)
	}
	flag.Parse()
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.Fatalf("panic: %v\n%s", r, buf)
		}
	}()

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		log.Debugf("main module: %s %s go=%s", buildInfo.Main.Path, buildInfo.Main.Version, buildInfo.GoVersion)
	}
	return subcommands.Run(getApplication(), flag.Args())
}
