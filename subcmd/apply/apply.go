// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package apply is apply subcommand to run clang-include-cleaner on files.
package apply

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/includecleaner/cleaner"
	"go.chromium.org/infra/build/includecleaner/compdb"
	"go.chromium.org/infra/build/includecleaner/config"
	"go.chromium.org/infra/build/includecleaner/execute"
	"go.chromium.org/infra/build/includecleaner/execute/localexec"
	"go.chromium.org/infra/build/includecleaner/ui"
)

const usage = `run the include-cleaner tool (iwyu replacement) on a list of files.

 $ include_cleaner apply [-C <dir>] [-print] [-check_for_changes] <file>...

In order to handle include paths correctly, you need a compile DB
(aka compile_commands.json) in the gn work dir. If it doesn't exist,
it is generated by tools/clang/scripts/generate_compdb.py.

clang-include-cleaner is built as part of the "clangd" package in the
LLVM build. Add '"checkout_clangd": True' to 'custom_vars' in your
.gclient file and run 'gclient sync'.

Exit status is 1 if -check_for_changes is set and the cleaner
generated changes.
`

// Exit codes.
const (
	exitOK      = 0
	exitChanges = 1
	exitError   = 2
)

// Cmd returns the Command for the `apply` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "apply [-C <dir>] [-print] [-check_for_changes] <file>...",
		ShortDesc: "run include cleaner on files",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{
				executor: localexec.LocalExec{},
			}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	executor execute.Executor

	dir             string
	configFile      string
	cleanerPath     string
	print           bool
	checkForChanges bool
	jobs            int
}

func (c *run) init() {
	c.Flags.StringVar(&c.dir, "C", "", `gn work dir. default "out/Default" or work_dir in -config`)
	c.Flags.StringVar(&c.configFile, "config", os.Getenv("INCLUDE_CLEANER_CONFIG"), "starlark config file. can be set by $INCLUDE_CLEANER_CONFIG")
	c.Flags.StringVar(&c.cleanerPath, "cleaner", "", "path to clang-include-cleaner. overrides cleaner in -config")
	c.Flags.BoolVar(&c.print, "print", false, "don't modify the files, just print the changes")
	c.Flags.BoolVar(&c.checkForChanges, "check_for_changes", false, `checks whether include-cleaner generated changes and exit with 1 in case it did.
used for bot validation that the current commit did not introduce an include regression.`)
	c.Flags.IntVar(&c.jobs, "j", runtime.NumCPU(), "number of files to process in parallel")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	changes, err := c.run(ctx, args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		default:
			ui.Default.Errorf("Error: %v", err)
		}
	}
	return c.exitCode(changes, err)
}

func (c *run) exitCode(changes bool, err error) int {
	switch {
	case err != nil:
		return exitError
	case changes && c.checkForChanges:
		return exitChanges
	}
	return exitOK
}

// run returns true if the cleaner generated changes.
func (c *run) run(ctx context.Context, args []string) (bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	cfg := config.Default()
	if c.configFile != "" {
		var err error
		cfg, err = config.Load(ctx, c.configFile)
		if err != nil {
			return false, err
		}
	}
	if c.cleanerPath != "" {
		cfg.Cleaner = c.cleanerPath
	}
	if c.dir != "" {
		cfg.WorkDir = c.dir
	}

	execRoot, err := os.Getwd()
	if err != nil {
		return false, err
	}
	if !cleanerExists(execRoot, cfg.Cleaner) {
		ui.Default.Warningf("clang-include-cleaner not found in %s", cfg.Cleaner)
		ui.Default.Warningf(`Add '"checkout_clangd": True' to 'custom_vars' in your .gclient file and run 'gclient sync'.`)
	}
	files, err := validateArgs(cfg.WorkDir, args)
	if err != nil {
		return false, err
	}

	_, err = compdb.Ensure(ctx, c.executor, execRoot, cfg.WorkDir)
	if err != nil {
		return false, err
	}

	opts := cleaner.Options{
		ExecRoot:  execRoot,
		Cleaner:   cfg.Cleaner,
		WorkDir:   cfg.WorkDir,
		ExtraArgs: cfg.ExtraArgs,
		Table:     cfg.Table,
		Modify:    !c.print && !c.checkForChanges,
		Jobs:      c.jobs,
	}
	log.Infof("cleaner=%s work_dir=%s modify=%t files=%d", opts.Cleaner, opts.WorkDir, opts.Modify, len(files))
	results, err := cleaner.Apply(ctx, c.executor, opts, files)
	if err != nil {
		return false, err
	}
	for _, r := range results {
		r.Report(ui.Default)
	}
	ui.Default.Infof("%s Check diff, compile, gn gen --check (tools_webrtc/gn_check_autofix.py can fix most of the issues)", ui.SGR(ui.Bold, "Finished."))
	ui.Default.Infof("and git cl format before uploading.")
	return cleaner.AnyChanges(results), nil
}

// cleanerExists reports whether cleaner is found.
// cleaner without path separator is looked up in $PATH.
func cleanerExists(execRoot, cleaner string) bool {
	if !strings.ContainsRune(cleaner, '/') && !strings.ContainsRune(cleaner, filepath.Separator) {
		_, err := exec.LookPath(cleaner)
		return err == nil
	}
	if !filepath.IsAbs(cleaner) {
		cleaner = filepath.Join(execRoot, cleaner)
	}
	_, err := os.Stat(cleaner)
	return err == nil
}

// validateArgs checks workDir is an existing dir and
// args are existing files. It returns args without duplicates,
// in the order of first appearance.
func validateArgs(workDir string, args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no files: %w", flag.ErrHelp)
	}
	fi, err := os.Stat(workDir)
	if err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("dir path %s does not exist: %w", workDir, flag.ErrHelp)
	}
	var files, missing []string
	seen := make(map[string]bool)
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil || !fi.Mode().IsRegular() {
			missing = append(missing, arg)
			continue
		}
		// same file must not be edited concurrently.
		key := filepath.Clean(arg)
		if seen[key] {
			log.Debugf("skip duplicate %s", arg)
			continue
		}
		seen[key] = true
		files = append(files, arg)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("file path %s does not exist: %w", strings.Join(missing, ", "), flag.ErrHelp)
	}
	return files, nil
}
