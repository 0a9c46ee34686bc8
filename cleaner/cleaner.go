// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package cleaner runs clang-include-cleaner on source files and
// reconciles its results with the substitution table.
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/includecleaner/execute"
	"go.chromium.org/infra/build/includecleaner/reconcile"
	"go.chromium.org/infra/build/includecleaner/ui"
)

// Options are options to run the cleaner.
type Options struct {
	// ExecRoot is the source root. Relative paths are resolved from it.
	ExecRoot string

	// Cleaner is the path to clang-include-cleaner.
	Cleaner string

	// WorkDir is the gn out dir that has compile_commands.json.
	WorkDir string

	// ExtraArgs are passed to the cleaner as --extra-arg.
	ExtraArgs []string

	// Table is the substitution table.
	Table reconcile.Table

	// Modify makes the cleaner edit files, and reconciled
	// contents written back to the files.
	// Otherwise, the cleaner only prints changes.
	Modify bool

	// Jobs is the number of files processed concurrently.
	// Zero means runtime.NumCPU().
	Jobs int
}

// Command returns the cleaner command line for file.
func (o Options) Command(file string) []string {
	args := []string{o.Cleaner, "-p", o.WorkDir}
	for _, arg := range o.ExtraArgs {
		args = append(args, "--extra-arg="+arg)
	}
	if o.Modify {
		args = append(args, "--edit")
	} else {
		args = append(args, "--print=changes")
	}
	return append(args, file)
}

func (o Options) path(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(o.ExecRoot, file)
}

// FileResult is a result of the cleaner on a file.
type FileResult struct {
	File string

	// Output is the filtered cleaner output.
	Output string

	// Written reports whether the reconciled content was written to File.
	Written bool

	// ToolErr is set if the cleaner exited with non-zero status.
	// Output is filtered from the partial output in that case.
	ToolErr error
}

// HasChanges reports whether the cleaner proposed a change
// not satisfied by the substitution table.
func (r FileResult) HasChanges() bool {
	return strings.TrimSpace(r.Output) != ""
}

// Report reports r to u.
func (r FileResult) Report(u ui.UI) {
	if r.ToolErr != nil {
		u.Warningf("Failed to run include cleaner on %s, stderr: %v", r.File, r.ToolErr)
	}
	if r.HasChanges() {
		u.Infof("%s", colorChanges(r.Output))
		return
	}
	u.Infof("Successfully ran include cleaner on %s", r.File)
}

// colorChanges colors added lines in green and removed lines in red.
func colorChanges(output string) string {
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+ "):
			lines[i] = ui.SGR(ui.Green, line)
		case strings.HasPrefix(line, "- "):
			lines[i] = ui.SGR(ui.Red, line)
		}
	}
	return strings.Join(lines, "\n")
}

// ApplyFile runs the cleaner on file with ex, and reconciles the result.
// A non-zero exit of the cleaner is reported in FileResult.ToolErr.
// It returns error if the cleaner could not run, or the file could
// not be read or written.
func ApplyFile(ctx context.Context, ex execute.Executor, opts Options, file string) (FileResult, error) {
	result := FileResult{File: file}
	cmd := &execute.Cmd{
		ID:       "include-cleaner " + file,
		Args:     opts.Command(file),
		ExecRoot: opts.ExecRoot,
	}
	log.Debugf("run %s", cmd.Command())
	err := ex.Run(ctx, cmd)
	var eerr *execute.ExitError
	switch {
	case errors.As(err, &eerr):
		result.ToolErr = fmt.Errorf("%w: %s", err, strings.TrimSpace(string(cmd.Stderr())))
	case err != nil:
		return result, err
	}

	fname := opts.path(file)
	fi, err := os.Stat(fname)
	if err != nil {
		return result, err
	}
	buf, err := os.ReadFile(fname)
	if err != nil {
		return result, err
	}
	r := reconcile.Reconcile(string(buf), string(cmd.Stdout()), opts.Table, opts.Modify)
	result.Output = r.Output
	if opts.Modify && r.Modified {
		err = os.WriteFile(fname, []byte(r.Content), fi.Mode().Perm())
		if err != nil {
			return result, fmt.Errorf("failed to write %s: %w", file, err)
		}
		result.Written = true
	}
	log.Debugf("%s: written=%t changes=%t tool_err=%v", file, result.Written, result.HasChanges(), result.ToolErr)
	return result, nil
}

// Apply runs ApplyFile on files concurrently.
// Results are in the same order as files.
// It stops at the first error.
func Apply(ctx context.Context, ex execute.Executor, opts Options, files []string) ([]FileResult, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	results := make([]FileResult, len(files))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)
	for i, file := range files {
		eg.Go(func() error {
			r, err := ApplyFile(ctx, ex, opts, file)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			results[i] = r
			return nil
		})
	}
	err := eg.Wait()
	if err != nil {
		return nil, err
	}
	return results, nil
}

// AnyChanges reports whether any of results has changes.
func AnyChanges(results []FileResult) bool {
	for _, r := range results {
		if r.HasChanges() {
			return true
		}
	}
	return false
}
