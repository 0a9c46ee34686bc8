// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package compdb bootstraps the compile database (compile_commands.json)
// used by clang tools.
package compdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/includecleaner/execute"
	"go.chromium.org/infra/build/includecleaner/ui"
)

// Filename is the name of the compile database in the work dir.
const Filename = "compile_commands.json"

// Generator is the script that writes the compile database of
// a gn out dir to stdout, relative to the source root.
const Generator = "tools/clang/scripts/generate_compdb.py"

// Ensure makes sure workDir has the compile database.
// workDir is relative to execRoot, or absolute.
// If it is missing, Ensure runs the generator with ex in execRoot and
// writes its stdout to the file. It reports whether it generated the file.
func Ensure(ctx context.Context, ex execute.Executor, execRoot, workDir string) (bool, error) {
	fname := filepath.Join(workDir, Filename)
	if !filepath.IsAbs(fname) {
		fname = filepath.Join(execRoot, fname)
	}
	fi, err := os.Stat(fname)
	switch {
	case err == nil && fi.Mode().IsRegular():
		log.Debugf("%s exists", fname)
		return false, nil
	case err == nil:
		return false, fmt.Errorf("%s is not a regular file: %s", fname, fi.Mode())
	case !os.IsNotExist(err):
		return false, err
	}

	spin := ui.Default.NewSpinner()
	spin.Start("Generating compile commands file")
	n, err := generate(ctx, ex, execRoot, workDir, fname)
	if err != nil {
		spin.Stop(err)
		return false, err
	}
	spin.Done("%d bytes", n)
	return true, nil
}

// generate writes the compile database to fname, and returns its size.
func generate(ctx context.Context, ex execute.Executor, execRoot, workDir, fname string) (int, error) {
	cmd := &execute.Cmd{
		ID:       "generate-compdb " + workDir,
		Args:     []string{Generator, "-p", workDir},
		ExecRoot: execRoot,
	}
	err := ex.Run(ctx, cmd)
	if err != nil {
		return 0, fmt.Errorf("failed to generate %s: %w\n%s", fname, err, cmd.Stderr())
	}
	// fname must not exist unless it is complete.
	tmp, err := os.CreateTemp(filepath.Dir(fname), Filename+".*")
	if err != nil {
		return 0, err
	}
	_, err = tmp.Write(cmd.Stdout())
	cerr := tmp.Close()
	if err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), fname)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("failed to write %s: %w", fname, err)
	}
	log.Debugf("generated %s", fname)
	return len(cmd.Stdout()), nil
}
