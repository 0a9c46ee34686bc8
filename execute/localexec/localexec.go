// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package localexec implements local command execution.
package localexec

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/includecleaner/execute"
	"go.chromium.org/infra/build/includecleaner/sync/semaphore"
)

// LocalExec implements execute.Executor interface that runs commands locally.
type LocalExec struct{}

// Run runs cmd with LocalExec.
func Run(ctx context.Context, cmd *execute.Cmd) error {
	return LocalExec{}.Run(ctx, cmd)
}

// forkSema limits concurrent process creation.
var forkSema = semaphore.New("fork", runtime.NumCPU())

// Run runs a cmd.
// It returns *execute.ExitError if the cmd exited with non-zero code,
// in which case stdout and stderr of the cmd are still available.
func (LocalExec) Run(ctx context.Context, cmd *execute.Cmd) error {
	if len(cmd.Args) == 0 {
		return fmt.Errorf("no arguments in the command. ID: %s", cmd.ID)
	}
	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Env = cmd.Env
	c.Dir = cmd.ExecRoot
	c.Stdout = cmd.StdoutWriter()
	c.Stderr = cmd.StderrWriter()

	started := time.Now()
	err := forkSema.Do(ctx, func(ctx context.Context) error {
		return c.Start()
	})
	if err == nil {
		err = c.Wait()
	}
	code, err := exitCode(err)
	if err != nil {
		return fmt.Errorf("failed to run %s: %w", cmd, err)
	}
	cmd.SetExitCode(code)
	log.Debugf("%s exit=%d stdout=%d stderr=%d %s", cmd, code, len(cmd.Stdout()), len(cmd.Stderr()), time.Since(started))
	if code != 0 {
		return &execute.ExitError{ExitCode: code}
	}
	return nil
}

// exitCode returns exit code for err from Start or Wait.
// It returns err as is if the process could not run at all.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var eerr *exec.ExitError
	if !errors.As(err, &eerr) {
		return 0, err
	}
	if code := eerr.ExitCode(); code >= 0 {
		return code, nil
	}
	// terminated by signal.
	return 1, nil
}
