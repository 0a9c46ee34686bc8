// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package executetest provides fake implementation of execute.Executor for test.
package executetest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.chromium.org/infra/build/includecleaner/execute"
)

// Result is a result of a fake run.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int

	// Err is returned as is when the process could not run.
	Err error
}

// Fake is a fake executor.
type Fake struct {
	// RunFunc returns a result for the cmd.
	// If nil, commands succeed with no output.
	RunFunc func(ctx context.Context, cmd *execute.Cmd) Result

	mu   sync.Mutex
	cmds []*execute.Cmd
}

// Run runs cmd on fake.
func (f *Fake) Run(ctx context.Context, cmd *execute.Cmd) error {
	f.mu.Lock()
	f.cmds = append(f.cmds, cmd)
	f.mu.Unlock()

	var r Result
	if f.RunFunc != nil {
		r = f.RunFunc(ctx, cmd)
	}
	if r.Err != nil {
		return r.Err
	}
	fmt.Fprint(cmd.StdoutWriter(), r.Stdout)
	fmt.Fprint(cmd.StderrWriter(), r.Stderr)
	cmd.SetExitCode(r.ExitCode)
	if r.ExitCode != 0 {
		return &execute.ExitError{ExitCode: r.ExitCode}
	}
	return nil
}

// Cmds returns cmds run on fake, in order of calls.
func (f *Fake) Cmds() []*execute.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.cmds)
}
