// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package execute runs commands.
package execute

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
)

// Executor is an interface to run the cmd.
type Executor interface {
	Run(ctx context.Context, cmd *Cmd) error
}

// Cmd includes all the information required to run a tool command.
type Cmd struct {
	// ID is used as an identifier of the cmd in logs.
	// Example: "include-cleaner api/units/time_delta.cc"
	ID string

	// Args holds command line arguments.
	Args []string

	// Env specifies the environment of the process.
	// If nil, the process inherits the environment of the current process.
	Env []string

	// ExecRoot is the working directory of the cmd.
	ExecRoot string

	stdoutBuffer, stderrBuffer bytes.Buffer

	exitCode int
}

// String returns an ID of the cmd.
func (c *Cmd) String() string {
	return c.ID
}

// Command returns a command line string, quoting args as needed so it can
// be pasted into a shell.
func (c *Cmd) Command() string {
	args := make([]string, 0, len(c.Args))
	for _, arg := range c.Args {
		args = append(args, quote(arg))
	}
	return strings.Join(args, " ")
}

func quote(arg string) string {
	if arg == "" {
		return "''"
	}
	if !strings.ContainsAny(arg, " \t\n\"'\\$`*?;&|<>()[]{}!#~") {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

// StdoutWriter returns a writer to capture stdout.
// It also resets the captured stdout.
func (c *Cmd) StdoutWriter() io.Writer {
	c.stdoutBuffer.Reset()
	return &c.stdoutBuffer
}

// StderrWriter returns a writer to capture stderr.
// It also resets the captured stderr.
func (c *Cmd) StderrWriter() io.Writer {
	c.stderrBuffer.Reset()
	return &c.stderrBuffer
}

// Stdout returns stdout output of the cmd.
func (c *Cmd) Stdout() []byte {
	return c.stdoutBuffer.Bytes()
}

// Stderr returns stderr output of the cmd.
func (c *Cmd) Stderr() []byte {
	return c.stderrBuffer.Bytes()
}

// SetExitCode sets exit code of the cmd.
// It is called by executors.
func (c *Cmd) SetExitCode(code int) {
	c.exitCode = code
}

// ExitCode returns exit code of the cmd.
func (c *Cmd) ExitCode() int {
	return c.exitCode
}

// ExitError is an error of cmd exit.
type ExitError struct {
	ExitCode int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit=%d", e.ExitCode)
}
