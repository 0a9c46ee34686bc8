// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ui provides user interface functionalities.
package ui

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Spinner reports progress of a long operation.
type Spinner interface {
	// Start starts the spinner with the specified formatted string.
	Start(format string, args ...any)
	// Stop stops the spinner, outputting an error if provided.
	Stop(err error)
	// Done finishes the spinner with message.
	Done(format string, args ...any)
}

// UI is a user interface.
type UI interface {
	// Infof reports a message.
	Infof(format string, args ...any)
	// Warningf reports a warning.
	Warningf(format string, args ...any)
	// Errorf reports an error.
	Errorf(format string, args ...any)
	// NewSpinner returns a new spinner.
	NewSpinner() Spinner
}

// Default holds the default UI interface.
// Making changes to this variable after init is undefined behavior.
var Default UI

func init() {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		Default = NewTermUI(os.Stdout)
		return
	}
	Default = LogUI{}
}

// SGRCode is a code of select graphic rendition.
// https://en.wikipedia.org/wiki/ANSI_escape_code#SGR_(Select_Graphic_Rendition)_parameters
type SGRCode int

const (
	Bold SGRCode = iota
	Red
	Green
	Yellow
	Reset
)

var sgrEscSeq = map[SGRCode]string{
	Bold:   "\033[1m",
	Red:    "\033[31;1m",
	Green:  "\033[32m",
	Yellow: "\033[33m",
	Reset:  "\033[0m",
}

func (s SGRCode) String() string {
	return sgrEscSeq[s]
}

// SGR formats s in SGR (select graphic rendition).
func SGR(n SGRCode, s string) string {
	return fmt.Sprintf("%s%s%s", n, s, Reset)
}

// StripANSIEscapeCodes strips CSI escape sequences.
// A truncated sequence at the end of s is dropped.
func StripANSIEscapeCodes(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for {
		i := strings.IndexByte(s, '\033')
		if i < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		sb.WriteString(s[:i])
		s = s[i+1:]
		if !strings.HasPrefix(s, "[") {
			// not CSI. drop ESC only.
			continue
		}
		// CSI ends with a final byte in [@-~].
		j := strings.IndexFunc(s[1:], func(r rune) bool {
			return r >= '@' && r <= '~'
		})
		if j < 0 {
			return sb.String()
		}
		s = s[1+j+1:]
	}
}
