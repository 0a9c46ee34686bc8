// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// DurationThreshold is a threshold of duration to show in spinner.
const DurationThreshold = 500 * time.Millisecond

// TermUI is a terminal-based UI.
type TermUI struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTermUI returns a terminal-based UI writing to w.
func NewTermUI(w io.Writer) *TermUI {
	return &TermUI{out: w}
}

func (t *TermUI) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

// Infof prints a message.
func (t *TermUI) Infof(format string, args ...any) {
	t.printf("%s\n", fmt.Sprintf(format, args...))
}

// Warningf prints a warning in yellow.
func (t *TermUI) Warningf(format string, args ...any) {
	t.printf("%s\n", SGR(Yellow, fmt.Sprintf(format, args...)))
}

// Errorf prints an error in red.
func (t *TermUI) Errorf(format string, args ...any) {
	t.printf("%s\n", SGR(Red, fmt.Sprintf(format, args...)))
}

// NewSpinner returns a terminal-based spinner.
func (t *TermUI) NewSpinner() Spinner {
	return &termSpinner{ui: t}
}

type termSpinner struct {
	ui         *TermUI
	quit, done chan struct{}
	started    time.Time
	msg        string
}

// Start starts the spinner.
func (s *termSpinner) Start(format string, args ...any) {
	s.started = time.Now()
	s.msg = fmt.Sprintf(format, args...)
	s.ui.printf("%s... ", s.msg)
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		const chars = `/-\|`
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for n := 0; ; n++ {
			select {
			case <-s.quit:
				return
			case <-ticker.C:
				s.ui.printf("\b%c", chars[n%len(chars)])
			}
		}
	}()
}

func (s *termSpinner) stop() time.Duration {
	close(s.quit)
	<-s.done
	return time.Since(s.started)
}

// Stop stops the spinner.
func (s *termSpinner) Stop(err error) {
	d := s.stop()
	if err != nil {
		s.ui.printf("\r\033[K%6s %s %s\n", FormatDuration(d), s.msg, SGR(Red, fmt.Sprintf("failed %v", err)))
		return
	}
	if d < DurationThreshold {
		// omit if duration is too short
		s.ui.printf("\r\033[K")
		return
	}
	s.ui.printf("\r\033[K%6s %s\n", FormatDuration(d), s.msg)
}

// Done finishes the spinner with message.
func (s *termSpinner) Done(format string, args ...any) {
	d := s.stop()
	s.ui.printf("\r\033[K%6s %s %s\n", FormatDuration(d), s.msg, fmt.Sprintf(format, args...))
}
