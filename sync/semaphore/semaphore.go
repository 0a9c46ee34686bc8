// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package semaphore provides a named counting semaphore.
package semaphore

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Semaphore limits the number of concurrent holders to its capacity.
type Semaphore struct {
	name  string
	slots chan struct{}

	waits atomic.Int64
	reqs  atomic.Int64
}

// New creates a new semaphore with name and capacity n.
// n less than 1 is treated as 1.
func New(name string, n int) *Semaphore {
	if n < 1 {
		n = 1
	}
	s := &Semaphore{
		name:  name,
		slots: make(chan struct{}, n),
	}
	return s
}

// WaitAcquire blocks until a slot is available or ctx is done.
// It returns func to release the slot. The func must be called
// exactly once if err is nil.
func (s *Semaphore) WaitAcquire(ctx context.Context) (func(), error) {
	s.waits.Add(1)
	defer s.waits.Add(-1)
	select {
	case s.slots <- struct{}{}:
		s.reqs.Add(1)
		return func() { <-s.slots }, nil
	case <-ctx.Done():
		return func() {}, fmt.Errorf("wait %s: %w", s.name, context.Cause(ctx))
	}
}

// Do runs f while holding a slot.
func (s *Semaphore) Do(ctx context.Context, f func(ctx context.Context) error) error {
	done, err := s.WaitAcquire(ctx)
	if err != nil {
		return err
	}
	defer done()
	return f(ctx)
}

// Name returns name of the semaphore.
func (s *Semaphore) Name() string {
	return s.name
}

// Capacity returns capacity of the semaphore.
func (s *Semaphore) Capacity() int {
	if s == nil {
		return 0
	}
	return cap(s.slots)
}

// NumServs returns number of slots currently held.
func (s *Semaphore) NumServs() int {
	return len(s.slots)
}

// NumWaits returns number of waiters.
func (s *Semaphore) NumWaits() int {
	return int(s.waits.Load())
}

// NumRequests returns total number of acquired requests.
func (s *Semaphore) NumRequests() int {
	return int(s.reqs.Load())
}
