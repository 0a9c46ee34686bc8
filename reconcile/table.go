// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package reconcile

import (
	"fmt"
	"strings"
)

// Pair is an entry of a substitution table.
// Undesired is an include target the cleaner may add, such as
// `"gtest/gtest.h"` or `<sys/socket.h>`, and Preferred is the target
// that should be used instead. Both are matched textually.
type Pair struct {
	Undesired string
	Preferred string
}

func (p Pair) String() string {
	return fmt.Sprintf("%s -> %s", p.Undesired, p.Preferred)
}

// Table is an ordered substitution table.
// Pairs are evaluated in order by Reconcile.
type Table []Pair

// DefaultTable is the substitution table for the webrtc source tree.
var DefaultTable = Table{
	{Undesired: `"gmock/gmock.h"`, Preferred: `"test/gmock.h"`},
	{Undesired: `"gtest/gtest.h"`, Preferred: `"test/gtest.h"`},
	{Undesired: `<sys/socket.h>`, Preferred: `"rtc_base/net_helpers.h"`},
	{Undesired: `"libyuv/`, Preferred: `"third_party/libyuv/include/libyuv/`},
}

// NewTable returns a table of pairs.
// It returns error if the same undesired target appears more than once.
func NewTable(pairs ...Pair) (Table, error) {
	seen := make(map[string]int, len(pairs))
	t := make(Table, 0, len(pairs))
	for i, p := range pairs {
		if j, ok := seen[p.Undesired]; ok {
			return nil, fmt.Errorf("duplicate substitution for %s at %d (first at %d)", p.Undesired, i, j)
		}
		seen[p.Undesired] = i
		t = append(t, p)
	}
	return t, nil
}

// Lookup returns preferred target for undesired.
func (t Table) Lookup(undesired string) (string, bool) {
	for _, p := range t {
		if p.Undesired == undesired {
			return p.Preferred, true
		}
	}
	return "", false
}

func (t Table) String() string {
	var sb strings.Builder
	for _, p := range t {
		fmt.Fprintln(&sb, p)
	}
	return sb.String()
}
