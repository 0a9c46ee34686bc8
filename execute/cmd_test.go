// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package execute

import (
	"fmt"
	"testing"
)

func TestCmdCommand(t *testing.T) {
	for _, tc := range []struct {
		args []string
		want string
	}{
		{
			args: []string{"clang-include-cleaner", "-p", "out/Default", "--edit", "a.cc"},
			want: "clang-include-cleaner -p out/Default --edit a.cc",
		},
		{
			args: []string{"third_party/llvm-build/Release+Asserts/bin/clang-include-cleaner", "--extra-arg=-DFOO=a b"},
			want: "third_party/llvm-build/Release+Asserts/bin/clang-include-cleaner '--extra-arg=-DFOO=a b'",
		},
		{
			args: []string{"echo", "it's", ""},
			want: `echo 'it'\''s' ''`,
		},
	} {
		cmd := &Cmd{Args: tc.args}
		if got := cmd.Command(); got != tc.want {
			t.Errorf("Command()=%q; want %q", got, tc.want)
		}
	}
}

func TestCmdStdoutWriter(t *testing.T) {
	cmd := &Cmd{}
	fmt.Fprint(cmd.StdoutWriter(), "first")
	fmt.Fprint(cmd.StdoutWriter(), "second")
	if got, want := string(cmd.Stdout()), "second"; got != want {
		t.Errorf("Stdout()=%q; want %q", got, want)
	}
	fmt.Fprint(cmd.StderrWriter(), "oops")
	if got, want := string(cmd.Stderr()), "oops"; got != want {
		t.Errorf("Stderr()=%q; want %q", got, want)
	}
}
