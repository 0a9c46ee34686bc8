// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package cleaner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/includecleaner/execute"
	"go.chromium.org/infra/build/includecleaner/execute/executetest"
	"go.chromium.org/infra/build/includecleaner/reconcile"
	"go.chromium.org/infra/build/includecleaner/ui"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	fname := filepath.Join(dir, name)
	err := os.MkdirAll(filepath.Dir(fname), 0755)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(fname, []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	buf, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(buf)
}

func stdoutFake(stdout string) *executetest.Fake {
	return &executetest.Fake{
		RunFunc: func(ctx context.Context, cmd *execute.Cmd) executetest.Result {
			return executetest.Result{Stdout: stdout}
		},
	}
}

func TestOptionsCommand(t *testing.T) {
	opts := Options{
		Cleaner:   "third_party/llvm-build/Release+Asserts/bin/clang-include-cleaner",
		WorkDir:   "out/Default",
		ExtraArgs: []string{"-I../../a/", "-I../../b/"},
	}
	for _, tc := range []struct {
		modify bool
		want   []string
	}{
		{
			modify: true,
			want: []string{
				"third_party/llvm-build/Release+Asserts/bin/clang-include-cleaner",
				"-p", "out/Default",
				"--extra-arg=-I../../a/",
				"--extra-arg=-I../../b/",
				"--edit",
				"api/units/time_delta.cc",
			},
		},
		{
			modify: false,
			want: []string{
				"third_party/llvm-build/Release+Asserts/bin/clang-include-cleaner",
				"-p", "out/Default",
				"--extra-arg=-I../../a/",
				"--extra-arg=-I../../b/",
				"--print=changes",
				"api/units/time_delta.cc",
			},
		},
	} {
		opts.Modify = tc.modify
		got := opts.Command("api/units/time_delta.cc")
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Command modify=%t diff -want +got:\n%s", tc.modify, diff)
		}
	}
}

func TestApplyFile(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name        string
		content     string
		stdout      string
		wantContent string
		want        FileResult
	}{
		{
			name:        "no_modification",
			content:     "#include stuff",
			stdout:      "cleaner output",
			wantContent: "#include stuff",
			want: FileResult{
				File:   "foo.cc",
				Output: "cleaner output",
			},
		},
		{
			name:        "content_modification",
			content:     `#include "libyuv/something.h"`,
			stdout:      "cleaner output",
			wantContent: `#include "third_party/libyuv/include/libyuv/something.h"`,
			want: FileResult{
				File:    "foo.cc",
				Output:  "cleaner output",
				Written: true,
			},
		},
		{
			name:        "gtest_output_modification",
			content:     `#include "test/gtest.h"`,
			stdout:      "+ \"gtest/gtest.h\"\n",
			wantContent: `#include "test/gtest.h"`,
			want: FileResult{
				File: "foo.cc",
			},
		},
		{
			name:        "gtest_output_no_modification",
			content:     "#include stuff",
			stdout:      "+ \"gtest/gtest.h\"\n",
			wantContent: "#include stuff",
			want: FileResult{
				File:   "foo.cc",
				Output: `+ "gtest/gtest.h"`,
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "foo.cc", tc.content)
			fake := stdoutFake(tc.stdout)
			opts := Options{
				ExecRoot: dir,
				Cleaner:  "clang-include-cleaner",
				WorkDir:  "out/Default",
				Table:    reconcile.DefaultTable,
				Modify:   true,
			}
			got, err := ApplyFile(ctx, fake, opts, "foo.cc")
			if err != nil {
				t.Fatalf("ApplyFile=_, %v; want nil err", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ApplyFile diff -want +got:\n%s", diff)
			}
			if n := len(fake.Cmds()); n != 1 {
				t.Errorf("ran %d cmds; want 1", n)
			}
			if got := readFile(t, dir, "foo.cc"); got != tc.wantContent {
				t.Errorf("foo.cc=%q; want %q", got, tc.wantContent)
			}
		})
	}
}

func TestApplyFile_printMode(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	const content = "#include \"gtest/gtest.h\"\n"
	writeFile(t, dir, "foo_unittest.cc", content)
	fake := stdoutFake("+ <sys/socket.h>\n")
	opts := Options{
		ExecRoot: dir,
		Cleaner:  "clang-include-cleaner",
		WorkDir:  "out/Default",
		Table:    reconcile.DefaultTable,
	}
	got, err := ApplyFile(ctx, fake, opts, "foo_unittest.cc")
	if err != nil {
		t.Fatalf("ApplyFile=_, %v; want nil err", err)
	}
	if got.Written || !got.HasChanges() || got.Output != "+ <sys/socket.h>" {
		t.Errorf("ApplyFile=%#v; want not written with changes", got)
	}
	if got := readFile(t, dir, "foo_unittest.cc"); got != content {
		t.Errorf("foo_unittest.cc=%q; want unchanged %q", got, content)
	}
	cmds := fake.Cmds()
	if len(cmds) != 1 || cmds[0].Args[len(cmds[0].Args)-2] != "--print=changes" {
		t.Errorf("cmds=%v; want --print=changes", cmds)
	}
}

func TestApplyFile_toolFailure(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "foo.cc", "#include <sys/socket.h>\n")
	fake := &executetest.Fake{
		RunFunc: func(ctx context.Context, cmd *execute.Cmd) executetest.Result {
			return executetest.Result{
				Stderr:   "error: no compile command for foo.cc\n",
				ExitCode: 1,
			}
		},
	}
	opts := Options{
		ExecRoot: dir,
		Cleaner:  "clang-include-cleaner",
		WorkDir:  "out/Default",
		Table:    reconcile.DefaultTable,
		Modify:   true,
	}
	got, err := ApplyFile(ctx, fake, opts, "foo.cc")
	if err != nil {
		t.Fatalf("ApplyFile=_, %v; want nil err", err)
	}
	var eerr *execute.ExitError
	if !errors.As(got.ToolErr, &eerr) || eerr.ExitCode != 1 {
		t.Errorf("ToolErr=%v; want exit=1", got.ToolErr)
	}
	if !strings.Contains(got.ToolErr.Error(), "no compile command for foo.cc") {
		t.Errorf("ToolErr=%v; want stderr in error", got.ToolErr)
	}
	// reconciliation still runs.
	if !got.Written {
		t.Errorf("Written=false; want true")
	}
	if got, want := readFile(t, dir, "foo.cc"), "#include \"rtc_base/net_helpers.h\"\n"; got != want {
		t.Errorf("foo.cc=%q; want %q", got, want)
	}
}

func TestApplyFile_errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	opts := Options{
		ExecRoot: dir,
		Cleaner:  "clang-include-cleaner",
		WorkDir:  "out/Default",
	}

	_, err := ApplyFile(ctx, &executetest.Fake{}, opts, "missing.cc")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ApplyFile(missing.cc)=_, %v; want not exist", err)
	}

	writeFile(t, dir, "foo.cc", "")
	runErr := errors.New("exec: not found")
	fake := &executetest.Fake{
		RunFunc: func(ctx context.Context, cmd *execute.Cmd) executetest.Result {
			return executetest.Result{Err: runErr}
		},
	}
	_, err = ApplyFile(ctx, fake, opts, "foo.cc")
	if !errors.Is(err, runErr) {
		t.Errorf("ApplyFile=_, %v; want %v", err, runErr)
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	var files []string
	for i := range 8 {
		name := fmt.Sprintf("src/file%d.cc", i)
		writeFile(t, dir, name, "#include stuff\n")
		files = append(files, name)
	}
	fake := &executetest.Fake{
		RunFunc: func(ctx context.Context, cmd *execute.Cmd) executetest.Result {
			file := cmd.Args[len(cmd.Args)-1]
			// finish in reverse order.
			var i int
			fmt.Sscanf(filepath.Base(file), "file%d.cc", &i)
			time.Sleep(time.Duration(8-i) * time.Millisecond)
			if i%2 == 0 {
				return executetest.Result{}
			}
			return executetest.Result{Stdout: "- " + file + "\n"}
		},
	}
	opts := Options{
		ExecRoot: dir,
		Cleaner:  "clang-include-cleaner",
		WorkDir:  "out/Default",
		Table:    reconcile.DefaultTable,
		Jobs:     4,
	}
	results, err := Apply(ctx, fake, opts, files)
	if err != nil {
		t.Fatalf("Apply=_, %v; want nil err", err)
	}
	var want []FileResult
	for i, file := range files {
		r := FileResult{File: file}
		if i%2 == 1 {
			r.Output = "- " + file
		}
		want = append(want, r)
	}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Errorf("Apply diff -want +got:\n%s", diff)
	}
	if !AnyChanges(results) {
		t.Errorf("AnyChanges=false; want true")
	}
	if AnyChanges(results[:1]) {
		t.Errorf("AnyChanges(%v)=true; want false", results[:1])
	}
}

func TestApply_error(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "a.cc", "")
	opts := Options{
		ExecRoot: dir,
		Cleaner:  "clang-include-cleaner",
		WorkDir:  "out/Default",
		Jobs:     1,
	}
	_, err := Apply(ctx, &executetest.Fake{}, opts, []string{"a.cc", "b.cc"})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Apply=_, %v; want not exist", err)
	}
}

func TestFileResultReport_color(t *testing.T) {
	var buf bytes.Buffer
	r := FileResult{File: "a.cc", Output: "a.cc:\n+ <memory>\n- <vector>"}
	r.Report(ui.NewTermUI(&buf))
	want := "a.cc:\n" + ui.SGR(ui.Green, "+ <memory>") + "\n" + ui.SGR(ui.Red, "- <vector>") + "\n"
	if got := buf.String(); got != want {
		t.Errorf("Report=%q; want %q", got, want)
	}
}

func TestFileResultReport(t *testing.T) {
	for _, tc := range []struct {
		name   string
		result FileResult
		want   string
	}{
		{
			name:   "no_changes",
			result: FileResult{File: "a.cc"},
			want:   "Successfully ran include cleaner on a.cc\n",
		},
		{
			name:   "changes",
			result: FileResult{File: "a.cc", Output: "+ <memory>\n- <vector>"},
			want:   "+ <memory>\n- <vector>\n",
		},
		{
			name: "tool_failure",
			result: FileResult{
				File:    "a.cc",
				ToolErr: errors.New("exit=1: boom"),
			},
			want: "Failed to run include cleaner on a.cc, stderr: exit=1: boom\nSuccessfully ran include cleaner on a.cc\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			tc.result.Report(ui.NewTermUI(&buf))
			got := ui.StripANSIEscapeCodes(buf.String())
			if got != tc.want {
				t.Errorf("Report=%q; want %q", got, tc.want)
			}
		})
	}
}
