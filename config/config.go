// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config provides the configuration of include_cleaner.
//
// The built-in configuration is for the webrtc source tree.
// It can be overridden by a starlark file, e.g.
//
//	cleaner = "third_party/llvm-build/Release+Asserts/bin/clang-include-cleaner"
//	work_dir = "out/Debug"
//	extra_args = default_extra_args + ["-I../../third_party/abseil-cpp"]
//	mappings = default_mappings | {
//	    "<stdio.h>": "<cstdio>",
//	}
//
// Globals not set in the file keep their default values.
// `default_extra_args` and `default_mappings` are predeclared and frozen.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/charmbracelet/log"
	"go.starlark.net/starlark"

	"go.chromium.org/infra/build/includecleaner/reconcile"
)

const (
	// DefaultCleaner is the path of clang-include-cleaner built as part of
	// the clangd package, relative to the source root.
	DefaultCleaner = "third_party/llvm-build/Release+Asserts/bin/clang-include-cleaner"

	// DefaultWorkDir is the default gn out dir.
	DefaultWorkDir = "out/Default"
)

// DefaultExtraArgs are extra compiler args passed to the cleaner.
// gtest/gmock include dirs are not in compile commands of non-test targets.
var DefaultExtraArgs = []string{
	"-I../../third_party/googletest/src/googlemock/include/",
	"-I../../third_party/googletest/src/googletest/include/",
}

// Config is a configuration of include_cleaner.
type Config struct {
	// Cleaner is the path to clang-include-cleaner.
	Cleaner string

	// WorkDir is the gn out dir that has compile_commands.json.
	WorkDir string

	// ExtraArgs are passed to the cleaner as --extra-arg.
	ExtraArgs []string

	// Table is the substitution table to reconcile the cleaner results.
	Table reconcile.Table
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Cleaner:   DefaultCleaner,
		WorkDir:   DefaultWorkDir,
		ExtraArgs: slices.Clone(DefaultExtraArgs),
		Table:     slices.Clone(reconcile.DefaultTable),
	}
}

// Load loads a configuration from the starlark file fname.
func Load(ctx context.Context, fname string) (*Config, error) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	return Parse(ctx, fname, buf)
}

// Parse parses a configuration from starlark src.
// fname is used for error messages.
func Parse(ctx context.Context, fname string, src []byte) (*Config, error) {
	thread := &starlark.Thread{
		Name: "config",
		Print: func(thread *starlark.Thread, msg string) {
			log.Infof("thread:%s %s", thread.Name, msg)
		},
	}
	globals, err := starlark.ExecFile(thread, fname, src, predeclared())
	if err != nil {
		var eerr *starlark.EvalError
		if errors.As(err, &eerr) {
			log.Warnf("stacktrace:\n%s", eerr.Backtrace())
		}
		return nil, fmt.Errorf("failed to exec %s: %w", fname, err)
	}
	cfg := Default()
	if v, ok := globals["cleaner"]; ok {
		cfg.Cleaner, err = toString(v)
		if err != nil {
			return nil, fmt.Errorf("%s: cleaner: %w", fname, err)
		}
	}
	if v, ok := globals["work_dir"]; ok {
		cfg.WorkDir, err = toString(v)
		if err != nil {
			return nil, fmt.Errorf("%s: work_dir: %w", fname, err)
		}
	}
	if v, ok := globals["extra_args"]; ok {
		cfg.ExtraArgs, err = toStrings(v)
		if err != nil {
			return nil, fmt.Errorf("%s: extra_args: %w", fname, err)
		}
	}
	if v, ok := globals["mappings"]; ok {
		cfg.Table, err = toTable(v)
		if err != nil {
			return nil, fmt.Errorf("%s: mappings: %w", fname, err)
		}
	}
	log.Debugf("config %s: cleaner=%q work_dir=%q extra_args=%q mappings=%d", fname, cfg.Cleaner, cfg.WorkDir, cfg.ExtraArgs, len(cfg.Table))
	return cfg, nil
}

func predeclared() starlark.StringDict {
	args := make([]starlark.Value, 0, len(DefaultExtraArgs))
	for _, a := range DefaultExtraArgs {
		args = append(args, starlark.String(a))
	}
	extraArgs := starlark.NewList(args)
	extraArgs.Freeze()

	mappings := starlark.NewDict(len(reconcile.DefaultTable))
	for _, p := range reconcile.DefaultTable {
		// SetKey never fails for string keys on an unfrozen dict.
		_ = mappings.SetKey(starlark.String(p.Undesired), starlark.String(p.Preferred))
	}
	mappings.Freeze()

	return starlark.StringDict{
		"default_cleaner":    starlark.String(DefaultCleaner),
		"default_work_dir":   starlark.String(DefaultWorkDir),
		"default_extra_args": extraArgs,
		"default_mappings":   mappings,
	}
}

func toString(v starlark.Value) (string, error) {
	s, ok := starlark.AsString(v)
	if !ok {
		return "", fmt.Errorf("want string, got %s", v.Type())
	}
	return s, nil
}

func toStrings(v starlark.Value) ([]string, error) {
	var seq starlark.Indexable
	switch v := v.(type) {
	case *starlark.List:
		seq = v
	case starlark.Tuple:
		seq = v
	default:
		return nil, fmt.Errorf("want list of strings, got %s", v.Type())
	}
	ret := make([]string, 0, seq.Len())
	for i := range seq.Len() {
		s, err := toString(seq.Index(i))
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		ret = append(ret, s)
	}
	return ret, nil
}

func toTable(v starlark.Value) (reconcile.Table, error) {
	d, ok := v.(*starlark.Dict)
	if !ok {
		return nil, fmt.Errorf("want dict, got %s", v.Type())
	}
	var pairs []reconcile.Pair
	for _, item := range d.Items() {
		undesired, err := toString(item[0])
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", item[0], err)
		}
		preferred, err := toString(item[1])
		if err != nil {
			return nil, fmt.Errorf("value for %s: %w", item[0], err)
		}
		pairs = append(pairs, reconcile.Pair{Undesired: undesired, Preferred: preferred})
	}
	return reconcile.NewTable(pairs...)
}
