// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package mapping is mapping subcommand to print the substitution table.
package mapping

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/includecleaner/config"
	"go.chromium.org/infra/build/includecleaner/reconcile"
	"go.chromium.org/infra/build/includecleaner/ui"
)

const usage = `print the include substitution table.

 $ include_cleaner mapping [-config <file>] [-json] [<include>...]

Pairs are printed in evaluation order as "undesired -> preferred".
If includes are given (e.g. '"gtest/gtest.h"'), only pairs for them
are printed, and it fails if some of them has no substitution.
`

// Cmd returns the Command for the `mapping` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "mapping [-config <file>] [-json] [<include>...]",
		ShortDesc: "print include substitution table",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	configFile string
	json       bool
}

func (c *run) init() {
	c.Flags.StringVar(&c.configFile, "config", os.Getenv("INCLUDE_CLEANER_CONFIG"), "starlark config file. can be set by $INCLUDE_CLEANER_CONFIG")
	c.Flags.BoolVar(&c.json, "json", false, "print in json")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, a.GetOut(), args)
	if err != nil {
		ui.Default.Errorf("Error: %v", err)
		return 1
	}
	return 0
}

type jsonPair struct {
	Undesired string `json:"undesired"`
	Preferred string `json:"preferred"`
}

func (c *run) run(ctx context.Context, w io.Writer, includes []string) error {
	cfg := config.Default()
	if c.configFile != "" {
		var err error
		cfg, err = config.Load(ctx, c.configFile)
		if err != nil {
			return err
		}
	}
	table, err := lookup(cfg.Table, includes)
	if err != nil {
		return err
	}
	if !c.json {
		_, err := fmt.Fprint(w, table)
		return err
	}
	pairs := make([]jsonPair, 0, len(table))
	for _, p := range table {
		pairs = append(pairs, jsonPair{Undesired: p.Undesired, Preferred: p.Preferred})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(pairs)
}

// lookup returns pairs in table for includes.
// It returns table as is if includes is empty.
func lookup(table reconcile.Table, includes []string) (reconcile.Table, error) {
	if len(includes) == 0 {
		return table, nil
	}
	var pairs reconcile.Table
	var missing []string
	for _, inc := range includes {
		preferred, ok := table.Lookup(inc)
		if !ok {
			missing = append(missing, inc)
			continue
		}
		pairs = append(pairs, reconcile.Pair{Undesired: inc, Preferred: preferred})
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("no substitution for %q", missing)
	}
	return pairs, nil
}
