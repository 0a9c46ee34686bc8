// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package help provides help subcommand.
package help

import (
	"flag"
	"fmt"

	"github.com/maruel/subcommands"
)

// Cmd returns the Command for the `help` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "help [<command>|-advanced]",
		ShortDesc: "prints help about a command",
		LongDesc:  "Prints commands and globally-available flags or help about a specific command.\nUse -advanced to display all commands.",
		CommandRun: func() subcommands.CommandRun {
			ret := &helpCmdRun{}
			ret.Flags.BoolVar(&ret.advanced, "advanced", false, "show advanced commands")
			return ret
		},
	}
}

var envVars = []struct {
	name, desc string
}{
	{name: "INCLUDE_CLEANER_CONFIG", desc: "default -config of apply and mapping"},
}

type helpCmdRun struct {
	subcommands.CommandRunBase
	advanced bool
}

func (h *helpCmdRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) == 0 {
		out := a.GetOut()
		subcommands.Usage(out, a, h.advanced)
		fmt.Fprintln(out, "Common flags accepted by all commands:")
		flag.CommandLine.SetOutput(out)
		flag.PrintDefaults()
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Environment variables:")
		for _, e := range envVars {
			fmt.Fprintf(out, "  %-24s %s\n", e.name, e.desc)
		}
		return 0
	}
	return subcommands.CmdHelp.CommandRun().Run(a, args, env)
}
