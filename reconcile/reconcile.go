// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package reconcile

import (
	"strings"

	"github.com/charmbracelet/log"
)

const includePrefix = "#include "

// Result is a result of Reconcile.
type Result struct {
	// Content is the file content after reconciliation.
	Content string

	// Output is the cleaner output after filtering, with
	// surrounding whitespace trimmed.
	Output string

	// Modified reports whether Content differs from the input content.
	Modified bool
}

// HasChanges reports whether the cleaner output still proposes
// a change after filtering.
func (r Result) HasChanges() bool {
	return strings.TrimSpace(r.Output) != ""
}

// Reconcile applies table to content and output of the cleaner.
//
// For each pair, in order:
//   - if Preferred appears anywhere in content, `+ Undesired` lines are
//     removed from output, and, if modify, `#include Undesired` lines
//     are removed from content.
//   - otherwise, if modify, `#include Undesired` at the start of a line
//     is rewritten to `#include Preferred`, keeping the rest of the line.
//
// Each pair sees the content as modified by the pairs before it.
func Reconcile(content, output string, table Table, modify bool) Result {
	newContent := content
	output = strings.TrimSpace(output)
	for _, p := range table {
		directive := includePrefix + p.Undesired
		if strings.Contains(newContent, p.Preferred) {
			output = dropAddition(output, "+ "+strings.ReplaceAll(p.Undesired, includePrefix, ""))
			if modify {
				newContent = removeLines(newContent, directive)
			}
			log.Debugf("%s: already satisfied", p)
			continue
		}
		if modify {
			newContent = rewriteLines(newContent, directive, includePrefix+p.Preferred)
		}
	}
	return Result{
		Content:  newContent,
		Output:   strings.TrimSpace(output),
		Modified: newContent != content,
	}
}

// dropAddition removes lines equal to addition from the cleaner output.
func dropAddition(output, addition string) string {
	lines := strings.Split(output, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) == addition {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// removeLines removes lines starting with prefix, including
// their line terminators.
func removeLines(content, prefix string) string {
	lines := strings.SplitAfter(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(line, prefix) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "")
}

// rewriteLines replaces prefix with repl in lines starting with prefix.
func rewriteLines(content, prefix, repl string) string {
	lines := strings.SplitAfter(content, "\n")
	for i, line := range lines {
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			lines[i] = repl + rest
		}
	}
	return strings.Join(lines, "")
}
