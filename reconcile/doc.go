// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package reconcile reconciles clang-include-cleaner results with
// the include conventions of the source tree.
//
// The cleaner knows nothing about project-local wrapper headers.
// For example, it adds `#include "gtest/gtest.h"` where the tree
// wants `#include "test/gtest.h"`. Reconcile rewrites such directives
// using a substitution table, and drops proposals from the cleaner
// report that the file already satisfies.
package reconcile
