// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package recognizer maps request paths to registered route patterns.
//
// The recognizer is a radix tree whose static edges hold byte runs
// (slashes included), with at most one parameter child and one catch-all
// child per node. Static runs are split on insertion at the longest common
// prefix, so "/users" and "/uploads" share the "/u" node.
//
// Matching prefers literal edges over parameters and parameters over
// catch-alls, and backtracks when a preferred branch dead-ends:
//
//	r := recognizer.New()
//	_ = r.Insert(compiler.MustCompile("/users/new"), 0)
//	_ = r.Insert(compiler.MustCompile("/users/:id"), 1)
//
//	r.Recognize("/users/new").ID // 0
//	r.Recognize("/users/42").ID  // 1
//
// A path that matches nothing is either NotMatched or PartiallyMatched.
// The latter carries the ids registered below the deepest point the path
// reached, which callers use to decide which part of the application a
// request was aimed at:
//
//	_ = r.Insert(compiler.MustCompile("/c/d"), 2)
//	r.Recognize("/c").Candidates // [2]
//
// Captures are byte offsets into the recognized path; names are resolved by
// the caller from the pattern it registered.
package recognizer
