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

// Package compiler parses route patterns into a normalized, comparable form.
//
// A pattern is a sequence of segments separated by '/':
//
//	/users            literal segment "users"
//	/users/:id        parameter capturing one non-empty segment
//	/files/*path      catch-all capturing the remainder of the path
//
// Capture names never influence matching. Two patterns that only differ in
// capture names have the same Key and therefore compete for the same slot in
// the recognizer:
//
//	compiler.MustCompile("/users/:id").Equal(compiler.MustCompile("/users/:name")) // true
//
// # Rules
//
//   - A catch-all must be the final segment.
//   - Capture names are unique within a pattern.
//   - Empty segments collapse; a trailing slash is kept and is significant.
//   - The pattern "*" is the asterisk-form request target of "OPTIONS *" and
//     cannot be joined under a non-root prefix.
//
// # Prefixes
//
// Scopes compose patterns with Join:
//
//	prefix := compiler.MustCompile("/api/v1")
//	full, err := prefix.Join(compiler.MustCompile("/users/:id"))
//	// full.String() == "/api/v1/users/:id"
//
// All errors are *PatternError values wrapping one of the package sentinels,
// so callers can use errors.Is:
//
//	_, err := compiler.Compile("/files/*path/meta")
//	errors.Is(err, compiler.ErrCatchAllNotLast) // true
package compiler
