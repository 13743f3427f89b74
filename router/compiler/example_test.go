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

//go:build !integration

package compiler_test

import (
	"errors"
	"fmt"

	"rivaas.dev/scoped/router/compiler"
)

// ExampleCompile demonstrates compiling a pattern with captures.
func ExampleCompile() {
	p, err := compiler.Compile("/users/:id/files/*path")
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("Pattern:", p)
	fmt.Println("Captures:", p.CaptureNames())
	// Output:
	// Pattern: /users/:id/files/*path
	// Captures: [id path]
}

// ExamplePattern_Join demonstrates prefix concatenation.
func ExamplePattern_Join() {
	prefix := compiler.MustCompile("/api/")
	full, _ := prefix.Join(compiler.MustCompile("/posts/:id"))

	fmt.Println(full)
	// Output: /api/posts/:id
}

// ExamplePattern_Render demonstrates building a concrete path.
func ExamplePattern_Render() {
	p := compiler.MustCompile("/:id/:name/*path")
	path, _ := p.Render(map[string]string{"id": "23", "name": "bob", "path": "path/to/file"})

	fmt.Println(path)
	// Output: /23/bob/path/to/file
}

// ExampleCompile_catchAllNotLast demonstrates error classification.
func ExampleCompile_catchAllNotLast() {
	_, err := compiler.Compile("/files/*path/meta")

	fmt.Println(errors.Is(err, compiler.ErrCatchAllNotLast))
	// Output: true
}
