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

package router

import "fmt"

// LocalKey identifies a typed request-local value.
//
// Keys compare by identity, so two keys with the same name and type are
// still distinct. Declare keys once at package level:
//
//	var userKey = router.NewLocalKey[*User]("user")
//
//	func authenticate(in *router.Input) error {
//	    return userKey.Insert(in, lookupUser(in))
//	}
//
//	func profile(in *router.Input) (*router.Output, error) {
//	    user := userKey.MustGet(in)
//	    ...
//	}
type LocalKey[T any] struct {
	name string
}

// NewLocalKey returns a new key. The name is only used in messages.
func NewLocalKey[T any](name string) *LocalKey[T] {
	return &LocalKey[T]{name: name}
}

// String returns the key name.
func (k *LocalKey[T]) String() string {
	return k.name
}

// Get returns the value stored under k.
func (k *LocalKey[T]) Get(in *Input) (T, bool) {
	v, ok := in.locals[k]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// MustGet returns the value stored under k.
// A missing value is a programming error and panics.
func (k *LocalKey[T]) MustGet(in *Input) T {
	v, ok := k.Get(in)
	if !ok {
		panic(fmt.Sprintf("router: missing local value %q", k.name))
	}
	return v
}

// Insert stores v under k. Values are write-once: inserting into an
// occupied key fails with ErrLocalExists and keeps the existing value.
func (k *LocalKey[T]) Insert(in *Input, v T) error {
	if _, ok := in.locals[k]; ok {
		return fmt.Errorf("%w: %q", ErrLocalExists, k.name)
	}
	if in.locals == nil {
		in.locals = make(map[any]any)
	}
	in.locals[k] = v
	return nil
}

// Replace stores v under k and returns the previous value, if any.
func (k *LocalKey[T]) Replace(in *Input, v T) (T, bool) {
	old, had := k.Get(in)
	if in.locals == nil {
		in.locals = make(map[any]any)
	}
	in.locals[k] = v
	return old, had
}

// Remove deletes the value stored under k and returns it.
func (k *LocalKey[T]) Remove(in *Input) (T, bool) {
	old, had := k.Get(in)
	delete(in.locals, k)
	return old, had
}
