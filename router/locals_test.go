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

package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalKey(t *testing.T) {
	t.Parallel()

	userKey := NewLocalKey[string]("user")
	countKey := NewLocalKey[int]("count")
	in := &Input{}

	_, ok := userKey.Get(in)
	assert.False(t, ok)

	require.NoError(t, userKey.Insert(in, "alice"))
	require.ErrorIs(t, userKey.Insert(in, "bob"), ErrLocalExists, "insert is write-once")

	v, ok := userKey.Get(in)
	require.True(t, ok)
	assert.Equal(t, "alice", v)
	assert.Equal(t, "alice", userKey.MustGet(in))

	_, ok = countKey.Get(in)
	assert.False(t, ok, "keys are distinct even when names collide by type")

	old, had := userKey.Replace(in, "carol")
	assert.True(t, had)
	assert.Equal(t, "alice", old)
	assert.Equal(t, "carol", userKey.MustGet(in))

	old, had = userKey.Remove(in)
	assert.True(t, had)
	assert.Equal(t, "carol", old)

	assert.PanicsWithValue(t, `router: missing local value "user"`, func() {
		userKey.MustGet(in)
	})
	assert.Equal(t, "user", userKey.String())
}

func TestLocalKey_SameName(t *testing.T) {
	t.Parallel()

	a := NewLocalKey[string]("id")
	b := NewLocalKey[string]("id")
	in := &Input{}

	require.NoError(t, a.Insert(in, "from a"))
	require.NoError(t, b.Insert(in, "from b"))
	assert.Equal(t, "from a", a.MustGet(in))
	assert.Equal(t, "from b", b.MustGet(in))
}
