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

package dumper

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/scoped/config/codec"
)

func TestFile_Dump(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "effective.yaml")
	d := NewFileWithPermissions(path, codec.YAMLCodec{}, 0o600)

	values := map[string]any{"server": map[string]any{"addr": ":8080"}}
	require.NoError(t, d.Dump(context.Background(), values))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "addr")
	assert.Contains(t, string(data), ":8080")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFile_DumpEncoderError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "effective.env")
	err := NewFile(path, codec.EnvVarCodec{}).Dump(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.NoFileExists(t, path)
}
