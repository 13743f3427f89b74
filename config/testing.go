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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type staticSource struct {
	conf map[string]any
	err  error
}

func (s staticSource) Load(context.Context) (map[string]any, error) {
	return s.conf, s.err
}

// TestSource returns a source that always loads conf.
func TestSource(conf map[string]any) Source {
	return staticSource{conf: conf}
}

// TestSourceWithError returns a source whose Load fails with err.
func TestSourceWithError(err error) Source {
	return staticSource{err: err}
}

// TestConfigLoaded creates and loads a Config holding conf.
func TestConfigLoaded(t testing.TB, conf map[string]any) *Config {
	t.Helper()

	cfg, err := New(WithSource(TestSource(conf)))
	require.NoError(t, err, "failed to create test config")
	require.NoError(t, cfg.Load(context.Background()), "failed to load test config")
	return cfg
}

// TestFile writes content to a temporary file with the given name and
// returns its path.
func TestFile(t testing.TB, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600), "failed to create test file")
	return path
}
