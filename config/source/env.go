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

package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"rivaas.dev/scoped/config/codec"
)

// OSEnvVar loads environment variables that start with a prefix. The
// prefix is stripped and "__" separates nesting levels:
//
//	SCOPED_SERVER__ADDR=:9090        -> server.addr = ":9090"
//	SCOPED_LOGGING__LEVEL=debug      -> logging.level = "debug"
//	SCOPED_SERVER__READ_TIMEOUT=5s   -> server.read_timeout = "5s"
type OSEnvVar struct {
	prefix  string
	environ func() []string
	decoder codec.Decoder
}

// NewOSEnvVar returns a source for the variables starting with prefix.
func NewOSEnvVar(prefix string) *OSEnvVar {
	return &OSEnvVar{prefix: prefix, environ: os.Environ, decoder: codec.EnvVarCodec{}}
}

// Load implements config.Source.
func (e *OSEnvVar) Load(context.Context) (map[string]any, error) {
	var b strings.Builder
	for _, kv := range e.environ() {
		rest, ok := strings.CutPrefix(kv, e.prefix)
		if !ok {
			continue
		}
		b.WriteString(rest)
		b.WriteByte('\n')
	}

	var conf map[string]any
	if err := e.decoder.Decode([]byte(b.String()), &conf); err != nil {
		return nil, fmt.Errorf("failed to decode environment variables: %w", err)
	}
	return conf, nil
}
