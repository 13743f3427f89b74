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

package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentCodecs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ  Type
		data string
	}{
		{typ: TypeYAML, data: "server:\n  addr: \":8080\"\n  h2c: true\n"},
		{typ: TypeTOML, data: "[server]\naddr = \":8080\"\nh2c = true\n"},
		{typ: TypeJSON, data: `{"server": {"addr": ":8080", "h2c": true}}`},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			t.Parallel()

			dec, err := GetDecoder(tt.typ)
			require.NoError(t, err)

			var conf map[string]any
			require.NoError(t, dec.Decode([]byte(tt.data), &conf))

			server, ok := conf["server"].(map[string]any)
			require.True(t, ok, "server should decode to a map, got %T", conf["server"])
			assert.Equal(t, ":8080", server["addr"])
			assert.Equal(t, true, server["h2c"])

			enc, err := GetEncoder(tt.typ)
			require.NoError(t, err)
			out, err := enc.Encode(conf)
			require.NoError(t, err)
			assert.Contains(t, string(out), ":8080")
		})
	}
}

func TestEnvVarCodec(t *testing.T) {
	t.Parallel()

	data := []byte(
		"SERVER__ADDR=:9090\n" +
			"SERVER__READ_TIMEOUT= 5s \n" +
			"DEBUG=true\n" +
			"MALFORMED\n" +
			"__=ignored\n",
	)

	var conf map[string]any
	require.NoError(t, EnvVarCodec{}.Decode(data, &conf))

	assert.Equal(t, map[string]any{
		"server": map[string]any{"addr": ":9090", "read_timeout": "5s"},
		"debug":  "true",
	}, conf)

	_, err := EnvVarCodec{}.Encode(conf)
	require.Error(t, err)

	var wrong map[string]string
	require.Error(t, EnvVarCodec{}.Decode(data, &wrong))
}

func TestEnvVarCodec_ScalarReplacedByNested(t *testing.T) {
	t.Parallel()

	var conf map[string]any
	require.NoError(t, EnvVarCodec{}.Decode([]byte("LOG=debug\nLOG__LEVEL=warn\n"), &conf))
	assert.Equal(t, map[string]any{"log": map[string]any{"level": "warn"}}, conf)
}

func TestCasterCodec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ     Type
		data    string
		want    any
		wantErr bool
	}{
		{typ: TypeCasterString, data: "hello", want: "hello"},
		{typ: TypeCasterInt, data: "42", want: 42},
		{typ: TypeCasterInt64, data: "42", want: int64(42)},
		{typ: TypeCasterFloat64, data: "0.25", want: 0.25},
		{typ: TypeCasterBool, data: "true", want: true},
		{typ: TypeCasterDuration, data: "30s", want: 30 * time.Second},
		{typ: TypeCasterInt, data: "forty-two", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ)+"/"+tt.data, func(t *testing.T) {
			t.Parallel()

			dec, err := GetDecoder(tt.typ)
			require.NoError(t, err)

			var got any
			err = dec.Decode([]byte(tt.data), &got)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_Unknown(t *testing.T) {
	t.Parallel()

	_, err := GetDecoder("ini")
	require.Error(t, err)
	_, err = GetEncoder(TypeEnvVar)
	require.Error(t, err, "env codec is decode-only")

	assert.Panics(t, func() { NewCaster("caster-complex") })
}
