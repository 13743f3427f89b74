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
	"path"

	"github.com/hashicorp/consul/api"

	"rivaas.dev/scoped/config/codec"
)

// ConsulKV is the subset of the Consul KV API used by [Consul].
type ConsulKV interface {
	Get(key string, q *api.QueryOptions) (*api.KVPair, *api.QueryMeta, error)
}

// Consul loads configuration from one key of Consul's key-value store.
//
// Document decoders (YAML, TOML, JSON) decode the value as a whole. Caster
// decoders decode a scalar and store it under the last element of the key,
// so "scoped/server/addr" becomes {"addr": value}.
type Consul struct {
	kv      ConsulKV
	key     string
	decoder codec.Decoder
}

// NewConsul returns a source for key. When kv is nil a client is created
// from the standard CONSUL_HTTP_ADDR and CONSUL_HTTP_TOKEN variables.
func NewConsul(key string, decoder codec.Decoder, kv ConsulKV) (*Consul, error) {
	if kv == nil {
		client, err := api.NewClient(api.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to create consul client: %w", err)
		}
		kv = client.KV()
	}
	return &Consul{kv: kv, key: key, decoder: decoder}, nil
}

// Load implements config.Source. A missing key loads as empty configuration.
func (c *Consul) Load(ctx context.Context) (map[string]any, error) {
	pair, _, err := c.kv.Get(c.key, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get consul key %q: %w", c.key, err)
	}
	if pair == nil {
		return map[string]any{}, nil
	}

	if caster, ok := c.decoder.(*codec.CasterCodec); ok {
		var val any
		if err := caster.Decode(pair.Value, &val); err != nil {
			return nil, fmt.Errorf("failed to decode consul value: %w", err)
		}
		return map[string]any{path.Base(pair.Key): val}, nil
	}

	var conf map[string]any
	if err := c.decoder.Decode(pair.Value, &conf); err != nil {
		return nil, fmt.Errorf("failed to decode consul value: %w", err)
	}
	return conf, nil
}
