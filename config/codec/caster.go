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

package codec

import (
	"fmt"

	"github.com/spf13/cast"
)

// Caster types decode a single scalar value, such as one Consul key
// holding "30s" or "true", rather than a document.
const (
	TypeCasterString   Type = "caster-string"
	TypeCasterInt      Type = "caster-int"
	TypeCasterInt64    Type = "caster-int64"
	TypeCasterFloat64  Type = "caster-float64"
	TypeCasterBool     Type = "caster-bool"
	TypeCasterDuration Type = "caster-duration"
	TypeCasterTime     Type = "caster-time"
)

var casters = map[Type]func(any) (any, error){
	TypeCasterString:   func(v any) (any, error) { return cast.ToStringE(v) },
	TypeCasterInt:      func(v any) (any, error) { return cast.ToIntE(v) },
	TypeCasterInt64:    func(v any) (any, error) { return cast.ToInt64E(v) },
	TypeCasterFloat64:  func(v any) (any, error) { return cast.ToFloat64E(v) },
	TypeCasterBool:     func(v any) (any, error) { return cast.ToBoolE(v) },
	TypeCasterDuration: func(v any) (any, error) { return cast.ToDurationE(v) },
	TypeCasterTime:     func(v any) (any, error) { return cast.ToTimeE(v) },
}

func init() {
	for typ := range casters {
		RegisterDecoder(typ, NewCaster(typ))
	}
}

// CasterCodec decodes raw bytes into a single typed value.
type CasterCodec struct {
	typ Type
	fn  func(any) (any, error)
}

// NewCaster returns the caster registered as typ. It panics for a type that
// is not one of the TypeCaster constants.
func NewCaster(typ Type) *CasterCodec {
	fn, ok := casters[typ]
	if !ok {
		panic(fmt.Sprintf("codec: unknown caster type %q", typ))
	}
	return &CasterCodec{typ: typ, fn: fn}
}

// Decode implements [Decoder]. v must be a *any.
func (c *CasterCodec) Decode(data []byte, v any) error {
	out, ok := v.(*any)
	if !ok {
		return fmt.Errorf("CasterCodec.Decode: expected *any, got %T", v)
	}
	val, err := c.fn(string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", c.typ, err)
	}
	*out = val
	return nil
}
