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

package binding

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"

	riverrors "rivaas.dev/scoped/errors"
	"rivaas.dev/scoped/router"
)

// Params binds path captures (fields tagged param) and query values
// (fields tagged query) into a new T and validates it. Values are
// converted to the field types; a conversion failure is a 400.
//
// Example:
//
//	type listNotes struct {
//	    Folder string        `param:"folder" validate:"required"`
//	    Limit  int           `query:"limit" validate:"omitempty,max=100"`
//	    Tags   []string      `query:"tag"`
//	    Wait   time.Duration `query:"wait"`
//	}
//
//	q, err := binding.Params[listNotes](in)
func Params[T any](in *router.Input, opts ...Option) (T, error) {
	var v T
	err := ParamsInto(in, &v, opts...)
	return v, err
}

// ParamsInto is like Params but binds into dst, a pointer to a struct.
func ParamsInto(in *router.Input, dst any, opts ...Option) error {
	cfg := newConfig(opts)

	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return riverrors.Internal(fmt.Errorf("binding: destination must be a non-nil pointer to a struct, got %T", dst))
	}

	path := make(map[string]any, in.Params().Len())
	for name, value := range in.Params().All() {
		path[name] = value
	}
	if err := decodeTagged("param", path, dst); err != nil {
		return riverrors.BadRequest(fmt.Errorf("bind path parameters: %w", err))
	}

	query := make(map[string]any)
	for key, values := range in.Request().URL.Query() {
		if len(values) == 1 {
			query[key] = values[0]
		} else {
			query[key] = values
		}
	}
	if err := decodeTagged("query", query, dst); err != nil {
		return riverrors.BadRequest(fmt.Errorf("bind query: %w", err))
	}

	return cfg.check(in.Context(), dst)
}

// decodeTagged decodes only the fields carrying tag, so path and query
// never fill each other's fields.
func decodeTagged(tag string, values map[string]any, dst any) error {
	if len(values) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:              tag,
		IgnoreUntaggedFields: true,
		WeaklyTypedInput:     true,
		Result:               dst,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(values)
}
