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
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// Get returns the value at key converted to T, or the zero value when the
// key is missing or cannot be converted.
//
// Example:
//
//	addr := config.Get[string](cfg, "server.addr")
//	timeout := config.Get[time.Duration](cfg, "server.write_timeout")
func Get[T any](c *Config, key string) T {
	v, _ := GetE[T](c, key)
	return v
}

// GetOr is like Get but returns def when the key is missing or cannot be
// converted.
func GetOr[T any](c *Config, key string, def T) T {
	v, err := GetE[T](c, key)
	if err != nil {
		return def
	}
	return v
}

// GetE returns the value at key converted to T, or an error when the key
// is missing or cannot be converted.
func GetE[T any](c *Config, key string) (T, error) {
	var zero T
	raw, ok := c.lookup(key)
	if !ok || raw == nil {
		return zero, fmt.Errorf("key %q not found", key)
	}
	if v, ok := raw.(T); ok {
		return v, nil
	}
	v, err := convert[T](raw)
	if err != nil {
		return zero, fmt.Errorf("cannot convert value at key %q to %T: %w", key, zero, err)
	}
	return v, nil
}

func convert[T any](raw any) (T, error) {
	var zero T
	var (
		out any
		err error
	)
	switch any(zero).(type) {
	case string:
		out, err = cast.ToStringE(raw)
	case int:
		out, err = cast.ToIntE(raw)
	case int64:
		out, err = cast.ToInt64E(raw)
	case uint:
		out, err = cast.ToUintE(raw)
	case float64:
		out, err = cast.ToFloat64E(raw)
	case bool:
		out, err = cast.ToBoolE(raw)
	case time.Duration:
		out, err = cast.ToDurationE(raw)
	case time.Time:
		out, err = cast.ToTimeE(raw)
	case []string:
		out, err = cast.ToStringSliceE(raw)
	case []int:
		out, err = cast.ToIntSliceE(raw)
	case map[string]any:
		out, err = cast.ToStringMapE(raw)
	case map[string]string:
		out, err = cast.ToStringMapStringE(raw)
	default:
		return zero, fmt.Errorf("unsupported type %T", zero)
	}
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

// String returns the value at key as a string.
func (c *Config) String(key string) string { return Get[string](c, key) }

// StringOr returns the value at key as a string, or def.
func (c *Config) StringOr(key, def string) string { return GetOr(c, key, def) }

// Int returns the value at key as an int.
func (c *Config) Int(key string) int { return Get[int](c, key) }

// IntOr returns the value at key as an int, or def.
func (c *Config) IntOr(key string, def int) int { return GetOr(c, key, def) }

// Float64 returns the value at key as a float64.
func (c *Config) Float64(key string) float64 { return Get[float64](c, key) }

// Bool returns the value at key as a bool.
func (c *Config) Bool(key string) bool { return Get[bool](c, key) }

// BoolOr returns the value at key as a bool, or def.
func (c *Config) BoolOr(key string, def bool) bool { return GetOr(c, key, def) }

// Duration returns the value at key as a time.Duration.
func (c *Config) Duration(key string) time.Duration { return Get[time.Duration](c, key) }

// DurationOr returns the value at key as a time.Duration, or def.
func (c *Config) DurationOr(key string, def time.Duration) time.Duration {
	return GetOr(c, key, def)
}

// StringSlice returns the value at key as a string slice. A comma
// separated string is not split; bind to a struct for that.
func (c *Config) StringSlice(key string) []string { return Get[[]string](c, key) }

// StringMap returns the value at key as a map.
func (c *Config) StringMap(key string) map[string]any { return Get[map[string]any](c, key) }
