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
	"bytes"
	"errors"
	"fmt"
	"os"
	"reflect"
	"sync/atomic"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"rivaas.dev/scoped/config/codec"
	"rivaas.dev/scoped/config/dumper"
	"rivaas.dev/scoped/config/source"
)

// Option configures a Config.
type Option func(c *Config) error

// WithSource appends src. Sources are merged in the order they are added.
func WithSource(src Source) Option {
	return func(c *Config) error {
		if src == nil {
			return errors.New("source cannot be nil")
		}
		c.sources = append(c.sources, src)
		return nil
	}
}

// WithFile loads path, detecting the format from its extension (.yaml,
// .yml, .toml, .json). Environment variables in path are expanded.
func WithFile(path string) Option {
	return func(c *Config) error {
		path = os.ExpandEnv(path)
		format, err := detectFormat(path)
		if err != nil {
			return NewError("file-source", "detect-format", err)
		}
		return addFile(c, path, format, false)
	}
}

// WithOptionalFile is like WithFile, but a missing file is treated as
// empty configuration.
func WithOptionalFile(path string) Option {
	return func(c *Config) error {
		path = os.ExpandEnv(path)
		format, err := detectFormat(path)
		if err != nil {
			return NewError("file-source", "detect-format", err)
		}
		return addFile(c, path, format, true)
	}
}

// WithFileAs loads path with an explicit format.
func WithFileAs(path string, format codec.Type) Option {
	return func(c *Config) error {
		return addFile(c, os.ExpandEnv(path), format, false)
	}
}

func addFile(c *Config, path string, format codec.Type, optional bool) error {
	decoder, err := codec.GetDecoder(format)
	if err != nil {
		return NewError("file-source", "get-decoder", err)
	}
	if optional {
		c.sources = append(c.sources, source.NewOptionalFile(path, decoder))
	} else {
		c.sources = append(c.sources, source.NewFile(path, decoder))
	}
	return nil
}

// WithContent decodes data in the given format.
//
// Example:
//
//	config.WithContent([]byte("server:\n  addr: :8080"), codec.TypeYAML)
func WithContent(data []byte, format codec.Type) Option {
	return func(c *Config) error {
		decoder, err := codec.GetDecoder(format)
		if err != nil {
			return NewError("content-source", "get-decoder", err)
		}
		c.sources = append(c.sources, source.NewFileContent(data, decoder))
		return nil
	}
}

// WithEnv loads environment variables starting with prefix. The prefix is
// stripped and "__" separates nesting levels, so SCOPED_SERVER__ADDR
// becomes server.addr.
func WithEnv(prefix string) Option {
	return func(c *Config) error {
		c.sources = append(c.sources, source.NewOSEnvVar(prefix))
		return nil
	}
}

// WithConsul loads a Consul key, detecting the format from its extension.
// It is skipped when CONSUL_HTTP_ADDR is not set, so development setups
// run without Consul.
func WithConsul(key string) Option {
	return func(c *Config) error {
		if os.Getenv("CONSUL_HTTP_ADDR") == "" {
			return nil
		}
		key = os.ExpandEnv(key)
		format, err := detectFormat(key)
		if err != nil {
			return NewError("consul-source", "detect-format", err)
		}
		return addConsul(c, key, format)
	}
}

// WithConsulAs loads a Consul key with an explicit format, including the
// scalar caster formats. Like WithConsul it is skipped without
// CONSUL_HTTP_ADDR.
func WithConsulAs(key string, format codec.Type) Option {
	return func(c *Config) error {
		if os.Getenv("CONSUL_HTTP_ADDR") == "" {
			return nil
		}
		return addConsul(c, os.ExpandEnv(key), format)
	}
}

func addConsul(c *Config, key string, format codec.Type) error {
	decoder, err := codec.GetDecoder(format)
	if err != nil {
		return NewError("consul-source", "get-decoder", err)
	}
	src, err := source.NewConsul(key, decoder, nil)
	if err != nil {
		return NewError("consul-source", "create-client", err)
	}
	c.sources = append(c.sources, src)
	return nil
}

// WithDumper appends a dumper used by Dump.
func WithDumper(d Dumper) Option {
	return func(c *Config) error {
		if d == nil {
			return errors.New("dumper cannot be nil")
		}
		c.dumpers = append(c.dumpers, d)
		return nil
	}
}

// WithFileDumper dumps to path, detecting the format from its extension.
func WithFileDumper(path string) Option {
	return func(c *Config) error {
		path = os.ExpandEnv(path)
		format, err := detectFormat(path)
		if err != nil {
			return NewError("file-dumper", "detect-format", err)
		}
		encoder, err := codec.GetEncoder(format)
		if err != nil {
			return NewError("file-dumper", "get-encoder", err)
		}
		c.dumpers = append(c.dumpers, dumper.NewFile(path, encoder))
		return nil
	}
}

// WithBinding decodes loaded values into v, which must be a pointer to a
// struct. Fields are matched by their config tag; zero fields take the
// value of their default tag.
func WithBinding(v any) Option {
	return func(c *Config) error {
		if v == nil {
			return errors.New("binding target cannot be nil")
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
			return errors.New("binding target must be a pointer to a struct")
		}
		c.binding = v
		return nil
	}
}

// WithTag sets the struct tag used for binding. Default: "config".
func WithTag(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return errors.New("tag name cannot be empty")
		}
		c.tagName = name
		return nil
	}
}

var schemaSeq atomic.Uint64

// WithJSONSchema validates the merged values against a JSON Schema before
// binding.
func WithJSONSchema(schema []byte) Option {
	return func(c *Config) error {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
		if err != nil {
			return NewError("json-schema", "parse", err)
		}
		name := fmt.Sprintf("inline-%d.json", schemaSeq.Add(1))
		compiler := jsonschema.NewCompiler()
		if err = compiler.AddResource(name, doc); err != nil {
			return NewError("json-schema", "compile", err)
		}
		compiled, err := compiler.Compile(name)
		if err != nil {
			return NewError("json-schema", "compile", err)
		}
		c.schema = compiled
		return nil
	}
}

// WithValidator adds a function that checks the merged values before
// binding. A panicking validator fails the load.
func WithValidator(fn func(map[string]any) error) Option {
	return func(c *Config) error {
		if fn == nil {
			return errors.New("validator cannot be nil")
		}
		c.validators = append(c.validators, fn)
		return nil
	}
}
