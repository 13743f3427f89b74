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

// Package config loads the configuration of a scoped server.
//
// Configuration is read from an ordered list of sources: files (YAML, TOML
// or JSON, detected by extension), in-memory content, prefixed environment
// variables and Consul keys. Later sources override earlier ones and keys
// are case-insensitive.
//
// # Settings
//
// Most servers only need [LoadSettings], which validates the document
// against [SettingsSchema], binds it to [Settings], fills defaults and runs
// [Settings.Validate]:
//
//	settings, err := config.LoadSettings(ctx,
//	    config.WithOptionalFile("scoped.yaml"),
//	    config.WithEnv("SCOPED_"), // SCOPED_SERVER__ADDR=:9090
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app, err := router.New(configure, settings.RouterOptions()...)
//
// # Generic Access
//
// A [Config] also serves arbitrary documents:
//
//	cfg := config.MustNew(config.WithFile("features.toml"))
//	cfg.MustLoad(ctx)
//	enabled := cfg.BoolOr("beta.enabled", false)
//	limit := config.GetOr(cfg, "beta.limit", 100)
//
// # Struct Binding
//
// [WithBinding] decodes values into a struct using config tags. Zero fields
// take the value of their default tag, and a struct implementing
// [Validator] is validated after defaults are applied:
//
//	type Upstream struct {
//	    URL     string        `config:"url"`
//	    Timeout time.Duration `config:"timeout" default:"5s"`
//	}
//
// A failed Load leaves both the values and the bound struct unchanged.
package config
