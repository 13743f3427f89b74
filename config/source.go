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

import "context"

// Source provides one layer of configuration. Load must be safe to call
// concurrently and may return nil for an empty layer.
type Source interface {
	Load(ctx context.Context) (map[string]any, error)
}

// Dumper writes the effective configuration somewhere.
type Dumper interface {
	Dump(ctx context.Context, values map[string]any) error
}
