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

// Package binding decodes request payloads into Go values.
//
// [Body] picks a decoder from the request's Content-Type:
//
//   - application/json (and any +json type)
//   - application/yaml
//   - application/toml
//   - application/msgpack
//   - application/x-protobuf, for proto.Message destinations
//
// [Params] fills struct fields from path captures (param tag) and query
// values (query tag), converting strings to the field types.
//
// Both validate the result with the validation package unless
// [WithoutValidation] is given. Returned errors carry their HTTP status,
// so a handler can return them as is and the router renders a matching
// problem document.
package binding
