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

// Package validation validates decoded request payloads.
//
// A payload is checked against its validate struct tags
// (github.com/go-playground/validator) and then against its own Validate
// or ValidateContext method. Failures are collected into an [*Error] that
// the router renders as a 422 problem document:
//
//	{
//	  "status": 422,
//	  "code": "validation_error",
//	  "errors": [{"path": "title", "code": "tag.required", "message": "is required"}]
//	}
//
// Field paths use JSON names, so "Items[2].Price" is reported as
// "items.2.price".
package validation
