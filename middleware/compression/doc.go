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

// Package compression provides a modifier that compresses response bodies
// with gzip or Brotli, negotiated through the Accept-Encoding header.
//
// Brotli is preferred when the client weighs it at least as high as gzip.
// Responses are left untouched when the client accepts neither encoding,
// when they already carry a Content-Encoding, when their status forbids
// a body, or when their known length is below the minimum size.
//
// # Basic Usage
//
//	import "rivaas.dev/scoped/middleware/compression"
//
//	app := router.MustNew(func(s *router.Scope) {
//	    s.Use(compression.New(compression.WithMinSize(1024)))
//	    s.GET("/report", getReport)
//	})
//
// Streamed bodies are compressed while they are written and lose their
// Content-Length. Event streams, gRPC and octet streams are skipped by
// default; see [WithExcludeContentTypes].
package compression
