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
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"google.golang.org/protobuf/proto"

	riverrors "rivaas.dev/scoped/errors"
	"rivaas.dev/scoped/router"
	"rivaas.dev/scoped/validation"
)

var (
	// ErrUnsupportedMediaType is returned for a Content-Type without a codec.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrEmptyBody is returned when the request has no body.
	ErrEmptyBody = errors.New("request body is empty")

	// ErrBodyTooLarge is returned when the body exceeds the size limit.
	ErrBodyTooLarge = errors.New("request body too large")
)

// Body decodes the request body into a new T according to its
// Content-Type and validates the result.
//
// Errors carry their response status: 415 for an unknown media type, 413
// for an oversized body, 400 for a malformed one and 422 for a body that
// fails validation. Handlers can return them unchanged.
//
// Example:
//
//	s.POST("/notes", router.HandlerFunc(func(in *router.Input) (*router.Output, error) {
//	    note, err := binding.Body[CreateNote](in)
//	    if err != nil {
//	        return nil, err
//	    }
//	    ...
//	}))
func Body[T any](in *router.Input, opts ...Option) (T, error) {
	var v T
	err := BodyInto(in, &v, opts...)
	return v, err
}

// BodyInto is like Body but decodes into dst, which must be a pointer.
func BodyInto(in *router.Input, dst any, opts ...Option) error {
	cfg := newConfig(opts)
	req := in.Request()

	media := cfg.defaultMedia
	if ct := req.Header.Get("Content-Type"); ct != "" {
		parsed, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return riverrors.WithStatus(fmt.Errorf("%w: %q", ErrUnsupportedMediaType, ct), http.StatusUnsupportedMediaType)
		}
		media = parsed
	}
	decode, ok := codecs[media]
	if !ok && strings.HasSuffix(media, "+json") {
		decode, ok = decodeJSON, true
	}
	if !ok {
		return riverrors.WithHeader(
			riverrors.WithStatus(fmt.Errorf("%w: %q", ErrUnsupportedMediaType, media), http.StatusUnsupportedMediaType),
			"Accept", strings.Join(MediaTypes(), ", "),
		)
	}

	data, err := readBody(req, cfg.maxBytes)
	if err != nil {
		return err
	}
	if err = decode(data, dst, cfg); err != nil {
		if errors.Is(err, ErrNotProtoMessage) {
			return riverrors.Internal(err)
		}
		return riverrors.BadRequest(fmt.Errorf("decode %s body: %w", media, err))
	}

	return cfg.check(in.Context(), dst)
}

// MediaTypes lists the primary media types Body decodes.
func MediaTypes() []string {
	return []string{MediaJSON, MediaYAML, MediaTOML, MediaMsgPack, MediaProtobuf}
}

func readBody(req *http.Request, limit int64) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, riverrors.BadRequest(ErrEmptyBody)
	}
	r := io.Reader(req.Body)
	if limit > 0 {
		r = io.LimitReader(req.Body, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, riverrors.BadRequest(fmt.Errorf("read body: %w", err))
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, riverrors.WithStatus(fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, limit), http.StatusRequestEntityTooLarge)
	}
	if len(data) == 0 {
		return nil, riverrors.BadRequest(ErrEmptyBody)
	}
	return data, nil
}

// check validates dst unless disabled. Protobuf messages are skipped.
func (c *config) check(ctx context.Context, dst any) error {
	if !c.validate {
		return nil
	}
	if _, ok := dst.(proto.Message); ok {
		return nil
	}
	if c.validator != nil {
		return c.validator.Validate(ctx, dst)
	}
	return validation.Validate(ctx, dst)
}
