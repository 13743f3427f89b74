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

package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
)

// Output is the response produced by a handler.
//
// The body is either a byte slice, whose length is known, or a stream of
// unknown length. Content-Length is derived from known lengths during
// finalization unless a handler already set it.
type Output struct {
	// Status is the HTTP status code.
	Status int
	// Header holds the response headers.
	Header http.Header

	body   []byte
	stream io.Reader
}

// NewOutput returns an output with the given status and body.
func NewOutput(status int, body []byte) *Output {
	return &Output{Status: status, Header: make(http.Header), body: body}
}

// Empty returns an output without a body.
func Empty(status int) *Output {
	return NewOutput(status, nil)
}

// Text returns a plain text output.
func Text(status int, s string) *Output {
	return Bytes(status, "text/plain; charset=utf-8", []byte(s))
}

// Bytes returns an output with an explicit content type.
func Bytes(status int, contentType string, b []byte) *Output {
	out := NewOutput(status, b)
	if contentType != "" {
		out.Header.Set("Content-Type", contentType)
	}
	return out
}

// JSON returns a JSON output for v.
func JSON(status int, v any) (*Output, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Bytes(status, "application/json; charset=utf-8", b), nil
}

// Stream returns an output whose body is read from r; its length is unknown.
// If r is an io.Closer it is closed after the body has been written.
func Stream(status int, contentType string, r io.Reader) *Output {
	out := Bytes(status, contentType, nil)
	out.stream = r
	return out
}

// Redirect returns a redirect output to location.
func Redirect(status int, location string) *Output {
	out := Empty(status)
	out.Header.Set("Location", location)
	return out
}

// ContentLength returns the body length when it is known.
func (o *Output) ContentLength() (int64, bool) {
	if o.stream != nil {
		return 0, false
	}
	return int64(len(o.body)), true
}

// Body returns a reader over the response body.
func (o *Output) Body() io.Reader {
	if o.stream != nil {
		return o.stream
	}
	return bytes.NewReader(o.body)
}

// stripBody drops the body while keeping the headers, as required for
// responses to HEAD requests.
func (o *Output) stripBody() {
	if c, ok := o.stream.(io.Closer); ok {
		_ = c.Close()
	}
	o.body = nil
	o.stream = nil
}

// setContentLength sets Content-Length for known lengths unless present.
func (o *Output) setContentLength() {
	if o.Header.Get("Content-Length") != "" {
		return
	}
	if n, ok := o.ContentLength(); ok && bodyAllowed(o.Status) {
		o.Header.Set("Content-Length", strconv.FormatInt(n, 10))
	}
}

// WriteTo writes the status, headers and body to w.
func (o *Output) WriteTo(w http.ResponseWriter) (int64, error) {
	dst := w.Header()
	for k, v := range o.Header {
		dst[k] = v
	}
	w.WriteHeader(o.Status)

	if o.stream != nil {
		if c, ok := o.stream.(io.Closer); ok {
			defer c.Close()
		}
		return io.Copy(w, o.stream)
	}
	if len(o.body) == 0 {
		return 0, nil
	}
	n, err := w.Write(o.body)
	return int64(n), err
}

// bodyAllowed reports whether a response with status may carry a body.
func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status <= 199:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}
