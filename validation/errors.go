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

package validation

import (
	"cmp"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// ErrValidation matches every validation failure with errors.Is.
var ErrValidation = errors.New("validation")

// FieldError is one failed rule for one field.
type FieldError struct {
	Path    string         `json:"path"`           // JSON path, e.g. "items.2.price"
	Code    string         `json:"code"`           // stable code, e.g. "tag.required"
	Message string         `json:"message"`        // human-readable
	Meta    map[string]any `json:"meta,omitempty"` // tag, param, ...
}

// Error returns "path: message", or just the message without a path.
func (e FieldError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Unwrap returns [ErrValidation].
func (e FieldError) Unwrap() error { return ErrValidation }

// Error collects the field errors of one validation run. It renders as a
// 422 problem document with the fields in its "errors" member.
//
// Example:
//
//	var verr *validation.Error
//	if errors.As(err, &verr) && verr.Has("email") {
//	    ...
//	}
type Error struct {
	Fields    []FieldError `json:"errors"`
	Truncated bool         `json:"truncated,omitempty"`
}

func (v *Error) Error() string {
	switch len(v.Fields) {
	case 0:
		return "validation failed"
	case 1:
		return v.Fields[0].Error()
	}

	msgs := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		msgs = append(msgs, f.Error())
	}
	suffix := ""
	if v.Truncated {
		suffix = " (truncated)"
	}
	return "validation failed: " + strings.Join(msgs, "; ") + suffix
}

// Unwrap returns [ErrValidation].
func (v *Error) Unwrap() error { return ErrValidation }

// HTTPStatus reports 422 Unprocessable Content.
func (v *Error) HTTPStatus() int { return http.StatusUnprocessableEntity }

// Details returns the field errors.
func (v *Error) Details() any { return v.Fields }

// Code returns "validation_error".
func (v *Error) Code() string { return "validation_error" }

// Add appends a field error.
func (v *Error) Add(path, code, message string, meta map[string]any) {
	v.Fields = append(v.Fields, FieldError{Path: path, Code: code, Message: message, Meta: meta})
}

// AddError appends err. Field errors and nested Errors keep their fields;
// any other error becomes a field error without a path.
func (v *Error) AddError(err error) {
	var (
		fe  FieldError
		nes *Error
	)
	switch {
	case err == nil:
	case errors.As(err, &nes):
		v.Fields = append(v.Fields, nes.Fields...)
		v.Truncated = v.Truncated || nes.Truncated
	case errors.As(err, &fe):
		v.Fields = append(v.Fields, fe)
	default:
		v.Add("", "validation_error", err.Error(), nil)
	}
}

// HasErrors reports whether any field failed.
func (v *Error) HasErrors() bool { return len(v.Fields) > 0 }

// Has reports whether path has an error.
func (v *Error) Has(path string) bool {
	return slices.ContainsFunc(v.Fields, func(f FieldError) bool { return f.Path == path })
}

// HasCode reports whether any field error has code.
func (v *Error) HasCode(code string) bool {
	return slices.ContainsFunc(v.Fields, func(f FieldError) bool { return f.Code == code })
}

// Sort orders the fields by path, then code.
func (v *Error) Sort() {
	slices.SortStableFunc(v.Fields, func(a, b FieldError) int {
		return cmp.Or(strings.Compare(a.Path, b.Path), strings.Compare(a.Code, b.Code))
	})
}
