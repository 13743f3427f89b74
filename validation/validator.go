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
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidatorInterface is implemented by types that validate themselves.
type ValidatorInterface interface {
	Validate() error
}

// ValidatorWithContext is like ValidatorInterface but receives the request
// context. It takes precedence when both are implemented.
type ValidatorWithContext interface {
	ValidateContext(ctx context.Context) error
}

// Validator checks values against their validate struct tags and their own
// Validate methods. It is safe for concurrent use.
type Validator struct {
	cfg  *config
	tags *validator.Validate
}

var (
	defaultValidator     *Validator
	defaultValidatorOnce sync.Once
)

// Validate validates v with a default Validator.
func Validate(ctx context.Context, v any) error {
	defaultValidatorOnce.Do(func() {
		defaultValidator = MustNew()
	})
	return defaultValidator.Validate(ctx, v)
}

// New creates a Validator.
func New(opts ...Option) (*Validator, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if err := errors.Join(cfg.errs...); err != nil {
		return nil, fmt.Errorf("validation configuration: %w", err)
	}

	tags := validator.New(validator.WithRequiredStructEnabled())
	tags.RegisterTagNameFunc(jsonName)
	if err := registerBuiltinTags(tags); err != nil {
		return nil, err
	}
	for _, ct := range cfg.customTags {
		if err := tags.RegisterValidation(ct.name, ct.fn); err != nil {
			return nil, fmt.Errorf("register custom tag %q: %w", ct.name, err)
		}
	}

	return &Validator{cfg: cfg, tags: tags}, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Validator {
	v, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate runs the struct tags of v and then its Validate or
// ValidateContext method. It returns nil or an [*Error].
//
// Example:
//
//	type CreateNote struct {
//	    Title string `json:"title" validate:"required,max=80"`
//	}
//
//	if err := v.Validate(ctx, &note); err != nil {
//	    return nil, err // 422 with the failing fields
//	}
func (v *Validator) Validate(ctx context.Context, val any) error {
	rv := reflect.ValueOf(val)
	if !rv.IsValid() {
		return &Error{Fields: []FieldError{{Code: "nil", Message: "cannot validate nil value"}}}
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return &Error{Fields: []FieldError{{Code: "nil_pointer", Message: "cannot validate nil pointer"}}}
		}
		rv = rv.Elem()
	}

	var result Error
	if rv.Kind() == reflect.Struct {
		if err := v.tags.StructCtx(ctx, val); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return fmt.Errorf("validate %T: %w", val, err)
			}
			v.addTagErrors(&result, verrs)
		}
	}

	switch m := val.(type) {
	case ValidatorWithContext:
		result.AddError(m.ValidateContext(ctx))
	case ValidatorInterface:
		result.AddError(m.Validate())
	}

	if !result.HasErrors() {
		return nil
	}
	if limit := v.cfg.maxErrors; limit > 0 && len(result.Fields) > limit {
		result.Sort()
		result.Fields = result.Fields[:limit]
		result.Truncated = true
	}
	result.Sort()
	return &result
}

// addTagErrors converts validator errors into field errors keyed by JSON
// path with stable "tag.<name>" codes.
func (v *Validator) addTagErrors(result *Error, errs validator.ValidationErrors) {
	for _, e := range errs {
		path := e.Namespace()
		if i := strings.IndexByte(path, '.'); i != -1 {
			path = path[i+1:]
		}
		path = strings.NewReplacer("[", ".", "]", "").Replace(path)

		msg, ok := v.cfg.messages[e.Tag()]
		if !ok {
			msg = tagMessage(e)
		}
		result.Add(path, "tag."+e.Tag(), msg, map[string]any{
			"tag":   e.Tag(),
			"param": e.Param(),
		})
	}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

var (
	reSlug     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	reUsername = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
)

func registerBuiltinTags(tags *validator.Validate) error {
	for name, re := range map[string]*regexp.Regexp{"slug": reSlug, "username": reUsername} {
		if err := tags.RegisterValidation(name, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		}); err != nil {
			return fmt.Errorf("register %s validator: %w", name, err)
		}
	}
	return nil
}

func tagMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min", "max", "len":
		bound := map[string]string{"min": "at least", "max": "at most", "len": "exactly"}[e.Tag()]
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be %s %s characters", bound, e.Param())
		}
		if e.Kind() == reflect.Slice || e.Kind() == reflect.Map {
			return fmt.Sprintf("must have %s %s items", bound, e.Param())
		}
		return fmt.Sprintf("must be %s %s", bound, e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	case "slug":
		return "must be lowercase letters, numbers and hyphens"
	case "username":
		return "must be 3-20 letters, digits or underscores"
	default:
		return fmt.Sprintf("failed validation (%s)", e.Tag())
	}
}
