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
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Option configures a Validator.
type Option func(*config)

type customTag struct {
	name string
	fn   validator.Func
}

type config struct {
	maxErrors  int
	customTags []customTag
	messages   map[string]string
	errs       []error
}

// WithMaxErrors caps the number of reported field errors; the result is
// marked truncated when the cap is hit. 0 means no cap.
func WithMaxErrors(n int) Option {
	return func(c *config) {
		if n < 0 {
			c.errs = append(c.errs, fmt.Errorf("max errors must not be negative, got %d", n))
			return
		}
		c.maxErrors = n
	}
}

// WithCustomTag registers a validation tag.
//
// Example:
//
//	v := validation.MustNew(validation.WithCustomTag("even", func(fl validator.FieldLevel) bool {
//	    return fl.Field().Int()%2 == 0
//	}))
func WithCustomTag(name string, fn validator.Func) Option {
	return func(c *config) {
		if name == "" || fn == nil {
			c.errs = append(c.errs, errors.New("custom tag needs a name and a function"))
			return
		}
		c.customTags = append(c.customTags, customTag{name: name, fn: fn})
	}
}

// WithMessages overrides the message of tags, keyed by tag name.
func WithMessages(messages map[string]string) Option {
	return func(c *config) {
		if c.messages == nil {
			c.messages = make(map[string]string, len(messages))
		}
		for k, m := range messages {
			c.messages[k] = m
		}
	}
}
