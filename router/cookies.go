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
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// Cookies is the request cookie jar.
//
// The jar is parsed from the request on first access. Changes made through
// Add and Remove are tracked as a delta and emitted as Set-Cookie headers
// when a successful response is finalized.
type Cookies struct {
	jar   map[string]*http.Cookie
	delta []*http.Cookie
	codec *securecookie.SecureCookie
}

func newCookies(req *http.Request, codec *securecookie.SecureCookie) *Cookies {
	c := &Cookies{jar: make(map[string]*http.Cookie), codec: codec}
	for _, ck := range req.Cookies() {
		if _, dup := c.jar[ck.Name]; !dup {
			c.jar[ck.Name] = ck
		}
	}
	return c
}

// Get returns the current cookie called name, including pending changes.
func (c *Cookies) Get(name string) (*http.Cookie, bool) {
	ck, ok := c.jar[name]
	return ck, ok
}

// Value returns the value of the cookie called name, or "".
func (c *Cookies) Value(name string) string {
	if ck, ok := c.jar[name]; ok {
		return ck.Value
	}
	return ""
}

// Len returns the number of cookies currently in the jar.
func (c *Cookies) Len() int {
	return len(c.jar)
}

// Add sets a cookie and records it for the response.
// Path defaults to "/" when empty.
func (c *Cookies) Add(ck *http.Cookie) {
	if ck.Path == "" {
		ck.Path = "/"
	}
	c.jar[ck.Name] = ck
	c.record(ck)
}

// Remove deletes the cookie called name and records a removal cookie.
func (c *Cookies) Remove(name string) {
	delete(c.jar, name)
	c.record(&http.Cookie{
		Name:    name,
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
}

// record keeps one pending change per cookie name, latest wins.
func (c *Cookies) record(ck *http.Cookie) {
	for i, pending := range c.delta {
		if pending.Name == ck.Name {
			c.delta[i] = ck
			return
		}
	}
	c.delta = append(c.delta, ck)
}

// Delta returns the pending cookie changes in first-change order.
func (c *Cookies) Delta() []*http.Cookie {
	return c.delta
}

// SetSigned encodes value with the configured keys and adds it as a cookie.
// The template supplies attributes such as Path or HttpOnly; its Value is
// replaced.
func (c *Cookies) SetSigned(name string, value any, template *http.Cookie) error {
	if c.codec == nil {
		return ErrNoCookieKeys
	}
	encoded, err := c.codec.Encode(name, value)
	if err != nil {
		return fmt.Errorf("encoding cookie %q: %w", name, err)
	}

	ck := &http.Cookie{}
	if template != nil {
		*ck = *template
	}
	ck.Name = name
	ck.Value = encoded
	c.Add(ck)
	return nil
}

// GetSigned decodes the signed cookie called name into dst.
func (c *Cookies) GetSigned(name string, dst any) error {
	if c.codec == nil {
		return ErrNoCookieKeys
	}
	ck, ok := c.jar[name]
	if !ok {
		return fmt.Errorf("cookie %q: %w", name, http.ErrNoCookie)
	}
	if err := c.codec.Decode(name, ck.Value, dst); err != nil {
		return fmt.Errorf("decoding cookie %q: %w", name, err)
	}
	return nil
}

// newCookieCodec validates the keys and returns a codec, or nil when no
// keys are configured.
func newCookieCodec(hashKey, blockKey []byte) (*securecookie.SecureCookie, error) {
	if len(hashKey) == 0 && len(blockKey) == 0 {
		return nil, nil
	}
	if len(hashKey) == 0 {
		return nil, fmt.Errorf("%w: hash key is required", ErrInvalidCookieKey)
	}
	switch len(blockKey) {
	case 0, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: block key must be 16, 24 or 32 bytes, got %d", ErrInvalidCookieKey, len(blockKey))
	}
	if len(blockKey) == 0 {
		blockKey = nil
	}
	return securecookie.New(hashKey, blockKey), nil
}
