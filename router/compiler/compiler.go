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

package compiler

import (
	"fmt"
	"strings"
)

// SegmentKind classifies a single path segment of a compiled pattern.
type SegmentKind uint8

const (
	// Literal segments must match the request path byte for byte.
	Literal SegmentKind = iota
	// Param segments capture exactly one non-empty path segment.
	Param
	// CatchAll segments capture the (possibly empty) remainder of the path.
	CatchAll
)

// String returns the name of the segment kind.
func (k SegmentKind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Param:
		return "param"
	case CatchAll:
		return "catch-all"
	default:
		return fmt.Sprintf("SegmentKind(%d)", k)
	}
}

// Segment is one element of a compiled pattern.
// Value holds the literal text for Literal segments and the capture name
// for Param and CatchAll segments.
type Segment struct {
	Kind  SegmentKind
	Value string
}

// Pattern is a normalized, comparable route pattern.
//
// Patterns are immutable once compiled. Two patterns match the same set of
// request paths iff their Key values are equal; capture names only affect
// extraction, never matching.
type Pattern struct {
	segments      []Segment
	names         []string
	trailingSlash bool
	asterisk      bool
	raw           string
	key           string
}

// Compile parses a route pattern into its normalized representation.
//
// Segments are separated by '/'. A segment starting with ':' is a named
// parameter, a segment starting with '*' is a named catch-all, anything
// else is a literal. Empty segments collapse, so "/a//b" is "/a/b", and a
// trailing slash is significant. The empty string compiles to "/".
// The whole pattern "*" denotes the asterisk-form request target used by
// "OPTIONS *".
//
// Example:
//
//	p, err := compiler.Compile("/users/:id/files/*path")
//	if err != nil {
//	    return err
//	}
//	p.CaptureNames() // ["id", "path"]
func Compile(pattern string) (*Pattern, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "*" {
		return asteriskPattern(), nil
	}
	if pattern == "" {
		pattern = "/"
	}
	if pattern[0] != '/' {
		return nil, &PatternError{Pattern: pattern, Err: ErrInvalidPattern}
	}

	p := &Pattern{trailingSlash: len(pattern) > 1 && pattern[len(pattern)-1] == '/'}
	for raw := range strings.SplitSeq(pattern[1:], "/") {
		if raw == "" {
			continue
		}
		if err := p.push(classify(raw)); err != nil {
			return nil, &PatternError{Pattern: pattern, Err: err}
		}
	}
	if len(p.segments) == 0 {
		p.trailingSlash = false
	}
	if p.endsWithCatchAll() {
		// "/files/*path/" has nothing to put after the remainder.
		p.trailingSlash = false
	}
	p.finish()

	return p, nil
}

// MustCompile is like Compile but panics if the pattern is invalid.
// It simplifies initialization of package-level patterns.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(fmt.Sprintf("compiler.MustCompile(%q): %v", pattern, err))
	}
	return p
}

func asteriskPattern() *Pattern {
	return &Pattern{asterisk: true, raw: "*", key: "*"}
}

func classify(raw string) Segment {
	switch raw[0] {
	case ':':
		return Segment{Kind: Param, Value: raw[1:]}
	case '*':
		return Segment{Kind: CatchAll, Value: raw[1:]}
	default:
		return Segment{Kind: Literal, Value: raw}
	}
}

// push appends a segment, enforcing the catch-all and capture-name rules.
func (p *Pattern) push(seg Segment) error {
	if p.endsWithCatchAll() {
		return ErrCatchAllNotLast
	}
	if seg.Kind != Literal {
		if seg.Value == "" {
			return ErrEmptyCaptureName
		}
		for _, name := range p.names {
			if name == seg.Value {
				return fmt.Errorf("%w: %q", ErrDuplicateCaptureName, name)
			}
		}
		p.names = append(p.names, seg.Value)
	}
	p.segments = append(p.segments, seg)
	return nil
}

func (p *Pattern) endsWithCatchAll() bool {
	return len(p.segments) > 0 && p.segments[len(p.segments)-1].Kind == CatchAll
}

// finish computes the rendered form and the ordering key.
func (p *Pattern) finish() {
	var raw, key strings.Builder
	for _, seg := range p.segments {
		raw.WriteByte('/')
		key.WriteByte('/')
		switch seg.Kind {
		case Literal:
			raw.WriteString(seg.Value)
			key.WriteString(seg.Value)
		case Param:
			raw.WriteByte(':')
			raw.WriteString(seg.Value)
			key.WriteString(paramKey)
		case CatchAll:
			raw.WriteByte('*')
			raw.WriteString(seg.Value)
			key.WriteString(catchAllKey)
		}
	}
	if len(p.segments) == 0 || p.trailingSlash {
		raw.WriteByte('/')
		key.WriteByte('/')
	}
	p.raw = raw.String()
	p.key = key.String()
}

// Capture placeholders in the ordering key. The zero byte cannot appear in
// a literal segment of a valid request path, so keys never collide with
// literal text, and parameters sort before catch-alls.
const (
	paramKey    = "\x00:"
	catchAllKey = "\x00*"
)

// Join concatenates a scope prefix and a child pattern.
//
// Duplicate slashes at the seam collapse, joining the root pattern yields
// the other operand unchanged, and a child of "/" leaves the prefix as is.
// The asterisk pattern can only be joined under the root prefix.
//
// Example:
//
//	api := compiler.MustCompile("/api/")
//	full, _ := api.Join(compiler.MustCompile("/users/:id")) // "/api/users/:id"
func (p *Pattern) Join(child *Pattern) (*Pattern, error) {
	switch {
	case child.asterisk:
		if !p.IsRoot() {
			return nil, &PatternError{Pattern: p.raw + child.raw, Err: ErrAsteriskWithPrefix}
		}
		return child, nil
	case p.asterisk:
		return nil, &PatternError{Pattern: p.raw + child.raw, Err: ErrAsteriskWithPrefix}
	case p.IsRoot():
		return child, nil
	case child.IsRoot():
		return p, nil
	}

	joined := &Pattern{
		segments:      make([]Segment, 0, len(p.segments)+len(child.segments)),
		trailingSlash: child.trailingSlash,
	}
	for _, seg := range p.segments {
		// Already validated when p was compiled.
		_ = joined.push(seg)
	}
	for _, seg := range child.segments {
		if err := joined.push(seg); err != nil {
			return nil, &PatternError{Pattern: p.raw + child.raw, Err: err}
		}
	}
	joined.finish()

	return joined, nil
}

// String returns the normalized textual form, e.g. "/users/:id".
func (p *Pattern) String() string { return p.raw }

// Key returns a byte-stable ordering key that ignores capture names.
func (p *Pattern) Key() string { return p.key }

// Equal reports whether p and q match exactly the same request paths.
func (p *Pattern) Equal(q *Pattern) bool { return p.key == q.key }

// Segments returns the pattern segments. The slice must not be modified.
func (p *Pattern) Segments() []Segment { return p.segments }

// CaptureNames returns capture names in extraction order.
func (p *Pattern) CaptureNames() []string { return p.names }

// HasTrailingSlash reports whether the pattern ends with '/' after its last segment.
func (p *Pattern) HasTrailingSlash() bool { return p.trailingSlash }

// IsAsterisk reports whether p is the asterisk-form pattern "*".
func (p *Pattern) IsAsterisk() bool { return p.asterisk }

// IsRoot reports whether p is "/".
func (p *Pattern) IsRoot() bool { return !p.asterisk && len(p.segments) == 0 }

// IsStatic reports whether p contains no captures.
func (p *Pattern) IsStatic() bool { return len(p.names) == 0 }

// Render builds a concrete request path by substituting capture values.
// Catch-all values may contain '/'; parameter values may not be empty.
//
// Example:
//
//	p := compiler.MustCompile("/users/:id/*rest")
//	path, _ := p.Render(map[string]string{"id": "42", "rest": "a/b"}) // "/users/42/a/b"
func (p *Pattern) Render(values map[string]string) (string, error) {
	if p.asterisk {
		return "*", nil
	}

	var b strings.Builder
	for _, seg := range p.segments {
		b.WriteByte('/')
		if seg.Kind == Literal {
			b.WriteString(seg.Value)
			continue
		}
		v, ok := values[seg.Value]
		if !ok || (seg.Kind == Param && v == "") {
			return "", fmt.Errorf("%w: %q in %s", ErrMissingCapture, seg.Value, p.raw)
		}
		if seg.Kind == Param && strings.Contains(v, "/") {
			return "", fmt.Errorf("%w: parameter %q contains '/'", ErrInvalidCaptureValue, seg.Value)
		}
		b.WriteString(v)
	}
	if len(p.segments) == 0 || p.trailingSlash {
		b.WriteByte('/')
	}

	return b.String(), nil
}
