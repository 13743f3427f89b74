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

package recognizer

import (
	"strings"

	"rivaas.dev/scoped/router/compiler"
)

// Kind classifies the outcome of Recognize.
type Kind uint8

const (
	// NotMatched means the path has no relation to any registered pattern.
	NotMatched Kind = iota
	// Matched means exactly one pattern matches the whole path.
	Matched
	// PartiallyMatched means the path shares a prefix with registered
	// patterns but none of them matches it completely.
	PartiallyMatched
)

// String returns the name of the result kind.
func (k Kind) String() string {
	switch k {
	case Matched:
		return "matched"
	case PartiallyMatched:
		return "partially_matched"
	default:
		return "not_matched"
	}
}

// Capture is a half-open byte range [Start, End) into the recognized path.
type Capture struct {
	Start int
	End   int
}

// Result is the outcome of recognizing a single path.
//
// ID and Captures are only set for Matched results. Candidates is only set
// for PartiallyMatched results and lists the ids registered below the
// deepest point the path reached.
type Result struct {
	Kind       Kind
	ID         int
	Captures   []Capture
	Candidates []int
}

// Recognizer maps request paths to the ids of registered patterns.
//
// A Recognizer is built by calling Insert during a single-threaded
// configuration phase. Once building is done it is never mutated again,
// and Recognize is safe for concurrent use without locking.
type Recognizer struct {
	root     *node
	asterisk int
	patterns map[int]*compiler.Pattern
}

// New returns an empty recognizer.
func New() *Recognizer {
	return &Recognizer{
		root:     newNode(staticNode, ""),
		asterisk: noID,
		patterns: make(map[int]*compiler.Pattern),
	}
}

// Len returns the number of registered patterns.
func (r *Recognizer) Len() int {
	return len(r.patterns)
}

// Insert registers p under id.
//
// It fails with a *ConflictError wrapping ErrDuplicateURI when a pattern
// with the same Key is already registered under a different id. Ids must
// be non-negative.
func (r *Recognizer) Insert(p *compiler.Pattern, id int) error {
	if id < 0 {
		return ErrInvalidID
	}

	if p.IsAsterisk() {
		if r.asterisk != noID && r.asterisk != id {
			return &ConflictError{Pattern: p.String(), Existing: r.asterisk, Err: ErrDuplicateURI}
		}
		r.asterisk = id
		r.patterns[id] = p
		return nil
	}

	n := r.root
	for _, tok := range tokenize(p) {
		switch tok.kind {
		case staticNode:
			n = n.insertLiteral(tok.literal)
		case paramNode:
			if n.param == nil {
				n.param = newNode(paramNode, "")
			}
			n = n.param
		case catchAllNode:
			if n.catchAll == nil {
				n.catchAll = newNode(catchAllNode, "")
			}
			n = n.catchAll
		}
	}

	if n.id != noID && n.id != id {
		return &ConflictError{Pattern: p.String(), Existing: n.id, Err: ErrDuplicateURI}
	}
	n.id = id
	r.patterns[id] = p

	return nil
}

// Pattern returns the pattern registered under id.
func (r *Recognizer) Pattern(id int) (*compiler.Pattern, bool) {
	p, ok := r.patterns[id]
	return p, ok
}

// Recognize matches path against the registered patterns.
//
// At every branch literal edges are tried first, then the parameter edge,
// then the catch-all edge, backtracking when a choice leads to a dead end.
// When nothing matches, the deepest dead end decides the outcome: paths
// that got no further than the leading '/' are NotMatched, everything else
// is PartiallyMatched with the ids registered below that dead end.
func (r *Recognizer) Recognize(path string) Result {
	if path == "*" {
		if r.asterisk != noID {
			return Result{Kind: Matched, ID: r.asterisk}
		}
		return Result{Kind: NotMatched}
	}
	if path == "" || path[0] != '/' {
		return Result{Kind: NotMatched}
	}

	m := matcher{path: path, deepest: -1}
	if id, ok := m.walk(r.root, 0); ok {
		return Result{Kind: Matched, ID: id, Captures: m.captures}
	}
	if m.deadEnd == nil || m.deepest <= 1 {
		return Result{Kind: NotMatched}
	}

	candidates := m.deadEnd.leaves(nil)
	if len(candidates) == 0 {
		return Result{Kind: NotMatched}
	}
	return Result{Kind: PartiallyMatched, Candidates: candidates}
}

// matcher holds the per-call state of a depth-first match.
type matcher struct {
	path     string
	captures []Capture
	deadEnd  *node
	deepest  int
}

// fail records n as a dead end reached after consuming path[:i].
func (m *matcher) fail(n *node, i int) {
	if i > m.deepest {
		m.deepest = i
		m.deadEnd = n
	}
}

// walk matches path[i:] below n, whose own label has already been consumed.
func (m *matcher) walk(n *node, i int) (int, bool) {
	rest := m.path[i:]

	if rest == "" && n.id != noID {
		return n.id, true
	}

	if rest != "" {
		if child := n.findEdge(rest[0]); child != nil {
			l := commonPrefix(child.label, rest)
			if l == len(child.label) {
				if id, ok := m.walk(child, i+l); ok {
					return id, true
				}
			} else {
				m.fail(child, i+l)
			}
		}

		if n.param != nil {
			end := strings.IndexByte(rest, '/')
			if end < 0 {
				end = len(rest)
			}
			if end > 0 {
				mark := len(m.captures)
				m.captures = append(m.captures, Capture{Start: i, End: i + end})
				if id, ok := m.walk(n.param, i+end); ok {
					return id, true
				}
				m.captures = m.captures[:mark]
			}
		}
	}

	if n.catchAll != nil {
		m.captures = append(m.captures, Capture{Start: i, End: len(m.path)})
		return n.catchAll.id, true
	}

	m.fail(n, i)
	return noID, false
}
