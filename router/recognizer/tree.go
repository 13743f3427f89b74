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

import "rivaas.dev/scoped/router/compiler"

// noID marks a node that does not terminate any registered pattern.
const noID = -1

type nodeKind uint8

const (
	staticNode nodeKind = iota
	paramNode
	catchAllNode
)

// edge is a static child keyed by the first byte of its label.
type edge struct {
	first byte
	node  *node
}

// node is a node of the byte-run radix tree.
//
// Static nodes consume their label, parameter nodes consume one non-empty
// segment and catch-all nodes consume the remainder of the path. A node is
// terminal when id != noID.
type node struct {
	kind     nodeKind
	label    string
	edges    []edge
	param    *node
	catchAll *node
	id       int
}

func newNode(kind nodeKind, label string) *node {
	return &node{kind: kind, label: label, id: noID}
}

// findEdge returns the static child whose label starts with c, or nil.
func (n *node) findEdge(c byte) *node {
	for i := range n.edges {
		if n.edges[i].first == c {
			return n.edges[i].node
		}
	}
	return nil
}

func (n *node) addEdge(child *node) {
	n.edges = append(n.edges, edge{first: child.label[0], node: child})
}

// split turns n into the first l bytes of its label and moves everything
// else into a new child.
func (n *node) split(l int) {
	tail := &node{
		kind:     staticNode,
		label:    n.label[l:],
		edges:    n.edges,
		param:    n.param,
		catchAll: n.catchAll,
		id:       n.id,
	}
	n.label = n.label[:l]
	n.edges = []edge{{first: tail.label[0], node: tail}}
	n.param = nil
	n.catchAll = nil
	n.id = noID
}

// insertLiteral walks or extends the static path for s and returns the node
// that ends exactly at the end of s.
func (n *node) insertLiteral(s string) *node {
	for s != "" {
		child := n.findEdge(s[0])
		if child == nil {
			child = newNode(staticNode, s)
			n.addEdge(child)
			return child
		}
		l := commonPrefix(child.label, s)
		if l < len(child.label) {
			child.split(l)
		}
		n = child
		s = s[l:]
	}
	return n
}

// leaves appends the ids of every terminal node in the subtree rooted at n.
func (n *node) leaves(ids []int) []int {
	if n.id != noID {
		ids = append(ids, n.id)
	}
	for i := range n.edges {
		ids = n.edges[i].node.leaves(ids)
	}
	if n.param != nil {
		ids = n.param.leaves(ids)
	}
	if n.catchAll != nil {
		ids = n.catchAll.leaves(ids)
	}
	return ids
}

func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// token is one insertion step derived from a pattern.
type token struct {
	kind    nodeKind
	literal string
}

// tokenize flattens a pattern into literal byte runs and capture slots.
// Slashes belong to the literal runs, so "/users/:id/" becomes
// ["/users/", param, "/"].
func tokenize(p *compiler.Pattern) []token {
	var (
		tokens []token
		buf    []byte
	)
	flush := func() {
		if len(buf) > 0 {
			tokens = append(tokens, token{kind: staticNode, literal: string(buf)})
			buf = buf[:0]
		}
	}
	for _, seg := range p.Segments() {
		buf = append(buf, '/')
		switch seg.Kind {
		case compiler.Literal:
			buf = append(buf, seg.Value...)
		case compiler.Param:
			flush()
			tokens = append(tokens, token{kind: paramNode})
		case compiler.CatchAll:
			flush()
			tokens = append(tokens, token{kind: catchAllNode})
		}
	}
	if len(p.Segments()) == 0 || p.HasTrailingSlash() {
		buf = append(buf, '/')
	}
	flush()
	return tokens
}
