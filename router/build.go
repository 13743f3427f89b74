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
	"slices"

	"rivaas.dev/scoped/router/compiler"
	"rivaas.dev/scoped/router/recognizer"
)

// resourceKey identifies a resource: one exact URI within one scope.
type resourceKey struct {
	uri   string
	scope ScopeID
}

// builder collects declarations until the application is frozen.
// It is used by a single goroutine and discarded after New returns.
type builder struct {
	app        *App
	scopes     []*scopeNode
	resources  []*Resource
	byKey      map[resourceKey]*Resource
	recognizer *recognizer.Recognizer
	err        error
}

func newBuilder(app *App, rootPrefix *compiler.Pattern) *builder {
	b := &builder{
		app:        app,
		byKey:      make(map[resourceKey]*Resource),
		recognizer: recognizer.New(),
	}
	b.scopes = append(b.scopes, &scopeNode{
		id:        RootScope,
		parent:    RootScope,
		prefix:    rootPrefix,
		ancestors: []ScopeID{RootScope},
	})
	return b
}

func (b *builder) newScope(parent ScopeID, prefix *compiler.Pattern) *scopeNode {
	id := ScopeID(len(b.scopes))
	ancestors := append(slices.Clone(b.scopes[parent].ancestors), id)
	n := &scopeNode{id: id, parent: parent, prefix: prefix, ancestors: ancestors}
	b.scopes = append(b.scopes, n)
	return n
}

// register resolves the full URI of pattern in s and adds an endpoint.
func (b *builder) register(s *Scope, pattern string, h Handler) {
	p, err := compiler.Compile(pattern)
	if err != nil {
		s.fail(pattern, "", err)
		return
	}
	full, err := s.node().prefix.Join(p)
	if err != nil {
		s.fail(pattern, "", err)
		return
	}

	methods := h.AllowedMethods()
	if methods != nil {
		methods = NewMethods(methods...)
	}
	if full.IsAsterisk() && !isAsteriskOptions(methods) {
		s.fail(pattern, methods.String(), ErrAsteriskWithoutOptions)
		return
	}

	key := resourceKey{uri: full.String(), scope: s.id}
	res, existed := b.byKey[key]
	if !existed {
		res = newResource(len(b.resources), s.id, full)
	}
	if _, err := res.addEndpoint(methods, h); err != nil {
		s.fail(full.String(), methods.String(), err)
		return
	}
	if !existed {
		if err := b.recognizer.Insert(full, res.id); err != nil {
			s.fail(full.String(), methods.String(), err)
			return
		}
		b.byKey[key] = res
		b.resources = append(b.resources, res)
	}

	b.diagnose(DiagRouteRegistered, "route registered", map[string]any{
		"uri":      full.String(),
		"methods":  describeMethods(methods),
		"scope":    int(s.id),
		"resource": res.id,
	})
}

// freeze applies modifiers and hands the arena over to the app.
func (b *builder) freeze() {
	for _, res := range b.resources {
		var mods []Modifier
		for _, id := range b.scopes[res.scope].ancestors {
			mods = append(mods, b.scopes[id].modifiers...)
		}
		if len(mods) == 0 {
			continue
		}
		for _, ep := range res.endpoints {
			ep.handler = chain(ep.original, mods)
		}
	}

	b.app.scopes = b.scopes
	b.app.resources = b.resources
	b.app.recognizer = b.recognizer
}

func (b *builder) diagnose(kind DiagnosticKind, msg string, fields map[string]any) {
	if b.app.diagnostics != nil {
		b.app.diagnostics.OnDiagnostic(DiagnosticEvent{Kind: kind, Message: msg, Fields: fields})
	}
}

func describeMethods(m Methods) string {
	if m == nil {
		return "*"
	}
	return m.String()
}
