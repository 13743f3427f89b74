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

package main

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

var errNoteNotFound = errors.New("note not found")

// Note is a stored note.
type Note struct {
	ID      string    `json:"id"`
	Folder  string    `json:"folder"`
	Title   string    `json:"title"`
	Body    string    `json:"body,omitempty"`
	Tags    []string  `json:"tags,omitempty"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// store keeps notes in memory in creation order.
type store struct {
	mu    sync.RWMutex
	notes map[string]*Note
	order []string
	now   func() time.Time
}

func newStore() *store {
	return &store{notes: make(map[string]*Note), now: time.Now}
}

func (s *store) ping(context.Context) error { return nil }

func (s *store) create(n Note) Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = uuid.NewString()
	n.Created = s.now().UTC()
	n.Updated = n.Created
	s.notes[n.ID] = &n
	s.order = append(s.order, n.ID)
	return n
}

func (s *store) get(id string) (Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[id]
	if !ok {
		return Note{}, errNoteNotFound
	}
	return *n, nil
}

func (s *store) update(id string, fn func(*Note)) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok {
		return Note{}, errNoteNotFound
	}
	fn(n)
	n.Updated = s.now().UTC()
	return *n, nil
}

func (s *store) delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[id]; !ok {
		return errNoteNotFound
	}
	delete(s.notes, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

// list returns up to limit notes matching folder and tag; empty filters
// match everything and limit 0 means no limit.
func (s *store) list(folder, tag string, limit int) []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Note, 0, len(s.order))
	for _, id := range s.order {
		n := s.notes[id]
		if folder != "" && n.Folder != folder {
			continue
		}
		if tag != "" && !slices.Contains(n.Tags, tag) {
			continue
		}
		out = append(out, *n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
