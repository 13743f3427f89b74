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

//go:build !integration

package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"rivaas.dev/scoped/router/compiler"
)

// text returns a handler answering any method with body s.
func text(s string) HandlerFunc {
	return func(*Input) (*Output, error) {
		return Text(http.StatusOK, s), nil
	}
}

// pendingHandle stays pending until open is closed, then answers with body.
type pendingHandle struct {
	open  chan struct{}
	body  string
	polls int
}

func (h *pendingHandle) Poll(in *Input) Poll {
	h.polls++
	select {
	case <-h.open:
		return Ready(Text(http.StatusOK, h.body))
	default:
		go func() {
			<-h.open
			in.Waker().Wake()
		}()
		return Pending()
	}
}

// handleHandler serves a fixed Handle factory.
type handleHandler struct {
	methods Methods
	handle  func() Handle
}

func (h handleHandler) AllowedMethods() Methods { return h.methods }
func (h handleHandler) Handle() Handle          { return h.handle() }

// serveTask runs a synchronous request to completion.
func serveTask(t *testing.T, app *App, method, target string) *Output {
	t.Helper()

	task := app.NewTask(httptest.NewRequest(method, target, nil))
	out, done := task.Poll()
	require.True(t, done, "task should complete on the first poll")
	require.NotNil(t, out)

	return out
}

// body reads the buffered body of out.
func body(t *testing.T, out *Output) string {
	t.Helper()

	b, err := io.ReadAll(out.Body())
	require.NoError(t, err)

	return string(b)
}

func compilePattern(t *testing.T, s string) *compiler.Pattern {
	t.Helper()

	p, err := compiler.Compile(s)
	require.NoError(t, err)

	return p
}
