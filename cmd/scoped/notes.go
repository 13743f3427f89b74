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
	"fmt"
	"net/http"
	"strings"

	"rivaas.dev/scoped/app"
	"rivaas.dev/scoped/binding"
	"rivaas.dev/scoped/config"
	riverrors "rivaas.dev/scoped/errors"
	"rivaas.dev/scoped/router"
)

const sessionCookie = "scoped_session"

type createNote struct {
	Folder string   `json:"folder" yaml:"folder" toml:"folder" validate:"omitempty,slug"`
	Title  string   `json:"title" yaml:"title" toml:"title" validate:"required,max=120"`
	Body   string   `json:"body" yaml:"body" toml:"body" validate:"max=10000"`
	Tags   []string `json:"tags" yaml:"tags" toml:"tags" validate:"max=10,dive,slug"`
}

type listQuery struct {
	Folder string `param:"folder" validate:"omitempty,slug"`
	Tag    string `query:"tag" validate:"omitempty,slug"`
	Limit  int    `query:"limit" validate:"min=0,max=100"`
}

type session struct {
	User string `json:"user" validate:"required,username"`
}

// newNotesApp assembles the notes service.
func newNotesApp(settings *config.Settings, st *store, opts ...app.Option) (*app.App, error) {
	opts = append([]app.Option{
		app.WithHealthEndpoints(app.WithReadinessCheck("store", st.ping)),
	}, opts...)
	return app.New(settings, notesRoutes(st), opts...)
}

// notesRoutes declares the API:
//
//	OPTIONS *
//	GET     /                               redirect to /api/notes
//	GET     /api/notes                      list, ?tag= and ?limit=
//	POST    /api/notes                      create
//	GET     /api/notes/:id                  read
//	PUT     /api/notes/:id                  replace
//	DELETE  /api/notes/:id                  delete
//	GET     /api/notes/:id/export           markdown export
//	GET     /api/folders/:folder/notes      list one folder
//	POST    /api/session                    sign in (signed cookie)
//	GET     /api/session                    current user
func notesRoutes(st *store) func(*router.Scope) {
	return func(s *router.Scope) {
		s.State(st)

		// The asterisk form only exists under the root prefix.
		if s.Prefix() == "/" {
			s.OPTIONS("*", router.HandlerFunc(func(*router.Input) (*router.Output, error) {
				out := router.Empty(http.StatusNoContent)
				out.Header.Set("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				return out, nil
			}))
		}
		s.GET("/", router.HandlerFunc(func(*router.Input) (*router.Output, error) {
			return router.Redirect(http.StatusFound, "/api/notes"), nil
		}))

		s.Mount("/api", func(api *router.Scope) {
			api.Use(router.MapResult(func(_ *router.Input, out *router.Output, err error) (*router.Output, error) {
				if out != nil {
					out.Header.Set("X-API-Version", "1")
				}
				return out, err
			}))
			api.Fallback(router.FallbackFunc(apiFallback))

			api.Mount("/notes", func(notes *router.Scope) {
				notes.GET("/", router.HandlerFunc(listNotes))
				notes.POST("/", router.HandlerFunc(createNoteHandler))
				notes.GET("/:id", router.HandlerFunc(getNote))
				notes.PUT("/:id", router.HandlerFunc(replaceNote))
				notes.DELETE("/:id", router.HandlerFunc(deleteNote))
				notes.GET("/:id/export", router.AsyncFunc(exportNote))
			})
			api.Mount("/folders/:folder", func(folder *router.Scope) {
				folder.GET("/notes", router.HandlerFunc(listNotes))
			})
			api.Mount("/session", func(sess *router.Scope) {
				sess.POST("/", router.HandlerFunc(signIn))
				sess.GET("/", router.HandlerFunc(whoAmI))
			})
		})
	}
}

// apiFallback answers unknown API paths with a problem document and keeps
// the default 405 and OPTIONS behavior for known resources.
func apiFallback(in *router.Input, cx *router.FallbackContext) (*router.Output, error) {
	if cx.Verdict == router.NotFound {
		return nil, riverrors.WithStatus(fmt.Errorf("no API endpoint at %s", in.Request().URL.Path), http.StatusNotFound)
	}
	return router.DefaultFallback(in, cx)
}

func storeOf(in *router.Input) *store {
	st, _ := router.StateOf[*store](in)
	return st
}

func notFound(err error) error {
	if errors.Is(err, errNoteNotFound) {
		return riverrors.WithStatus(err, http.StatusNotFound)
	}
	return err
}

func listNotes(in *router.Input) (*router.Output, error) {
	q, err := binding.Params[listQuery](in)
	if err != nil {
		return nil, err
	}
	return router.JSON(http.StatusOK, storeOf(in).list(q.Folder, q.Tag, q.Limit))
}

func createNoteHandler(in *router.Input) (*router.Output, error) {
	req, err := binding.Body[createNote](in)
	if err != nil {
		return nil, err
	}
	n := storeOf(in).create(Note{Folder: req.Folder, Title: req.Title, Body: req.Body, Tags: req.Tags})
	out, err := router.JSON(http.StatusCreated, n)
	if err != nil {
		return nil, err
	}
	out.Header.Set("Location", "/api/notes/"+n.ID)
	return out, nil
}

func getNote(in *router.Input) (*router.Output, error) {
	n, err := storeOf(in).get(in.Param("id"))
	if err != nil {
		return nil, notFound(err)
	}
	return router.JSON(http.StatusOK, n)
}

func replaceNote(in *router.Input) (*router.Output, error) {
	req, err := binding.Body[createNote](in, binding.WithDisallowUnknownFields())
	if err != nil {
		return nil, err
	}
	n, err := storeOf(in).update(in.Param("id"), func(n *Note) {
		n.Folder, n.Title, n.Body, n.Tags = req.Folder, req.Title, req.Body, req.Tags
	})
	if err != nil {
		return nil, notFound(err)
	}
	return router.JSON(http.StatusOK, n)
}

func deleteNote(in *router.Input) (*router.Output, error) {
	if err := storeOf(in).delete(in.Param("id")); err != nil {
		return nil, notFound(err)
	}
	return router.Empty(http.StatusNoContent), nil
}

// exportNote renders a note as Markdown off the serving loop.
func exportNote(ctx context.Context, in *router.Input) (*router.Output, error) {
	n, err := storeOf(in).get(in.Param("id"))
	if err != nil {
		return nil, notFound(err)
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", n.Title)
	if len(n.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n\n", strings.Join(n.Tags, ", "))
	}
	b.WriteString(n.Body)
	b.WriteString("\n")

	out := router.Bytes(http.StatusOK, "text/markdown; charset=utf-8", []byte(b.String()))
	out.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", n.ID+".md"))
	return out, nil
}

func signIn(in *router.Input) (*router.Output, error) {
	sess, err := binding.Body[session](in)
	if err != nil {
		return nil, err
	}
	err = in.Cookies().SetSigned(sessionCookie, sess, &http.Cookie{
		Path:     "/api",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	if errors.Is(err, router.ErrNoCookieKeys) {
		return nil, riverrors.WithStatus(errors.New("sessions are disabled: no cookie keys configured"), http.StatusNotImplemented)
	}
	if err != nil {
		return nil, err
	}
	return router.Empty(http.StatusNoContent), nil
}

func whoAmI(in *router.Input) (*router.Output, error) {
	var sess session
	if err := in.Cookies().GetSigned(sessionCookie, &sess); err != nil {
		if errors.Is(err, router.ErrNoCookieKeys) {
			return nil, riverrors.WithStatus(err, http.StatusNotImplemented)
		}
		return nil, riverrors.WithStatus(err, http.StatusUnauthorized)
	}
	return router.JSON(http.StatusOK, sess)
}
