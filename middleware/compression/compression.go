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

package compression

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"

	"rivaas.dev/scoped/router"
)

// Content codings negotiated by the modifier.
const (
	EncodingBrotli = "br"
	EncodingGzip   = "gzip"
)

type config struct {
	gzipLevel           int
	brotliLevel         int
	gzip                bool
	brotli              bool
	minSize             int
	excludePaths        map[string]bool
	excludeExtensions   map[string]bool
	excludeContentTypes map[string]bool
	logger              *slog.Logger
}

func defaultConfig() *config {
	return &config{
		gzipLevel:         gzip.DefaultCompression,
		brotliLevel:       4,
		gzip:              true,
		brotli:            true,
		excludePaths:      make(map[string]bool),
		excludeExtensions: make(map[string]bool),
		excludeContentTypes: map[string]bool{
			"text/event-stream":        true,
			"application/grpc":         true,
			"application/octet-stream": true,
		},
	}
}

var (
	poolsMu           sync.Mutex
	gzipWriterPools   = make(map[int]*sync.Pool)
	brotliWriterPools = make(map[int]*sync.Pool)
)

// encoder is the part of gzip.Writer and brotli.Writer the modifier uses.
type encoder interface {
	io.WriteCloser
	Reset(w io.Writer)
}

func writerPool(encoding string, level int) *sync.Pool {
	poolsMu.Lock()
	defer poolsMu.Unlock()

	pools := gzipWriterPools
	if encoding == EncodingBrotli {
		pools = brotliWriterPools
	}
	if pool, ok := pools[level]; ok {
		return pool
	}
	pool := &sync.Pool{
		New: func() any {
			if encoding == EncodingBrotli {
				return brotli.NewWriterLevel(io.Discard, level)
			}
			// Levels are checked by the options.
			w, _ := gzip.NewWriterLevel(io.Discard, level)
			return w
		},
	}
	pools[level] = pool
	return pool
}

func (cfg *config) level(encoding string) int {
	if encoding == EncodingBrotli {
		return cfg.brotliLevel
	}
	return cfg.gzipLevel
}

// encode returns a pooled encoder writing to dst and a function returning
// it to the pool once it has been closed.
func (cfg *config) encode(encoding string, dst io.Writer) (encoder, func()) {
	pool := writerPool(encoding, cfg.level(encoding))
	enc := pool.Get().(encoder)
	enc.Reset(dst)
	return enc, func() {
		enc.Reset(io.Discard)
		pool.Put(enc)
	}
}

// New returns a modifier compressing response bodies with gzip or Brotli.
//
// Example:
//
//	s.Use(compression.New(
//	    compression.WithGzipLevel(gzip.BestSpeed),
//	    compression.WithMinSize(1024),
//	    compression.WithExcludePaths("/metrics"),
//	))
func New(opts ...Option) router.Modifier {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return router.MapResult(func(in *router.Input, out *router.Output, err error) (*router.Output, error) {
		if err != nil || out == nil {
			return out, err
		}
		return cfg.compress(in, out), nil
	})
}

func (cfg *config) compress(in *router.Input, out *router.Output) *router.Output {
	req := in.Request()
	if cfg.excludePaths[req.URL.Path] || cfg.excludeExtensions[path.Ext(req.URL.Path)] {
		return out
	}
	if shouldSkipStatus(out.Status) || out.Header.Get("Content-Encoding") != "" {
		return out
	}
	if shouldSkipContentType(out.Header.Get("Content-Type"), cfg.excludeContentTypes) {
		return out
	}
	encoding := chooseEncoding(req.Header.Get("Accept-Encoding"), cfg)
	if encoding == "" {
		return out
	}

	n, known := out.ContentLength()
	if !known {
		if req.Method == http.MethodHead {
			return out
		}
		return cfg.compressStream(encoding, out)
	}
	if n == 0 || n < int64(cfg.minSize) {
		return out
	}

	var buf bytes.Buffer
	enc, release := cfg.encode(encoding, &buf)
	_, err := io.Copy(enc, out.Body())
	if cerr := enc.Close(); err == nil {
		err = cerr
	}
	release()
	if err != nil {
		cfg.log(in).Error("response compression failed", "encoding", encoding, "error", err)
		return out
	}
	if int64(buf.Len()) >= n {
		return out
	}

	compressed := router.NewOutput(out.Status, buf.Bytes())
	compressed.Header = out.Header
	markEncoded(compressed.Header, encoding)
	return compressed
}

// compressStream encodes the stream through a pipe as the body is written.
// Closing the returned body stops the encoder and closes the source.
func (cfg *config) compressStream(encoding string, out *router.Output) *router.Output {
	src := out.Body()
	pr, pw := io.Pipe()
	go func() {
		enc, release := cfg.encode(encoding, pw)
		_, err := io.Copy(enc, src)
		if cerr := enc.Close(); err == nil {
			err = cerr
		}
		release()
		if c, ok := src.(io.Closer); ok {
			_ = c.Close()
		}
		pw.CloseWithError(err)
	}()

	compressed := router.Stream(out.Status, "", pr)
	compressed.Header = out.Header
	markEncoded(compressed.Header, encoding)
	return compressed
}

func markEncoded(h http.Header, encoding string) {
	h.Set("Content-Encoding", encoding)
	h.Del("Content-Length")
	for _, v := range h.Values("Vary") {
		for _, f := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(f), "Accept-Encoding") {
				return
			}
		}
	}
	h.Add("Vary", "Accept-Encoding")
}

func (cfg *config) log(in *router.Input) *slog.Logger {
	if cfg.logger != nil {
		return cfg.logger
	}
	return in.Logger()
}

// shouldSkipStatus reports statuses whose bodies are absent or partial.
func shouldSkipStatus(code int) bool {
	return code < http.StatusOK ||
		code == http.StatusNoContent ||
		code == http.StatusNotModified ||
		code == http.StatusPartialContent
}

func shouldSkipContentType(ct string, excludes map[string]bool) bool {
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(ct, ";", 2)[0])
	}
	return excludes[strings.ToLower(mediaType)]
}

// chooseEncoding picks Brotli when it is weighted at least as high as gzip.
func chooseEncoding(acceptEncoding string, cfg *config) string {
	if acceptEncoding == "" {
		return ""
	}

	brQ := parseQValue(acceptEncoding, EncodingBrotli)
	gzipQ := parseQValue(acceptEncoding, EncodingGzip)

	if cfg.brotli && brQ > 0 && brQ >= gzipQ {
		return EncodingBrotli
	}
	if cfg.gzip && gzipQ > 0 {
		return EncodingGzip
	}
	if cfg.brotli && brQ > 0 {
		return EncodingBrotli
	}
	return ""
}

// parseQValue returns the quality the header assigns to encoding: -1 if it
// is not listed, otherwise its q value with a wildcard as fallback.
func parseQValue(accept, encoding string) float64 {
	wildcard := -1.0
	for _, part := range strings.Split(accept, ",") {
		name, params, _ := strings.Cut(part, ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if name != encoding && name != "*" {
			continue
		}
		q := 1.0
		for _, p := range strings.Split(params, ";") {
			k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
			if !ok || strings.ToLower(strings.TrimSpace(k)) != "q" {
				continue
			}
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				q = f
			}
		}
		if name == encoding {
			return q
		}
		wildcard = q
	}
	return wildcard
}
