// MIT License
//
// Copyright (c) 2025-2026 The swrcache authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package admin exposes diagnostic HTTP endpoints for swrcache.
package admin

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/offlinekit/swrcache/log"
)

const defaultAdminBasePath = "/_swrcache/admin"

// SnapshotProvider supplies data snapshots and invalidation hooks for admin
// endpoints.
type SnapshotProvider interface {
	// SnapshotStore returns the current store view or an error.
	SnapshotStore(ctx context.Context) (StoreSnapshot, error)
	// InvalidatePattern removes entries whose keys match the glob pattern.
	InvalidatePattern(ctx context.Context, pattern string) (InvalidationResult, error)
}

// Server hosts the admin HTTP endpoints.
type Server struct {
	cfg      Config
	provider SnapshotProvider
	logger   log.Logger
	server   *http.Server
	listener net.Listener
}

// NewServer constructs an admin server with the given configuration.
func NewServer(cfg Config, provider SnapshotProvider, logger log.Logger) *Server {
	return &Server{
		cfg:      cfg.Normalize(),
		provider: provider,
		logger:   logger,
	}
}

// Start begins serving the admin endpoints.
func (s *Server) Start(ctx context.Context) error {
	if s.cfg.ListenAddr == "" {
		return nil
	}

	if s.provider == nil {
		return errors.New("admin snapshot provider is required")
	}

	mux := http.NewServeMux()
	handler := newHandler(s.cfg.BasePath, s.provider)
	handler.register(mux)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	listener, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}

	if s.cfg.TLSConfig != nil {
		listener = tls.NewListener(listener, s.cfg.TLSConfig)
	}

	s.listener = listener
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if s.logger != nil {
				s.logger.Errorf("admin server error: %v", err)
			}
		}
	}()

	return waitForAdminConnect(ctx, listener.Addr().String())
}

// Shutdown stops the admin HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type handler struct {
	basePath string
	provider SnapshotProvider
}

func newHandler(basePath string, provider SnapshotProvider) *handler {
	return &handler{
		basePath: "/" + strings.Trim(basePath, "/"),
		provider: provider,
	}
}

func (h *handler) register(mux *http.ServeMux) {
	mux.HandleFunc(h.basePath+"/stats", h.handleStats)
	mux.HandleFunc(h.basePath+"/invalidate", h.handleInvalidate)
}

func (h *handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snapshot, err := h.provider.SnapshotStore(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, snapshot)
}

func (h *handler) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		http.Error(w, "pattern query parameter is required", http.StatusBadRequest)
		return
	}
	result, err := h.provider.InvalidatePattern(r.Context(), pattern)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(value)
}

func waitForAdminConnect(ctx context.Context, address string) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(5 * time.Second)
	}

	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", address, 200*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}

	return context.DeadlineExceeded
}
