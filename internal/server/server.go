// Package server serves the build directory during development.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/annieversary/sorg/internal/logfields"
)

// Server is the development file server. It serves the build output
// with caching disabled so edits show up on plain refresh.
type Server struct {
	dir  string
	port int
	log  *slog.Logger
}

// New prepares a server for the given build directory.
func New(dir string, port int, log *slog.Logger) *Server {
	return &Server{dir: dir, port: port, log: log}
}

// ListenAndServe blocks until ctx is done or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: noCache(http.FileServer(http.Dir(s.dir))),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("serving site", slog.Int("port", s.port), logfields.Out(s.dir))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// noCache disables browser caching; a dev server that serves stale
// pages after a rebuild is worse than none.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}
