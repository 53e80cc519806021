package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/intelligrit/bookcrawl/internal/catalog"
	"github.com/intelligrit/bookcrawl/internal/config"
	"github.com/intelligrit/bookcrawl/internal/model"
)

// Crawler is the part of catalog.Crawler the server needs.
type Crawler interface {
	Run(ctx context.Context, opts catalog.Options) ([]model.Book, error)
}

// Server exposes the crawl over HTTP.
type Server struct {
	Crawler Crawler
	Limits  config.LimitsConfig
	Addr    string
	Log     *slog.Logger

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /crawl", s.handleCrawl)
	return mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:         s.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}

	s.logger().Info("serving", "addr", s.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}
