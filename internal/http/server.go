package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/yungbote/deckforge-backend/internal/platform/logger"
)

type ServerOptions struct {
	Addr              string
	ReadHeaderTimeout time.Duration
}

type Server struct {
	log *logger.Logger
	srv *http.Server
}

func NewServer(log *logger.Logger, cfg RouterConfig, opts ServerOptions) *Server {
	if cfg.Log == nil {
		cfg.Log = log
	}
	return &Server{
		log: log.With("component", "HTTPServer"),
		srv: &http.Server{
			Addr:              opts.Addr,
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: opts.ReadHeaderTimeout,
		},
	}
}

func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Run blocks until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.log.Info("HTTP server listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
