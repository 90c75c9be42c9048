package server

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	http *http.Server
	log  logrus.FieldLogger
}

// New creates a server listening on addr
func New(addr string, handler http.Handler, log logrus.FieldLogger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.http.Addr
}

// Start serves until Shutdown is called. It returns nil after a graceful
// shutdown.
func (s *Server) Start() error {
	s.log.WithField("addr", s.http.Addr).Info("starting server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to start server")
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down server")
	return s.http.Shutdown(ctx)
}
