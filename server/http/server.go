package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/w-h-a/agentmem/server"
)

type httpServer struct {
	options server.Options
	srv     *http.Server
}

func (s *httpServer) Options() server.Options {
	return s.options
}

// Start blocks until the server stops. A graceful Stop is not an error.
func (s *httpServer) Start() error {
	clog.FromContext(s.options.Context).Info("http server starting", "addr", s.options.Address, "name", s.options.Name)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *httpServer) Stop(ctx context.Context) error {
	clog.FromContext(ctx).Info("http server shutting down", "name", s.options.Name)
	return s.srv.Shutdown(ctx)
}

func (s *httpServer) String() string {
	return "http"
}

func NewServer(opts ...server.Option) server.Server {
	options := server.NewOptions(opts...)

	var handler http.Handler = http.NotFoundHandler()
	if h, ok := HandlerFrom(options.Context); ok && h != nil {
		handler = h
	}

	if ms, ok := MiddlewareFrom(options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			handler = ms[i](handler)
		}
	}

	return &httpServer{
		options: options,
		srv: &http.Server{
			Addr:              options.Address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}
