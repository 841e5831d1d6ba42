package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/w-h-a/insight/server"
)

type httpServer struct {
	options server.Options
	server  *http.Server
}

func (s *httpServer) Run() error {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *httpServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func NewServer(handler http.Handler, opts ...server.Option) server.Server {
	options := server.NewOptions(opts...)

	if ms, ok := MiddlewareFrom(options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			handler = ms[i](handler)
		}
	}

	return &httpServer{
		options: options,
		server: &http.Server{
			Addr:    options.Address,
			Handler: handler,
		},
	}
}
