// Package httpapi is the HTTP transport adapting the teacher's single
// "dispatch on message type" server loop (internal/net/server.go in the
// teacher repo) into five gin routes over the symbol registry in
// internal/actor. It owns request parsing, the {message, status_code}
// response envelope, and CORS.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"matchbook/internal/actor"
)

// Server is the HTTP front door for the matching engine: a gin router
// wrapped in a permissive CORS handler, bound the way the teacher's
// net.Server was (address/port constructor params, Run(ctx) blocks, a
// cancellable shutdown).
type Server struct {
	registry *actor.Registry
	router   *gin.Engine
	httpSrv  *http.Server
	address  string
}

// New constructs a Server bound to address (e.g. "0.0.0.0:8000").
func New(address string, registry *actor.Registry) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(), gin.Recovery())

	s := &Server{registry: registry, router: router, address: address}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.Group("/api")
	api.POST("/register_order", s.handleRegisterOrder)
	api.POST("/cancel_order", s.handleCancelOrder)
	api.POST("/order", s.handleGetOrder)
	api.POST("/orderbook", s.handleOrderbook)
	api.POST("/get_best_order", s.handleGetBestOrder)
}

// requestLogger replaces gin's default logger with one line of structured
// zerolog output per request, tagged with a uuid correlation id — the same
// call shape the teacher used (log.Info()/log.Error()...Msg(...)), with
// google/uuid repurposed from order identity (teacher) to request identity
// (here), since the engine's own order ids are monotonically assigned
// uint64s per spec.md §3.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("requestID", requestID)
		start := time.Now()
		c.Next()
		log.Info().
			Str("requestID", requestID).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("handled request")
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled, matching the
// teacher's cmd/server main.go shape (signal.NotifyContext + Run(ctx)).
func (s *Server) Run(ctx context.Context) error {
	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(s.router)

	s.httpSrv = &http.Server{
		Addr:    s.address,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", s.address).Msg("http server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info().Msg("http server shutting down")
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
