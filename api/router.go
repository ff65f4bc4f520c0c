// Package api assembles the HTTP server of the simulator.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/kilianp07/pvsim/api/runs"
	"github.com/kilianp07/pvsim/api/simulation"
	"github.com/kilianp07/pvsim/config"
	"github.com/kilianp07/pvsim/core/monitoring"
	"github.com/kilianp07/pvsim/core/runstore"
	"github.com/kilianp07/pvsim/infra/logger"
	"github.com/kilianp07/pvsim/infra/metrics"
)

// Backend runs simulations and remembers recent runs.
type Backend interface {
	simulation.Simulator
	Runs() runstore.Store
}

// NewRouter returns the API handler: /api/v1 routes, /metrics and CORS.
func NewRouter(b Backend, cfg *config.Config, log logger.Logger) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), reportPanics, requestLog(log))

	v1 := r.Group("/api/v1")
	authn := simulation.RequireAuth(cfg.API)
	simulation.NewHandler(b, cfg).Register(v1, authn)
	runs.NewHandler(b.Runs()).Register(v1, authn)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.API.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(r)
}

// reportPanics forwards handler panics to the error tracker before gin's
// recovery turns them into a 500.
func reportPanics(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			monitoring.CaptureException(monitoring.PanicError{Value: r}, map[string]string{
				"kind": "panic",
				"path": c.Request.URL.Path,
			})
			panic(r)
		}
	}()
	c.Next()
}

func requestLog(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := map[string]any{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}
		if sub := c.GetString(simulation.SubjectKey); sub != "" {
			fields["subject"] = sub
		}
		log.Debugw("request", fields)
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, readTimeout time.Duration, log logger.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: readTimeout, ReadTimeout: readTimeout}
	errCh := make(chan error, 1)
	go func() {
		log.Infof("api listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
