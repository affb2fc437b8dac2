// Package api exposes the REST management surface: rule CRUD, client
// lifecycle and login, message logs, chats, and settings.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zulandar/semaphore/internal/relay"
)

// StartOpts holds configuration for the API server.
type StartOpts struct {
	DB         *gorm.DB
	Supervisor *relay.Supervisor
	Port       int
	Out        io.Writer
}

// Start launches the API HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("api: db is required")
	}
	if opts.Supervisor == nil {
		return fmt.Errorf("api: supervisor is required")
	}
	if opts.Port <= 0 {
		opts.Port = 9000
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	registerRoutes(router, opts.DB, opts.Supervisor)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "API listening on http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, gdb *gorm.DB, sup *relay.Supervisor) {
	apiGroup := router.Group("/api")

	registerRuleRoutes(apiGroup, gdb, sup)
	registerClientRoutes(apiGroup, gdb, sup)
	registerLogRoutes(apiGroup, gdb)
	registerMiscRoutes(apiGroup, gdb, sup)
}

// jsonError writes a uniform error payload.
func jsonError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}
