package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/chipp-ai/dispatch/engine/action/router"
	"github.com/chipp-ai/dispatch/engine/action/store"
	"github.com/chipp-ai/dispatch/engine/runner"
	"github.com/chipp-ai/dispatch/pkg/config"
	"github.com/chipp-ai/dispatch/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the action execution HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := setupLogger(cmd, cfg); err != nil {
		return err
	}
	log := logger.GetDefault()
	ctx = logger.ContextWithLogger(ctx, log)

	repo := store.NewMemory()
	service := runner.NewService(repo,
		runner.WithExecutor(runner.NewExecutor(runner.WithMaxBodyBytes(cfg.Engine.MaxBodyBytes))),
		runner.WithMaxConcurrency(cfg.Engine.MaxConcurrency),
		runner.WithMaxTimeout(cfg.Engine.MaxTimeout),
		runner.WithMaxGraphNodes(cfg.Engine.MaxGraphNodes),
	)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), contextLogger(log), requestLogger(log))
	router.Register(engine.Group("/api/v0"), &router.State{Service: service, Repo: repo})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setupLogger(cmd *cobra.Command, cfg *config.Config) error {
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return fmt.Errorf("failed to get log-json flag: %w", err)
	}
	if !cmd.Flags().Changed("log-level") {
		level = cfg.Log.Level
	}
	if !cmd.Flags().Changed("log-json") {
		logJSON = cfg.Log.JSON
	}
	logger.Init(&logger.Config{
		Level:      logger.LogLevel(level),
		JSON:       logJSON,
		TimeFormat: "15:04:05",
	})
	return nil
}

// contextLogger makes the process logger reachable through the request
// context for every handler and use case downstream.
func contextLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(logger.ContextWithLogger(c.Request.Context(), log))
		c.Next()
	}
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
