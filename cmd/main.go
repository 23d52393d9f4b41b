package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"secretsanta/internal/auth"
	"secretsanta/internal/config"
	"secretsanta/internal/handlers"
	"secretsanta/internal/metrics"
	"secretsanta/internal/router"
	"secretsanta/internal/services"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// 1. Resolve configuration from flags, env and .env
	cfg, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	// 2. Initialize logging
	var logOut io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	defer logger.Init("secretsanta", cfg.Verbose || cfg.LogFile == "", false, logOut).Close()

	// 3. Initialize the token service
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Fatalf("Failed to create token service: %v", err)
	}
	if cfg.MintToken {
		token, err := tokens.Issue("admin")
		if err != nil {
			logger.Fatalf("Failed to mint token: %v", err)
		}
		fmt.Println(token)
		return
	}

	// 4. Initialize the registry, metrics and draw engine
	registry := services.NewRegistry()
	if len(cfg.Seed) > 0 {
		if _, err := registry.Import(cfg.Seed); err != nil {
			logger.Warningf("Ignoring seed participants: %v", err)
		}
	}
	m := metrics.New(registry.Len)
	engine := services.NewDrawEngine(services.WithObserver(m))

	// 5. Initialize the HTTP handler and router
	var opts []handlers.Option
	if cfg.DevToken {
		logger.Warning("Dev token mode is on: GET /participants hands out admin tokens")
		opts = append(opts, handlers.WithDevTokens(tokens))
	}
	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.NewRouter(router.Config{
		Handler:       handlers.NewHTTPHandler(registry, engine, opts...),
		Verifier:      tokens,
		Metrics:       m,
		AllowedOrigin: cfg.AllowedOrigin,
	})

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Port),
		Handler: r,
	}

	// 6. Shut down gracefully on Ctrl-C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Graceful shutdown failed: %v", err)
		}
	}()

	// 7. Run the server
	logger.Infof("Server starting on http://localhost:%d", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Failed to run server: %v", err)
	}
	<-shutdownDone
	logger.Info("Server stopped")
}
