package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"userposts/cmd/app"
	"userposts/internal/config"
	handlers "userposts/internal/handler"
	"userposts/internal/middleware"
)

func main() {
	// setting up config
	cfg := config.LoadConfig()

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resources, _, services := app.App(ctx, cfg, logger)
	defer resources.Close()

	handler := handlers.NewHandlers(services, logger)

	// setting up routes
	router := handlers.NewRouter(handler)

	handlerChain := middleware.Standard(router, logger)

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           handlerChain,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", slog.String("error", err.Error()))
		}
	}()

	// Starting the server
	logger.Info("server is running", slog.String("addr", fmt.Sprintf("http://localhost%s", addr)))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
