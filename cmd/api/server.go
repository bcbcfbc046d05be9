package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wildbook-backend/pkg/container"
	"wildbook-backend/pkg/logger"
)

// Serve builds the container, starts the HTTP server and blocks until a
// shutdown signal arrives.
func Serve() {
	appContainer, err := container.NewContainer()
	if err != nil {
		logger.Error("failed to initialize container", err)
		os.Exit(1)
	}
	defer appContainer.Cleanup()

	router := SetupRouter(appContainer)

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", appContainer.Config.App.Port),
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("server starting", map[string]interface{}{
			"port": appContainer.Config.App.Port,
			"env":  appContainer.Config.App.Environment,
		})

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", err)
	}

	logger.Info("server exited", nil)
}
