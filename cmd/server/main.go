package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/tropicaldog17/irpf/docs"
	"github.com/tropicaldog17/irpf/internal/app"
	"github.com/tropicaldog17/irpf/internal/config"
	"github.com/tropicaldog17/irpf/internal/handlers"
	"github.com/tropicaldog17/irpf/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	application, err := app.New(cfg, nil, log)
	if err != nil {
		log.Fatal("failed to initialize", zap.Error(err))
	}
	defer application.Close()

	router := handlers.NewRouter(
		handlers.NewStatementHandler(application.Holdings, cfg.Server.MaxUploadBytes, log.Named("statements")),
		handlers.NewRateHandler(application.Rates, log.Named("rates")),
		application.Health,
		log.Named("http"),
	)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}
