/*
Package main - travel and attendance analytics engine entry point

Wires configuration, rotating loggers for the HTTP layer and the ingestor,
the store, the
three analytical components, and the HTTP compatibility shim together, then
serves until SIGINT/SIGTERM. Grounded on cmd/api/main.go's
load-config/connect-db/init-services/start-server/graceful-shutdown shape;
the seed-default-X calls have no equivalent here since this engine has no
admin bootstrap data.
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"tama/internal/aggregator"
	"tama/internal/api"
	"tama/internal/config"
	"tama/internal/ingestor"
	"tama/internal/logger"
	"tama/internal/store"
)

func main() {
	cfg, err := config.LoadAppConfig()
	if err != nil {
		panic("failed to load application configuration: " + err.Error())
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		panic("failed to create upload directory: " + err.Error())
	}
	const logsDir = "./logs"
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		panic("failed to create logs directory: " + err.Error())
	}

	httpLog := logger.Setup(logsDir, logger.ComponentHTTP, cfg.AppDebug)
	ingestLog := logger.Setup(logsDir, logger.ComponentIngestor, cfg.AppDebug)

	st, err := store.Open(cfg.DBBackend, cfg.DSN())
	if err != nil {
		httpLog.Fatalf("failed to open store: %v", err)
	}

	agg := aggregator.New(st)
	ing := ingestor.New(st, cfg.UploadDir, ingestLog)

	router := api.NewRouter(st, agg, ing, httpLog, cfg.UploadDir)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	api.Setup(engine, router, cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(8080),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stopSweep := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				st.SweepExpiredProgress()
			case <-stopSweep:
				return
			}
		}
	}()

	go func() {
		httpLog.Infof("starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			httpLog.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	httpLog.Info("shutting down server...")
	close(stopSweep)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		httpLog.Fatalf("server forced to shutdown: %v", err)
	}

	sqlDB, err := st.DB().DB()
	if err == nil {
		sqlDB.Close()
	}

	httpLog.Info("server exited properly")
}
