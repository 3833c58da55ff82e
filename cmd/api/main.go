package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pavankumar06T/justice-legal-chatbot/internal/app"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/config"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg := config.LoadConfig()

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	application, err := app.NewApp(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatalw("startup failed", "error", err)
	}
	defer application.Close()

	go func() {
		if err := application.Server.Start(); err != nil {
			zlog.Fatalw("server error", "error", err)
		}
	}()

	zlog.Info("justice chatbot backend is running; DB connected and bootstrapped")
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		zlog.Errorw("shutdown error", "error", err)
	}
}
