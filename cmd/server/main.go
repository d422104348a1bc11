package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inamate/spider/internal/auth"
	"github.com/inamate/spider/internal/collab"
	"github.com/inamate/spider/internal/config"
	"github.com/inamate/spider/internal/document"
	"github.com/inamate/spider/internal/engine"
	"github.com/inamate/spider/internal/spider"
)

func main() {
	hashPassword := flag.String("hash-password", "", "print a bcrypt hash for CONTROL_PASSWORD_HASH and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	library, err := document.LoadLibrary(cfg.PosesFile)
	if err != nil {
		slog.Error("load poses", "file", cfg.PosesFile, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := engine.NewEngine(spider.Build(), library, engine.Options{
		RotationStep: cfg.RotationStep,
		ViewStep:     cfg.ViewStep,
		Logger:       slog.Default().With("component", "engine"),
	})

	hub := collab.NewHub(e, cfg.FPS)
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(ctx)
	}()

	authService := auth.NewService(cfg.JWTSecret, cfg.ControlPasswordHash)
	if authService.Open() {
		slog.Warn("CONTROL_PASSWORD_HASH not set, any name may take control")
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      newRouter(cfg, hub, authService),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop the hub first so connected clients are closed
		cancel()
		<-hubDone

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "poses", library.Names(), "fps", cfg.FPS)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
