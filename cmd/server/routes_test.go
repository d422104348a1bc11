package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/inamate/spider/internal/auth"
	"github.com/inamate/spider/internal/collab"
	"github.com/inamate/spider/internal/config"
	"github.com/inamate/spider/internal/document"
	"github.com/inamate/spider/internal/engine"
	"github.com/inamate/spider/internal/spider"
)

func TestRoutes(t *testing.T) {
	cfg := &config.Config{
		AllowedOrigins: "http://localhost:5173",
		FfmpegPath:     "ffmpeg",
		FPS:            30,
		SnapshotWidth:  64,
		SnapshotHeight: 64,
	}
	e := engine.NewEngine(spider.Build(), document.DefaultLibrary(), engine.DefaultOptions())
	hub := collab.NewHub(e, cfg.FPS)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	authService := auth.NewService("test-secret", "")
	res, err := authService.Login("ada", "")
	if err != nil {
		t.Fatal(err)
	}
	h := newRouter(cfg, hub, authService)

	tests := []struct {
		name   string
		method string
		path   string
		token  bool
		want   int
	}{
		{"health", http.MethodGet, "/health", false, http.StatusOK},
		{"public frame", http.MethodGet, "/export/frame.png", false, http.StatusOK},
		{"tour needs token", http.MethodPost, "/api/export/tour", false, http.StatusUnauthorized},
		{"tour reaches handler", http.MethodPost, "/api/export/tour?format=avi", true, http.StatusBadRequest},
		{"old tour path", http.MethodPost, "/export/tour", true, http.StatusNotFound},
		{"state needs token", http.MethodGet, "/api/state", false, http.StatusUnauthorized},
		{"state", http.MethodGet, "/api/state", true, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token {
				req.Header.Set("Authorization", "Bearer "+res.Token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}
