package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inamate/spider/internal/auth"
	"github.com/inamate/spider/internal/collab"
	"github.com/inamate/spider/internal/config"
	"github.com/inamate/spider/internal/control"
	"github.com/inamate/spider/internal/export"
	mw "github.com/inamate/spider/internal/middleware"
	"github.com/inamate/spider/internal/spider"
)

func newRouter(cfg *config.Config, hub *collab.Hub, authService *auth.Service) http.Handler {
	authHandler := auth.NewHandler(authService)
	controlHandler := control.NewHandler(control.NewService(hub))
	exportHandler := export.NewHandler(hub, spider.Build, cfg.FfmpegPath, cfg.SnapshotWidth, cfg.SnapshotHeight)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)

	// Auth routes (public)
	r.HandleFunc("/auth/token", authHandler.Token).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Single frames are cheap enough to serve publicly
	r.HandleFunc("/export/frame.png", exportHandler.Frame).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/token/refresh", authHandler.Refresh).Methods("POST")
	api.HandleFunc("/state", controlHandler.State).Methods("GET")
	api.HandleFunc("/joints", controlHandler.Joints).Methods("GET")
	api.HandleFunc("/intents", controlHandler.Apply).Methods("POST")
	api.HandleFunc("/poses", controlHandler.Poses).Methods("GET")
	api.HandleFunc("/poses/{name}", controlHandler.ApplyPose).Methods("POST")
	api.HandleFunc("/export/tour", exportHandler.Tour).Methods("POST")

	// WebSocket endpoint
	r.HandleFunc("/ws", collab.ServeWS(hub, authService, cfg.OriginHosts()))

	// preflights are answered before routing
	return mw.CORS(cfg.Origins())(r)
}
