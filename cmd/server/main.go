package main

import (
	"net/http"

	"github.com/Odin94/Progeny-vtm-v5-character-creator-sub001/config"
	"github.com/Odin94/Progeny-vtm-v5-character-creator-sub001/internal/auth"
	"github.com/Odin94/Progeny-vtm-v5-character-creator-sub001/internal/db"
	"github.com/Odin94/Progeny-vtm-v5-character-creator-sub001/internal/middlewares"
	"github.com/Odin94/Progeny-vtm-v5-character-creator-sub001/internal/realtime"
	"github.com/Odin94/Progeny-vtm-v5-character-creator-sub001/internal/repository"
	"github.com/Odin94/Progeny-vtm-v5-character-creator-sub001/pkg/log"

	muxHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load config and init systems
	cfg := config.LoadConfig()
	log.InitLogger()
	db.InitDB(cfg)

	// Router & CORS
	r := mux.NewRouter()
	cors := muxHandlers.CORS(
		muxHandlers.AllowedOrigins(cfg.AllowedOrigins),
		muxHandlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodOptions,
		}),
		muxHandlers.AllowedHeaders([]string{
			"Content-Type", "Authorization",
		}),
		muxHandlers.AllowCredentials(),
	)
	r.Use(middlewares.PrometheusMetricsMiddleware)

	// Core registry/dispatcher
	registry := realtime.NewRegistry()
	characterRepo := repository.NewCharacterRepository(db.DB)
	dispatcher := realtime.NewDispatcher(registry, characterRepo)

	// ==== SYNC ====
	r.HandleFunc("/ws", realtime.Handler(registry, dispatcher, auth.ResolveIdentity(cfg.JWTSecret)))

	// ==== HEALTH & METRICS ====
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())

	// ==== START SERVER ====
	handler := cors(r)
	log.Logger.Info().Msgf("Sync server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Logger.Fatal().Err(err).Msg("server failed")
	}
}
