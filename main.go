package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/pokeduel/game-server/pkg"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := pkg.LoadConfig(os.Getenv("POKEDUEL_CONFIG"))
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	configureLogging(cfg.Logging)

	registry := pkg.NewRegistry(cfg.Game.RoomCapacity)
	sessions := pkg.NewSessionServer(registry, cfg.Game.DefaultRoom)
	lobby := pkg.NewLobbyServer(registry)

	// The bridge must be in place before either listener accepts.
	sessions.OnCardPlayed(lobby.BroadcastCardPlayed)

	catalog := pkg.NewCatalogClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)
	api := pkg.NewAPI(catalog)

	lobbyRouter := mux.NewRouter()
	lobbyRouter.HandleFunc("/api/v1/health", pkg.HealthHandler)
	lobbyRouter.HandleFunc("/api/v1/cards", api.CardsHandler)
	lobbyRouter.HandleFunc("/", lobby.SocketHandler)

	lobbyServer := &http.Server{
		Addr: cfg.Lobby.Addr(),
		Handler: promhttp.InstrumentHandlerInFlight(pkg.LobbyInFlightGauge,
			promhttp.InstrumentHandlerCounter(pkg.LobbyRequestsCounter,
				pkg.CORSMiddleware(lobbyRouter))),
	}

	sessionRouter := mux.NewRouter()
	sessionRouter.HandleFunc("/", sessions.SocketHandler)

	sessionServer := &http.Server{
		Addr:    cfg.Session.Addr(),
		Handler: sessionRouter,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	metricsServer := &http.Server{
		Addr:    cfg.Metrics.Addr(),
		Handler: metricsRouter,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	log.Info("Starting lobby server on ", cfg.Lobby.Addr(), "...")
	go func() {
		err := lobbyServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Lobby server failed: ", err)
		}
	}()

	log.Info("Starting session server on ", cfg.Session.Addr(), "...")
	go func() {
		err := sessionServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Session server failed: ", err)
		}
	}()

	log.Info("Starting metrics server on ", cfg.Metrics.Addr(), "...")
	go func() {
		err := metricsServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Metrics server failed: ", err)
		}
	}()

	<-done

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info("Shutting down lobby server...")
	if err := lobbyServer.Shutdown(ctx); err != nil {
		log.Fatal("Lobby server shutdown failed: ", err)
	}

	log.Info("Shutting down session server...")
	if err := sessionServer.Shutdown(ctx); err != nil {
		log.Fatal("Session server shutdown failed: ", err)
	}

	log.Info("Shutting down metrics server...")
	if err := metricsServer.Shutdown(ctx); err != nil {
		log.Fatal("Metrics server shutdown failed: ", err)
	}
}

func configureLogging(cfg pkg.LoggingConfig) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warn("Unknown log level ", cfg.Level, ", defaulting to info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
}
