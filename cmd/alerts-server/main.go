package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yourorg/meteo-alertes/internal/geo"
	"github.com/yourorg/meteo-alertes/internal/server/auth"
	"github.com/yourorg/meteo-alertes/internal/server/config"
	"github.com/yourorg/meteo-alertes/internal/server/handlers"
	"github.com/yourorg/meteo-alertes/internal/server/hub"
	"github.com/yourorg/meteo-alertes/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Météo Alertes server...")

	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: no .env file loaded: %v", err)
	}

	// 1. Load server configuration
	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load server configuration: %v", err)
	}
	log.Printf("Server configuration loaded. Port: %s, DataPath: %s", cfg.Port, cfg.DataPath)

	// 2. Open the alert store (postgres when a database URL is
	// configured, otherwise the single-file JSON store)
	st, err := store.Open(cfg.DatabaseURL, cfg.DataPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to open alert store: %v", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("Error closing store: %v", err)
		}
	}()

	// 3. Load the embedded wilaya geo dataset
	ds, err := geo.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load wilaya dataset: %v", err)
	}

	// 4. Create and run the WebSocket hub
	websocketHub := hub.NewHub()
	go websocketHub.Run()

	// 5. Handlers and routes
	guard := auth.NewGuard(cfg)
	alertsHandler := handlers.NewAlertsHandler(st, websocketHub, guard, cfg, ds)

	mux := http.NewServeMux()
	alertsHandler.RegisterRoutes(mux)

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handlers.ServeWs(websocketHub, w, r)
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Static assets (public page + admin panel)
	fs := http.FileServer(http.Dir(cfg.StaticDir))
	mux.Handle("/", fs)

	// 6. Configure HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 7. Start server with graceful shutdown
	go func() {
		log.Printf("Server listening on port %s", cfg.Port)
		log.Printf("API endpoint: http://localhost:%s/api/alert", cfg.Port)
		log.Printf("WebSocket endpoint: ws://localhost:%s/ws", cfg.Port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Could not listen on %s: %v", cfg.Port, err)
		}
		log.Println("Server stopped")
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
