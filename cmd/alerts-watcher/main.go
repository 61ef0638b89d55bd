package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/yourorg/meteo-alertes/internal/config"
	"github.com/yourorg/meteo-alertes/internal/model"
	"github.com/yourorg/meteo-alertes/internal/network"
	"github.com/yourorg/meteo-alertes/internal/notifier"
	syncagent "github.com/yourorg/meteo-alertes/internal/sync"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Météo Alertes watcher...")

	configPath := flag.String("config", "watcher.toml", "path to the watcher config file")
	flag.Parse()

	// 1. Load configuration (TOML file + env var overrides)
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Printf("Config: ServerURL=%s, UseWebSocket=%t, PollInterval=%v, MinLevel=%s",
		cfg.ServerURL, cfg.UseWebSocket, cfg.PollInterval(), cfg.Notifications.MinLevel)

	client, err := network.NewClient(cfg.ServerURL, cfg.RequestTimeout())
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	// 2. Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Sync agent: polls the server and owns last-known-good state
	agent := syncagent.New(client, cfg.PollInterval())
	go agent.Run(ctx)

	// 4. Optional WebSocket stream on top of polling
	var pushed chan model.AlertRecord
	if cfg.UseWebSocket {
		pushed = make(chan model.AlertRecord, 8)
		go func() {
			client.Subscribe(ctx, pushed)
			close(pushed)
		}()
	}

	// 5. System tray
	var current model.AlertRecord
	trayDone := notifier.RunTray(func() {
		notifier.ShowInfo(notifier.Badge(current))
	})

	log.Println("Watcher main loop started.")

	// 6. Event loop: consume agent updates (and pushed records), notify
	// on changes.
	var lastNotified string
	for {
		select {
		case <-ctx.Done():
			log.Println("Shutdown signal received, exiting...")
			return

		case <-trayDone:
			log.Println("Tray quit selected, exiting...")
			stop()
			return

		case rec, ok := <-pushed:
			if !ok {
				pushed = nil
				continue
			}
			current = rec
			notifier.SetTooltip(rec, false)
			maybeNotify(cfg, rec, &lastNotified)

		case u, ok := <-agent.Updates():
			if !ok {
				log.Println("Sync agent stopped, exiting...")
				stop()
				return
			}
			if u.Err != nil {
				// Nothing good has ever been fetched: explicit error
				// state instead of pretending to know the weather.
				log.Printf("No alert state available yet: %v", u.Err)
				notifier.SetTooltip(model.Default(), true)
				continue
			}
			current = u.Record
			notifier.SetTooltip(u.Record, u.Stale)
			if !u.Stale {
				maybeNotify(cfg, u.Record, &lastNotified)
			}
		}
	}
}

// maybeNotify pushes a toast when the record is noteworthy and has
// changed since the last notification.
func maybeNotify(cfg *config.Config, rec model.AlertRecord, lastNotified *string) {
	if !cfg.ShouldNotify(rec) {
		return
	}
	key := rec.UpdatedAt + "|" + string(rec.Level)
	if key == *lastNotified {
		return
	}
	if err := notifier.PushToast(rec); err != nil {
		log.Printf("ERROR: failed to push notification: %v", err)
		return
	}
	*lastNotified = key
}
