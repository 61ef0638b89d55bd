// Package notifier raises desktop notifications for the watcher and
// keeps its system tray entry.
package notifier

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gen2brain/beeep"
	"github.com/getlantern/systray"

	"github.com/yourorg/meteo-alertes/internal/model"
)

//go:embed assets/alert-icon.png
var iconBytes []byte

// iconTempPath holds the extracted icon file used by beeep.
var iconTempPath string

// Badge returns the short status text for a record, matching what the
// public page shows.
func Badge(rec model.AlertRecord) string {
	if !rec.Active || rec.Level == model.LevelNone {
		return "✅ Aucune alerte"
	}
	switch rec.Level {
	case model.LevelYellow:
		return "🟡 Vigilance Jaune"
	case model.LevelOrange:
		return "🟠 Vigilance Orange"
	case model.LevelRed:
		return "🔴 Vigilance Rouge"
	}
	return "⚠️ Alerte"
}

// RunTray initializes the system tray icon. Returns a channel closed
// when the user quits from the tray menu.
func RunTray(onStatus func()) <-chan struct{} {
	trayExitChan := make(chan struct{})

	var err error
	iconTempPath, err = extractIcon()
	if err != nil {
		log.Printf("WARNING: failed to extract embedded icon: %v. Notifications may not show an icon.", err)
		iconTempPath = ""
	}

	go func() {
		onReady := func() {
			systray.SetIcon(iconBytes)
			systray.SetTitle("Météo Alertes")
			systray.SetTooltip("Météo Alertes watcher")

			mStatus := systray.AddMenuItem("État actuel", "Show the current alert state")
			systray.AddSeparator()
			mQuit := systray.AddMenuItem("Quitter", "Exit the watcher")

			go func() {
				for {
					select {
					case <-mStatus.ClickedCh:
						if onStatus != nil {
							onStatus()
						}
					case <-mQuit.ClickedCh:
						systray.Quit()
						return
					}
				}
			}()
		}

		onExit := func() {
			close(trayExitChan)
			if iconTempPath != "" {
				_ = os.Remove(iconTempPath)
			}
		}

		systray.Run(onReady, onExit)
	}()

	return trayExitChan
}

// SetTooltip updates the tray tooltip with the current badge text.
func SetTooltip(rec model.AlertRecord, stale bool) {
	text := Badge(rec)
	if stale {
		text += " (reconnexion...)"
	}
	systray.SetTooltip(text)
}

// PushToast sends a desktop notification for a record.
func PushToast(rec model.AlertRecord) error {
	body := rec.Title
	if len(rec.Regions) > 0 {
		body += "\n📍 " + strings.Join(rec.Regions, " • ")
	}
	if rec.Message != "" {
		body += "\n" + rec.Message
	}
	if err := beeep.Notify(Badge(rec), strings.TrimSpace(body), iconTempPath); err != nil {
		return fmt.Errorf("beeep.Notify failed: %w", err)
	}
	return nil
}

// ShowInfo displays a simple informational toast.
func ShowInfo(message string) {
	if err := beeep.Notify("Météo Alertes", message, iconTempPath); err != nil {
		log.Printf("Failed to push info notification: %v", err)
	}
}

// ShowError displays an error toast.
func ShowError(message string) {
	if err := beeep.Alert("Météo Alertes", message, iconTempPath); err != nil {
		log.Printf("Failed to push error notification: %v", err)
	}
}

// extractIcon writes the embedded icon to a temp file for beeep, which
// needs a path rather than bytes.
func extractIcon() (string, error) {
	if len(iconBytes) == 0 {
		return "", nil
	}
	tmpfile, err := os.CreateTemp("", "meteo-alertes-icon-*.png")
	if err != nil {
		return "", fmt.Errorf("creating temp file for icon: %w", err)
	}
	if _, err := tmpfile.Write(iconBytes); err != nil {
		tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return "", fmt.Errorf("writing icon bytes: %w", err)
	}
	if err := tmpfile.Close(); err != nil {
		_ = os.Remove(tmpfile.Name())
		return "", fmt.Errorf("closing temp icon file: %w", err)
	}
	return tmpfile.Name(), nil
}
