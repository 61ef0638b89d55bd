package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/yourorg/meteo-alertes/internal/alert"
	"github.com/yourorg/meteo-alertes/internal/geo"
	"github.com/yourorg/meteo-alertes/internal/model"
	"github.com/yourorg/meteo-alertes/internal/server/auth"
	"github.com/yourorg/meteo-alertes/internal/server/config"
	"github.com/yourorg/meteo-alertes/internal/server/hub"
	"github.com/yourorg/meteo-alertes/internal/store"
)

// AlertsHandler serves the alert API: public read, admin publish/disable,
// login/logout and the wilaya geo dataset.
type AlertsHandler struct {
	store store.Store
	hub   *hub.Hub
	guard *auth.Guard
	cfg   *config.ServerConfig
	geo   *geo.Dataset

	// now is the injected clock used by the read-time evaluator.
	now func() time.Time
}

// NewAlertsHandler creates the handler set.
func NewAlertsHandler(st store.Store, h *hub.Hub, guard *auth.Guard, cfg *config.ServerConfig, ds *geo.Dataset) *AlertsHandler {
	return &AlertsHandler{
		store: st,
		hub:   h,
		guard: guard,
		cfg:   cfg,
		geo:   ds,
		now:   time.Now,
	}
}

// ReadAlert handles GET /api/alert. It always answers 200 with a
// well-formed record: a missing or unreadable document degrades to the
// default "no alert" record, and activation is evaluated against the
// current time on every read.
func (h *AlertsHandler) ReadAlert(w http.ResponseWriter, r *http.Request) {
	raw, err := h.store.Read(r.Context())
	if err != nil {
		log.Printf("WARNING: alert read failed, serving default record: %v", err)
		raw = nil
	}
	rec := alert.Evaluate(alert.Decode(raw), h.now())
	writeJSON(w, http.StatusOK, rec)
}

// PublishAlert handles POST /api/alert. The payload may use any of the
// historical field shapes; it is normalized, stamped and persisted as a
// full replacement. Activation is NOT computed here: a future startAt is
// stored as-is and becomes active when reads enter the window.
func (h *AlertsHandler) PublishAlert(w http.ResponseWriter, r *http.Request) {
	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Ok: false, Error: "Requête invalide"})
		return
	}

	rec := alert.Normalize(doc)
	if !rec.Level.Valid() {
		log.Printf("Publish rejected: unknown level %q", rec.Level)
		writeJSON(w, http.StatusBadRequest, envelope{Ok: false, Error: "Niveau d'alerte invalide"})
		return
	}

	updatedAt := h.now().UTC().Format(time.RFC3339)
	if rec.Level == model.LevelNone {
		// Publishing "none" is a disable: any other supplied fields are
		// dropped with it.
		rec = model.Default()
	}
	rec.UpdatedAt = updatedAt

	if err := h.store.Write(r.Context(), rec); err != nil {
		log.Printf("ERROR: alert write failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Ok: false, Error: "Erreur serveur"})
		return
	}
	log.Printf("Alert published: %s", rec.String())

	h.broadcast(rec)
	writeJSON(w, http.StatusOK, envelope{Ok: true})
}

// DisableAlert handles POST /api/disable: persist the default record
// with a fresh timestamp, equivalent to publishing level "none".
func (h *AlertsHandler) DisableAlert(w http.ResponseWriter, r *http.Request) {
	rec := model.Default()
	rec.UpdatedAt = h.now().UTC().Format(time.RFC3339)

	if err := h.store.Write(r.Context(), rec); err != nil {
		log.Printf("ERROR: alert disable failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Ok: false, Error: "Erreur serveur"})
		return
	}
	log.Println("Alert disabled")

	h.broadcast(rec)
	writeJSON(w, http.StatusOK, envelope{Ok: true})
}

// Login handles POST /api/login for the single admin identity.
func (h *AlertsHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Ok: false, Error: "Requête invalide"})
		return
	}

	if !h.guard.CheckCredentials(creds.Username, creds.Password) {
		log.Printf("Login rejected for user %q", creds.Username)
		writeJSON(w, http.StatusUnauthorized, envelope{Ok: false, Error: "Identifiants incorrects"})
		return
	}

	token, err := h.guard.IssueToken(creds.Username)
	if err != nil {
		log.Printf("ERROR: signing session token failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Ok: false, Error: "Erreur serveur"})
		return
	}

	auth.SetSessionCookie(w, token)
	log.Printf("Admin session issued for user %q", creds.Username)
	writeJSON(w, http.StatusOK, envelope{Ok: true})
}

// Logout handles POST /api/logout.
func (h *AlertsHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, envelope{Ok: true})
}

// Wilayas handles GET /api/wilayas: the read-only name->coordinates
// dataset the public map resolves region names against.
func (h *AlertsHandler) Wilayas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"regions": h.geo.All()})
}

// RegisterRoutes sets up the API endpoints on mux.
func (h *AlertsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/alert", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.ReadAlert(w, r)
		case http.MethodPost:
			h.guard.Middleware(h.PublishAlert)(w, r)
		default:
			writeMethodNotAllowed(w)
		}
	})
	mux.HandleFunc("/api/disable", requirePost(h.guard.Middleware(h.DisableAlert)))
	mux.HandleFunc("/api/login", requirePost(h.Login))
	mux.HandleFunc("/api/logout", requirePost(h.Logout))
	mux.HandleFunc("/api/wilayas", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		h.Wilayas(w, r)
	})
}

// broadcast pushes what readers would see right now, so viewers over
// WebSocket and viewers polling observe the same state.
func (h *AlertsHandler) broadcast(rec model.AlertRecord) {
	if h.hub == nil {
		return
	}
	h.hub.Broadcast <- alert.Evaluate(rec, h.now())
}

type envelope struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func requirePost(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		next(w, r)
	}
}

// writeMethodNotAllowed keeps method rejections on the same ok/error
// envelope as every other response on these endpoints.
func writeMethodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, envelope{Ok: false, Error: "Méthode non autorisée"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
