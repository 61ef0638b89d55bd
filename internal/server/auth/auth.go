// Package auth is the admin session guard: it issues the signed session
// cookie on login and verifies it on every mutating call. One shared
// admin credential, one signing secret, no users table.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/meteo-alertes/internal/server/config"
)

// CookieName carries the session token. The name predates this rewrite
// and is kept so existing sessions survive a deploy.
const CookieName = "krimo_token"

// SessionTTL is how long an issued session stays valid.
const SessionTTL = 7 * 24 * time.Hour

var (
	ErrNoSession      = errors.New("missing session cookie")
	ErrSessionExpired = errors.New("invalid or expired session")
)

// SessionClaims is the JWT payload. The short "u" key matches the
// tokens the service has always issued.
type SessionClaims struct {
	Username string `json:"u"`
	jwt.RegisteredClaims
}

// Guard verifies admin sessions and checks login credentials.
type Guard struct {
	cfg *config.ServerConfig
}

func NewGuard(cfg *config.ServerConfig) *Guard {
	return &Guard{cfg: cfg}
}

// CheckCredentials compares a login attempt against the configured
// admin identity. The plain password path is constant-time; when
// ADMIN_PASS_HASH is configured it takes precedence and the password is
// checked with bcrypt.
func (g *Guard) CheckCredentials(username, password string) bool {
	if g.cfg.AdminUser == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.cfg.AdminUser)) == 1

	if g.cfg.AdminPassHash != "" {
		err := bcrypt.CompareHashAndPassword([]byte(g.cfg.AdminPassHash), []byte(password))
		return userOK && err == nil
	}
	if g.cfg.AdminPass == "" {
		return false
	}
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.cfg.AdminPass)) == 1
	return userOK && passOK
}

// IssueToken signs a fresh 7-day session token for username.
func (g *Guard) IssueToken(username string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.cfg.JWTSecret)
}

// VerifySession checks the session cookie on a request. It distinguishes
// "no credential at all" from "credential present but invalid/expired"
// because the two cases surface different messages to the admin UI.
func (g *Guard) VerifySession(r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return ErrNoSession
	}

	token, err := jwt.ParseWithClaims(cookie.Value, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return g.cfg.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return ErrSessionExpired
	}
	return nil
}

// SetSessionCookie attaches a freshly issued token to the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   true,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   true,
	})
}

// Middleware rejects requests without a valid session before they reach
// a mutating handler. No side effects on success.
func (g *Guard) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch err := g.VerifySession(r); {
		case errors.Is(err, ErrNoSession):
			log.Printf("Request to %s rejected: missing session cookie", r.URL.Path)
			writeAuthError(w, "Non autorisé")
		case errors.Is(err, ErrSessionExpired):
			log.Printf("Request to %s rejected: invalid or expired session", r.URL.Path)
			writeAuthError(w, "Session expirée")
		default:
			next(w, r)
		}
	}
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": msg})
}
