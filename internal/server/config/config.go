package config

import (
	"errors"
	"log"
	"os"
)

// ServerConfig holds the server's configuration settings.
type ServerConfig struct {
	Port        string
	DataPath    string // alert document path for the file store
	DatabaseURL string // postgres DSN; empty selects the file store
	StaticDir   string

	// Single shared admin identity. AdminPassHash, when set, is a bcrypt
	// hash checked instead of the plain AdminPass value.
	AdminUser     string
	AdminPass     string
	AdminPassHash string

	// JWTSecret signs the session cookie.
	JWTSecret []byte
}

// LoadServerConfig loads configuration from environment variables.
func LoadServerConfig() (*ServerConfig, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
		log.Printf("INFO: PORT environment variable not set, using default %s", port)
	}

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = "alert.json"
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./static"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}

	adminUser := os.Getenv("ADMIN_USER")
	adminPass := os.Getenv("ADMIN_PASS")
	adminPassHash := os.Getenv("ADMIN_PASS_HASH")
	if adminUser == "" || (adminPass == "" && adminPassHash == "") {
		log.Println("WARNING: ADMIN_USER / ADMIN_PASS not fully configured. Nobody can log in.")
	}

	return &ServerConfig{
		Port:          port,
		DataPath:      dataPath,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		StaticDir:     staticDir,
		AdminUser:     adminUser,
		AdminPass:     adminPass,
		AdminPassHash: adminPassHash,
		JWTSecret:     []byte(secret),
	}, nil
}
