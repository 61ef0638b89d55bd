package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver, registered via side effect

	"github.com/yourorg/meteo-alertes/internal/model"
)

const (
	pingTimeout   = 5 * time.Second
	execTimeout   = 5 * time.Second
	queryTimeout  = 5 * time.Second
	schemaTimeout = 15 * time.Second
)

// PostgresStore keeps the alert document in a single-row table. The
// document column stays JSON so old field shapes written by earlier
// revisions still round-trip through the normalization boundary.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects, pings and ensures the schema.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), pingTimeout)
	defer cancelPing()
	if err = db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.PingContext failed (check DB server and credentials): %w", err)
	}

	if err = ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// ensureSchema creates the single-row table if it does not exist.
func ensureSchema(db *sql.DB) error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS current_alert (
		id SMALLINT PRIMARY KEY CHECK (id = 1),
		document JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
	);
	`
	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("schema execution failed: %w", err)
	}
	return nil
}

// Read returns the stored document, or nil when the row has never been
// written.
func (s *PostgresStore) Read(ctx context.Context) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT document FROM current_alert WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading current alert row: %w", err)
	}
	return raw, nil
}

// Write upserts the single row, replacing the whole document.
func (s *PostgresStore) Write(ctx context.Context, rec model.AlertRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding alert record: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, `
	INSERT INTO current_alert (id, document, updated_at)
	VALUES (1, $1, clock_timestamp())
	ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = clock_timestamp()
	`, raw)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("db.ExecContext timeout writing current alert: %w", err)
		}
		return fmt.Errorf("db.ExecContext failed writing current alert: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
