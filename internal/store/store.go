// Package store persists the single current alert document.
//
// Read returns the raw stored document so that legacy field shapes in
// old data files still pass through the normalization boundary; Write
// fully replaces the document with the canonical record. There is no
// history and no partial patch: last write wins.
package store

import (
	"context"
	"encoding/json"
	"log"

	"github.com/yourorg/meteo-alertes/internal/model"
)

// Store is the persistence contract for the current alert document.
type Store interface {
	// Read returns the raw stored document. A nil document with a nil
	// error means nothing has ever been written.
	Read(ctx context.Context) (json.RawMessage, error)

	// Write replaces the stored document with rec.
	Write(ctx context.Context, rec model.AlertRecord) error

	Close() error
}

// Open selects the store implementation: the postgres store when a DSN
// is configured, otherwise the single-file JSON store at dataPath.
func Open(databaseURL, dataPath string) (Store, error) {
	if databaseURL != "" {
		log.Println("INFO: database URL configured, using postgres store")
		return OpenPostgres(databaseURL)
	}
	log.Printf("INFO: using file store at %s", dataPath)
	return NewFileStore(dataPath), nil
}
