package model

import (
	"fmt"
	"time"
)

// Level is the severity of the current alert. LevelNone is the canonical
// "no alert" sentinel: a record at LevelNone is never active.
type Level string

const (
	LevelNone   Level = "none"
	LevelYellow Level = "yellow"
	LevelOrange Level = "orange"
	LevelRed    Level = "red"
)

// Valid reports whether l is one of the four known severity levels.
func (l Level) Valid() bool {
	switch l {
	case LevelNone, LevelYellow, LevelOrange, LevelRed:
		return true
	}
	return false
}

// Default title strings, kept in French to match the public UI.
const (
	DefaultTitle = "Aucune alerte"
	ActiveTitle  = "ALERTE MÉTÉO"
)

// AlertRecord is the single current weather alert document.
// This is the central definition shared by the server and the watcher.
//
// Regions is the canonical plural field; Region mirrors Regions[0] for
// readers that still expect the old single-wilaya shape. Active is
// derived from Level and the validity window, never authoritative on
// its own.
type AlertRecord struct {
	Active    bool     `json:"active"`
	Level     Level    `json:"level"`
	Regions   []string `json:"regions"`
	Region    string   `json:"region"`
	Title     string   `json:"title"`
	Message   string   `json:"message"`
	StartAt   string   `json:"startAt"` // RFC 3339, empty means unbounded
	EndAt     string   `json:"endAt"`   // RFC 3339, empty means unbounded
	UpdatedAt string   `json:"updatedAt"`
}

// Default returns the canonical empty record: no alert, empty window,
// Regions non-nil so readers always see an array.
func Default() AlertRecord {
	return AlertRecord{
		Active:  false,
		Level:   LevelNone,
		Regions: []string{},
		Region:  "",
		Title:   DefaultTitle,
		Message: "",
		StartAt: "",
		EndAt:   "",
	}
}

// String provides a concise representation of the record for logs.
func (a AlertRecord) String() string {
	if !a.Active {
		return fmt.Sprintf("[%s] %s", a.Level, a.Title)
	}
	return fmt.Sprintf("[%s] %s (%d wilaya(s))", a.Level, a.Title, len(a.Regions))
}

// Updated returns the UpdatedAt timestamp as a time.Time, or the zero
// time when the field is empty or unparseable.
func (a AlertRecord) Updated() time.Time {
	t, err := time.Parse(time.RFC3339, a.UpdatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Wilaya is one entry of the read-only geo dataset: an administrative
// region name with its map coordinates.
type Wilaya struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
