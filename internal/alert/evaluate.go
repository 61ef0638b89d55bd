package alert

import (
	"time"

	"github.com/yourorg/meteo-alertes/internal/model"
)

// Evaluate derives the authoritative active flag for a normalized record
// at the given instant. It is pure: callers inject the clock, and the
// stored document is never touched.
//
// Without a window the record is active iff the level is not "none".
// With a window (inclusive bounds, an absent side is unbounded) the
// record is additionally required to contain now. An inactive result is
// replaced by the default record so stale title/message/region text from
// an expired alert never reaches readers; only UpdatedAt survives the
// reset, freshly stamped when it was absent.
//
// Evaluate runs on every read because expiry is time-driven and must
// self-correct without an admin action.
func Evaluate(rec model.AlertRecord, now time.Time) model.AlertRecord {
	active := rec.Level != model.LevelNone
	if rec.StartAt != "" || rec.EndAt != "" {
		active = active && inWindow(rec.StartAt, rec.EndAt, now)
	}

	if !active {
		updatedAt := rec.UpdatedAt
		if updatedAt == "" {
			updatedAt = now.UTC().Format(time.RFC3339)
		}
		rec = model.Default()
		rec.UpdatedAt = updatedAt
		return rec
	}

	rec.Active = true
	return rec
}

// inWindow reports whether now falls inside [startAt, endAt]. Empty or
// unparseable bounds do not constrain, matching the original behavior
// where a bad timestamp silently meant "unbounded on that side".
func inWindow(startAt, endAt string, now time.Time) bool {
	if start, ok := parseBound(startAt); ok && now.Before(start) {
		return false
	}
	if end, ok := parseBound(endAt); ok && now.After(end) {
		return false
	}
	return true
}

func parseBound(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
