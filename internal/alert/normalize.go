// Package alert holds the normalization boundary and the activation
// rules for the current weather alert record. Internal code only ever
// sees the canonical shape produced here; the historical field variants
// (region/regions/zones/wilayas) never leak past this package.
package alert

import (
	"encoding/json"
	"strings"

	"github.com/yourorg/meteo-alertes/internal/model"
)

// Normalize maps an arbitrary document onto the canonical record shape.
// Any subset of {level, active, region, regions, zones, wilayas, title,
// message, startAt, endAt, updatedAt} is accepted; missing or malformed
// fields fall back to the default record. Region-like fields are merged
// with precedence regions > zones/wilayas > region, and the legacy
// Region field is backfilled from Regions[0]. Active is derived from the
// level and never trusted from input. A missing title defaults to the
// severity banner when the level alerts, to the "no alert" title
// otherwise.
//
// Normalize never fails and is idempotent over its own output.
func Normalize(doc map[string]any) model.AlertRecord {
	rec := model.Default()
	if doc == nil {
		return rec
	}

	if s, ok := asString(doc["level"]); ok && s != "" {
		rec.Level = model.Level(strings.ToLower(strings.TrimSpace(s)))
	}
	titleSupplied := false
	if s, ok := asString(doc["title"]); ok && s != "" {
		rec.Title = s
		titleSupplied = true
	}
	if s, ok := asString(doc["message"]); ok {
		rec.Message = s
	}
	if s, ok := asString(doc["startAt"]); ok {
		rec.StartAt = s
	}
	if s, ok := asString(doc["endAt"]); ok {
		rec.EndAt = s
	}
	if s, ok := asString(doc["updatedAt"]); ok {
		rec.UpdatedAt = s
	}

	rec.Regions = mergeRegions(doc)
	if len(rec.Regions) > 0 {
		rec.Region = rec.Regions[0]
	} else {
		rec.Region = ""
	}

	// The active flag is a pure function of the level here; the time
	// window is only consulted by Evaluate on the read path.
	rec.Active = rec.Level != model.LevelNone

	// The title default is contextual: "Aucune alerte" only fits an
	// inactive record, so an alerting level without a supplied title
	// gets the generic banner instead.
	if !titleSupplied && rec.Level != model.LevelNone {
		rec.Title = model.ActiveTitle
	}

	return rec
}

// Decode normalizes a raw stored document. A nil, empty or unparseable
// document yields the default record, matching "first read before any
// write returns a well-formed default".
func Decode(raw json.RawMessage) model.AlertRecord {
	if len(raw) == 0 {
		return model.Default()
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.Default()
	}
	return Normalize(doc)
}

// Doc converts a canonical record back into a generic document, used by
// tests to feed Normalize its own output.
func Doc(rec model.AlertRecord) map[string]any {
	raw, _ := json.Marshal(rec)
	var doc map[string]any
	_ = json.Unmarshal(raw, &doc)
	return doc
}

// mergeRegions resolves the historical region field variants into one
// list. "zones" and "wilayas" are synonyms from older revisions; the
// singular "region" is wrapped into a one-element list.
func mergeRegions(doc map[string]any) []string {
	if rs := asStringSlice(doc["regions"]); len(rs) > 0 {
		return rs
	}
	if rs := asStringSlice(doc["zones"]); len(rs) > 0 {
		return rs
	}
	if rs := asStringSlice(doc["wilayas"]); len(rs) > 0 {
		return rs
	}
	if s, ok := asString(doc["region"]); ok {
		if s = strings.TrimSpace(s); s != "" {
			return []string{s}
		}
	}
	return []string{}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asStringSlice coerces a decoded JSON value into a list of non-empty
// strings. Anything that is not an array of strings collapses to nil.
func asStringSlice(v any) []string {
	var out []string
	switch list := v.(type) {
	case []any:
		for _, item := range list {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range list {
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
