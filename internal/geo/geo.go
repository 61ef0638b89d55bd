// Package geo serves the read-only wilaya coordinate dataset and the
// name matching used to highlight affected wilayas on the public map.
package geo

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/yourorg/meteo-alertes/internal/model"
)

//go:embed wilayas.json
var datasetBytes []byte

// aliases maps historical alternate spellings onto the canonical key.
// The capital has appeared as both "Alger" and "Algiers" across data
// revisions; both must resolve to the same entry.
var aliases = map[string]string{
	"algiers": "alger",
	"msila":   "m sila",
}

// stripMarks removes combining diacritical marks after NFD decomposition,
// so "Béjaïa" and "Bejaia" key identically.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Dataset is the embedded wilaya table with a normalized-name index.
type Dataset struct {
	entries []model.Wilaya
	byKey   map[string]model.Wilaya
}

// Load parses the embedded dataset. It fails only if the embedded file
// is corrupt, which is a build problem rather than a runtime one.
func Load() (*Dataset, error) {
	var entries []model.Wilaya
	if err := json.Unmarshal(datasetBytes, &entries); err != nil {
		return nil, fmt.Errorf("parsing embedded wilaya dataset: %w", err)
	}
	d := &Dataset{
		entries: entries,
		byKey:   make(map[string]model.Wilaya, len(entries)),
	}
	for _, w := range entries {
		d.byKey[Key(w.Name)] = w
	}
	return d, nil
}

// All returns the dataset entries in file order.
func (d *Dataset) All() []model.Wilaya {
	out := make([]model.Wilaya, len(d.entries))
	copy(out, d.entries)
	return out
}

// Lookup resolves a wilaya by name, tolerating case, accents, hyphens,
// apostrophes and spacing differences, plus the known alias spellings.
func (d *Dataset) Lookup(name string) (model.Wilaya, bool) {
	w, ok := d.byKey[Key(name)]
	return w, ok
}

// Key normalizes a wilaya name for matching: lowercase, diacritics
// stripped, hyphens/apostrophes/whitespace collapsed to single spaces.
func Key(name string) string {
	s, _, err := transform.String(stripMarks, name)
	if err != nil {
		s = name
	}
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '-', '\'', '’', '`':
			return ' '
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	if canonical, ok := aliases[s]; ok {
		return canonical
	}
	return s
}
