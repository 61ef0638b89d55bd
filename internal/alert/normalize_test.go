package alert

import (
	"reflect"
	"testing"

	"github.com/yourorg/meteo-alertes/internal/model"
)

func TestNormalize_Defaults(t *testing.T) {
	t.Run("nil document yields the default record", func(t *testing.T) {
		rec := Normalize(nil)
		if !reflect.DeepEqual(rec, model.Default()) {
			t.Errorf("Normalize(nil) = %+v, want default record", rec)
		}
	})

	t.Run("empty document yields the default record", func(t *testing.T) {
		rec := Normalize(map[string]any{})
		if rec.Level != model.LevelNone || rec.Active {
			t.Errorf("empty doc: level=%s active=%t, want none/false", rec.Level, rec.Active)
		}
		if rec.Title != model.DefaultTitle {
			t.Errorf("empty doc: title=%q, want %q", rec.Title, model.DefaultTitle)
		}
	})

	t.Run("regions is never nil", func(t *testing.T) {
		docs := []map[string]any{
			nil,
			{},
			{"level": "red"},
			{"regions": "not-an-array"},
			{"regions": 12},
			{"regions": []any{1, 2}},
			{"zones": map[string]any{"x": 1}},
		}
		for _, doc := range docs {
			if rec := Normalize(doc); rec.Regions == nil {
				t.Errorf("Normalize(%v).Regions is nil, want empty slice", doc)
			}
		}
	})
}

func TestNormalize_RegionFields(t *testing.T) {
	t.Run("region backfilled from regions[0]", func(t *testing.T) {
		rec := Normalize(map[string]any{"level": "red", "regions": []any{"Alger", "Oran"}})
		if rec.Region != "Alger" {
			t.Errorf("Region = %q, want %q", rec.Region, "Alger")
		}
		if !reflect.DeepEqual(rec.Regions, []string{"Alger", "Oran"}) {
			t.Errorf("Regions = %v", rec.Regions)
		}
	})

	t.Run("legacy singular region wrapped into regions", func(t *testing.T) {
		rec := Normalize(map[string]any{"region": "Oran"})
		if !reflect.DeepEqual(rec.Regions, []string{"Oran"}) || rec.Region != "Oran" {
			t.Errorf("got regions=%v region=%q", rec.Regions, rec.Region)
		}
	})

	t.Run("zones and wilayas are synonyms", func(t *testing.T) {
		for _, field := range []string{"zones", "wilayas"} {
			rec := Normalize(map[string]any{field: []any{"Blida"}})
			if !reflect.DeepEqual(rec.Regions, []string{"Blida"}) {
				t.Errorf("%s: Regions = %v, want [Blida]", field, rec.Regions)
			}
		}
	})

	t.Run("precedence regions over zones over region", func(t *testing.T) {
		rec := Normalize(map[string]any{
			"regions": []any{"Alger"},
			"zones":   []any{"Oran"},
			"region":  "Blida",
		})
		if !reflect.DeepEqual(rec.Regions, []string{"Alger"}) {
			t.Errorf("Regions = %v, want [Alger]", rec.Regions)
		}

		rec = Normalize(map[string]any{
			"zones":  []any{"Oran"},
			"region": "Blida",
		})
		if !reflect.DeepEqual(rec.Regions, []string{"Oran"}) {
			t.Errorf("Regions = %v, want [Oran]", rec.Regions)
		}
	})

	t.Run("non-array regions coerced to empty", func(t *testing.T) {
		rec := Normalize(map[string]any{"level": "orange", "regions": "Alger"})
		if len(rec.Regions) != 0 || rec.Region != "" {
			t.Errorf("got regions=%v region=%q, want empty", rec.Regions, rec.Region)
		}
	})
}

func TestNormalize_TitleDefaults(t *testing.T) {
	t.Run("alerting level without a title gets the severity banner", func(t *testing.T) {
		rec := Normalize(map[string]any{"level": "red", "regions": []any{"Alger"}})
		if rec.Title != model.ActiveTitle {
			t.Errorf("Title = %q, want %q", rec.Title, model.ActiveTitle)
		}
	})

	t.Run("supplied title wins over the banner", func(t *testing.T) {
		rec := Normalize(map[string]any{"level": "orange", "title": "Orages violents"})
		if rec.Title != "Orages violents" {
			t.Errorf("Title = %q, want the supplied title", rec.Title)
		}
	})

	t.Run("level none keeps the no-alert title", func(t *testing.T) {
		for _, doc := range []map[string]any{
			{},
			{"level": "none"},
			{"level": "none", "regions": []any{"Oran"}},
		} {
			if rec := Normalize(doc); rec.Title != model.DefaultTitle {
				t.Errorf("Normalize(%v).Title = %q, want %q", doc, rec.Title, model.DefaultTitle)
			}
		}
	})

	t.Run("empty string title counts as absent", func(t *testing.T) {
		rec := Normalize(map[string]any{"level": "yellow", "title": ""})
		if rec.Title != model.ActiveTitle {
			t.Errorf("Title = %q, want %q", rec.Title, model.ActiveTitle)
		}
	})
}

func TestNormalize_ActiveDerived(t *testing.T) {
	t.Run("active never trusted from input", func(t *testing.T) {
		rec := Normalize(map[string]any{"level": "none", "active": true})
		if rec.Active {
			t.Error("active=true with level none should be overridden")
		}

		rec = Normalize(map[string]any{"level": "red", "active": false})
		if !rec.Active {
			t.Error("active=false with level red should be overridden")
		}
	})
}

func TestNormalize_Idempotent(t *testing.T) {
	docs := []map[string]any{
		{},
		{"level": "red", "regions": []any{"Alger", "Oran"}, "title": "Pluie"},
		{"region": "Blida"},
		{"zones": []any{"Sétif"}, "message": "vent fort"},
		{"level": "yellow", "startAt": "2026-01-01T00:00:00Z", "endAt": "2026-01-02T00:00:00Z"},
	}
	for _, doc := range docs {
		once := Normalize(doc)
		twice := Normalize(Doc(once))
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Normalize not idempotent for %v:\n once: %+v\ntwice: %+v", doc, once, twice)
		}
	}
}

func TestDecode(t *testing.T) {
	t.Run("nil and garbage decode to default", func(t *testing.T) {
		for _, raw := range [][]byte{nil, {}, []byte("not json"), []byte(`"just a string"`)} {
			rec := Decode(raw)
			if !reflect.DeepEqual(rec, model.Default()) {
				t.Errorf("Decode(%q) = %+v, want default", raw, rec)
			}
		}
	})

	t.Run("legacy stored shape passes through normalization", func(t *testing.T) {
		raw := []byte(`{"level":"orange","wilayas":["Annaba"],"title":"Orage"}`)
		rec := Decode(raw)
		if rec.Level != model.LevelOrange || rec.Region != "Annaba" {
			t.Errorf("got %+v", rec)
		}
	})
}
