package geo

import "testing"

func TestLoad(t *testing.T) {
	ds, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(ds.All()) < 58 {
		t.Fatalf("dataset has %d entries, want at least 58", len(ds.All()))
	}
}

func TestLookup(t *testing.T) {
	ds, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	t.Run("capital alias pair resolves to the same entry", func(t *testing.T) {
		a, ok := ds.Lookup("Alger")
		if !ok {
			t.Fatal("Alger not found")
		}
		b, ok := ds.Lookup("Algiers")
		if !ok {
			t.Fatal("Algiers not found")
		}
		if a != b {
			t.Errorf("Alger=%+v, Algiers=%+v, want same entry", a, b)
		}
	})

	t.Run("case and diacritic insensitive", func(t *testing.T) {
		names := []string{"Béjaïa", "bejaia", "BEJAIA", "béjaïa"}
		for _, name := range names {
			w, ok := ds.Lookup(name)
			if !ok {
				t.Errorf("Lookup(%q) not found", name)
				continue
			}
			if w.Name != "Béjaïa" {
				t.Errorf("Lookup(%q) = %q", name, w.Name)
			}
		}
	})

	t.Run("apostrophe and spacing variants", func(t *testing.T) {
		for _, name := range []string{"M'Sila", "M’Sila", "m sila", "Msila"} {
			if _, ok := ds.Lookup(name); !ok {
				t.Errorf("Lookup(%q) not found", name)
			}
		}
	})

	t.Run("hyphen variants", func(t *testing.T) {
		if _, ok := ds.Lookup("Tizi-Ouzou"); !ok {
			t.Error("Lookup(Tizi-Ouzou) not found")
		}
	})

	t.Run("unknown name misses", func(t *testing.T) {
		if _, ok := ds.Lookup("Atlantis"); ok {
			t.Error("Lookup(Atlantis) unexpectedly found")
		}
	})
}

func TestKey(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Alger", "alger"},
		{"Algiers", "alger"},
		{"Aïn Témouchent", "ain temouchent"},
		{"Sidi Bel Abbès", "sidi bel abbes"},
		{"  Oran  ", "oran"},
		{"Bordj-Bou-Arréridj", "bordj bou arreridj"},
		{"M'Sila", "m sila"},
		{"MSila", "m sila"},
	}
	for _, tc := range cases {
		if got := Key(tc.in); got != tc.want {
			t.Errorf("Key(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
