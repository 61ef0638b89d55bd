package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yourorg/meteo-alertes/internal/model"
)

func serve(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("building client: %v", err)
	}
	return c
}

func TestNewClient(t *testing.T) {
	cases := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"plain http", "http://localhost:3000", false},
		{"https with path", "https://alerts.example.com/app/", false},
		{"websocket scheme rejected", "ws://localhost:3000", true},
		{"garbage rejected", "://nope", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewClient(tc.url, time.Second)
			if (err != nil) != tc.wantErr {
				t.Errorf("NewClient(%q) error = %v, wantErr %t", tc.url, err, tc.wantErr)
			}
		})
	}
}

func TestFetchAlert(t *testing.T) {
	t.Run("canonical payload", func(t *testing.T) {
		c := serve(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/alert" {
				t.Errorf("path = %q", r.URL.Path)
			}
			w.Write([]byte(`{"active":true,"level":"red","regions":["Alger"],"region":"Alger","title":"ALERTE MÉTÉO","message":"","startAt":"","endAt":"","updatedAt":"2026-03-15T12:00:00Z"}`))
		})

		rec, err := c.FetchAlert(context.Background())
		if err != nil {
			t.Fatalf("FetchAlert: %v", err)
		}
		if rec.Level != model.LevelRed || rec.Region != "Alger" {
			t.Errorf("record = %+v", rec)
		}
	})

	t.Run("legacy field shape is normalized", func(t *testing.T) {
		c := serve(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"level":"yellow","zones":["Oran","Blida"]}`))
		})

		rec, err := c.FetchAlert(context.Background())
		if err != nil {
			t.Fatalf("FetchAlert: %v", err)
		}
		if len(rec.Regions) != 2 || rec.Region != "Oran" {
			t.Errorf("legacy zones not mapped: %+v", rec)
		}
		if !rec.Active {
			t.Error("yellow level should derive an active record")
		}
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		c := serve(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Erreur serveur", http.StatusInternalServerError)
		})
		if _, err := c.FetchAlert(context.Background()); err == nil {
			t.Error("expected an error for a 500 response")
		}
	})

	t.Run("request honors the timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		t.Cleanup(srv.Close)
		c, err := NewClient(srv.URL, 20*time.Millisecond)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := c.FetchAlert(context.Background()); err == nil {
			t.Error("expected a timeout error")
		}
	})
}

func TestFetchWilayas(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/wilayas" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"regions":[{"name":"Alger","latitude":36.7538,"longitude":3.0588},{"name":"Oran","latitude":35.6987,"longitude":-0.6349}]}`))
	})

	ws, err := c.FetchWilayas(context.Background())
	if err != nil {
		t.Fatalf("FetchWilayas: %v", err)
	}
	if len(ws) != 2 || ws[0].Name != "Alger" || ws[1].Longitude >= 0 {
		t.Errorf("dataset = %+v", ws)
	}
}

func TestClient_BasePathJoin(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/app/", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.FetchAlert(context.Background()); err != nil {
		t.Fatalf("FetchAlert: %v", err)
	}
	if gotPath != "/app/api/alert" {
		t.Errorf("request path = %q, want /app/api/alert", gotPath)
	}
}
