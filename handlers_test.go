package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/tunelog/tunelog/db"
	"github.com/tunelog/tunelog/models"
	"github.com/tunelog/tunelog/service/enrich"
	"github.com/tunelog/tunelog/service/nowplaying"
	"github.com/tunelog/tunelog/service/versions"
	"github.com/tunelog/tunelog/service/ytmusic"
)

func newTestApplication(t *testing.T) *application {
	t.Helper()

	viper.Set("rating.min", 1)
	viper.Set("rating.max", 10)
	viper.Set("analytics.shrinkage_c", 5.0)
	viper.Set("tracker.max_recent", 4)

	store, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Initialize(); err != nil {
		t.Fatalf("failed to initialize test database: %v", err)
	}

	provider := ytmusic.New(filepath.Join(t.TempDir(), "browser.json"))

	return &application{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		store:    store,
		provider: provider,
		tracker:  nowplaying.NewTracker(provider, store, 4),
		enricher: enrich.New(provider),
		versions: versions.New(provider),
	}
}

// doJSON sends a request through the full route chain and decodes the
// JSON response body
func doJSON(t *testing.T, app *application, method, target string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	app.routes().ServeHTTP(rec, req)

	decoded := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decoding response body %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, decoded
}

func TestCreateRatingDuplicateConflict(t *testing.T) {
	app := newTestApplication(t)

	code, body := doJSON(t, app, http.MethodPost, "/api/ratings", map[string]any{
		"videoId": "vid1", "title": "Paranoid Android", "artist": "Radiohead", "rating": 8,
	})
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", code, body)
	}

	code, body = doJSON(t, app, http.MethodPost, "/api/ratings", map[string]any{
		"videoId": "vid1", "title": "Paranoid Android", "artist": "Radiohead", "rating": 5,
	})
	if code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate video id, got %d (%v)", code, body)
	}
	if body["duplicate"] != true || body["error"] != "Song already rated" {
		t.Errorf("unexpected conflict body: %v", body)
	}
	entry, ok := body["entry"].(map[string]any)
	if !ok {
		t.Fatalf("expected existing entry in conflict body, got %v", body["entry"])
	}
	if entry["videoId"] != "vid1" || entry["rating"] != float64(8) {
		t.Errorf("conflict body must carry the original entry, got %v", entry)
	}
}

func TestCreateRatingValidation(t *testing.T) {
	app := newTestApplication(t)

	code, _ := doJSON(t, app, http.MethodPost, "/api/ratings", map[string]any{
		"title": "No Video ID", "rating": 8,
	})
	if code != http.StatusBadRequest {
		t.Errorf("expected 400 without videoId, got %d", code)
	}

	code, body := doJSON(t, app, http.MethodPost, "/api/ratings", map[string]any{
		"videoId": "vid1", "rating": 11,
	})
	if code != http.StatusBadRequest {
		t.Errorf("expected 400 for out-of-range rating, got %d (%v)", code, body)
	}

	code, _ = doJSON(t, app, http.MethodPost, "/api/ratings", map[string]any{
		"videoId": "vid1",
	})
	if code != http.StatusBadRequest {
		t.Errorf("expected 400 without rating, got %d", code)
	}
}

func TestUpdateSettingsValidation(t *testing.T) {
	app := newTestApplication(t)

	rejected := []map[string]any{
		{"shrinkageC": -1.0},
		{"maxRecent": -1},
		{"sidebarMode": "bogus"},
		{"ratingMin": 5, "ratingMax": 5},
		{"ratingMin": 8, "ratingMax": 3},
	}
	for _, input := range rejected {
		code, body := doJSON(t, app, http.MethodPost, "/api/settings", input)
		if code != http.StatusBadRequest {
			t.Errorf("expected 400 for %v, got %d (%v)", input, code, body)
		}
	}

	// a rejected update must not be persisted
	code, body := doJSON(t, app, http.MethodGet, "/api/settings", nil)
	if code != http.StatusOK || body["ratingMax"] != float64(10) {
		t.Fatalf("defaults must survive rejected updates, got %d (%v)", code, body)
	}

	code, body = doJSON(t, app, http.MethodPost, "/api/settings", map[string]any{
		"ratingMax": 5, "maxRecent": 2, "sidebarMode": "related",
	})
	if code != http.StatusOK {
		t.Fatalf("expected 200 for valid update, got %d (%v)", code, body)
	}

	code, body = doJSON(t, app, http.MethodGet, "/api/settings", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["ratingMax"] != float64(5) || body["maxRecent"] != float64(2) || body["sidebarMode"] != "related" {
		t.Errorf("valid update not persisted: %v", body)
	}
}

func TestRateUnratedConflict(t *testing.T) {
	app := newTestApplication(t)

	entry := &models.UnratedSong{
		ID: "u1", VideoID: "vid1", Title: "Song", Artist: "Artist",
		SkippedAt: "2026-08-01T12:00:00Z",
	}
	if err := app.store.CreateUnrated(entry); err != nil {
		t.Fatalf("seeding unrated entry: %v", err)
	}

	// the song gets rated through the normal path in the meantime
	code, _ := doJSON(t, app, http.MethodPost, "/api/ratings", map[string]any{
		"videoId": "vid1", "title": "Song", "rating": 9,
	})
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}

	code, body := doJSON(t, app, http.MethodPost, "/api/unrated/u1/rate", map[string]any{
		"rating": 7,
	})
	if code != http.StatusConflict {
		t.Fatalf("expected 409 for already-rated song, got %d (%v)", code, body)
	}
	if body["duplicate"] != true {
		t.Errorf("unexpected conflict body: %v", body)
	}

	// the stale unrated entry is cleaned up on its way out
	gone, err := app.store.GetUnrated("u1")
	if err != nil || gone != nil {
		t.Errorf("expected unrated entry removed, got %+v (%v)", gone, err)
	}
}
