package ytmusic

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSetupRequiresCookie(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "browser.json"))

	if c.Authenticated() {
		t.Fatal("fresh client must not be authenticated")
	}

	err := c.Setup(`{"User-Agent": "Mozilla/5.0"}`)
	if err == nil || !strings.Contains(err.Error(), "Cookie") {
		t.Errorf("expected missing-cookie error, got %v", err)
	}

	if err := c.Setup(`{"Cookie": "SAPISID=abc"}`); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if !c.Authenticated() {
		t.Error("expected client authenticated after setup")
	}
	if !c.HasSavedHeaders() {
		t.Error("expected headers persisted to disk")
	}
}

func TestNewLoadsSavedHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "browser.json")

	first := New(path)
	if err := first.Setup(`{"Cookie": "SAPISID=abc"}`); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	second := New(path)
	if !second.Authenticated() {
		t.Error("expected saved headers picked up on construction")
	}
}

func TestSapisidHash(t *testing.T) {
	now := time.Unix(1700000000, 0)

	hash := sapisidHash("SAPISID=abc123; other=x", now)
	if !strings.HasPrefix(hash, "SAPISIDHASH 1700000000_") {
		t.Errorf("unexpected hash format: %q", hash)
	}

	// the secure variant of the cookie works too
	alt := sapisidHash("__Secure-3PAPISID=abc123", now)
	if alt != hash {
		t.Errorf("expected identical hash for secure cookie variant, got %q vs %q", alt, hash)
	}

	if got := sapisidHash("other=x", now); got != "" {
		t.Errorf("expected empty hash without SAPISID, got %q", got)
	}
}

func TestSubtitleYear(t *testing.T) {
	subtitle := runs{Runs: []textRun{
		{Text: "Album"}, {Text: " • "}, {Text: "Radiohead"}, {Text: " • "}, {Text: "2007"},
	}}
	if got := subtitleYear(subtitle); got != "2007" {
		t.Errorf("expected 2007, got %q", got)
	}

	noYear := runs{Runs: []textRun{{Text: "Single"}, {Text: "Artist"}}}
	if got := subtitleYear(noYear); got != "" {
		t.Errorf("expected empty year, got %q", got)
	}
}

func TestJoinArtists(t *testing.T) {
	artistRuns := []textRun{
		{Text: "Artist A"}, {Text: " & "}, {Text: "Artist B"}, {Text: " • "}, {Text: "Album"},
	}
	if got := joinArtists(artistRuns); got != "Artist A, Artist B, Album" {
		t.Errorf("unexpected join: %q", got)
	}
}

func TestBestThumbnail(t *testing.T) {
	thumbs := []thumbnail{
		{URL: "http://img/small", Width: 60, Height: 60},
		{URL: "https://lh3.googleusercontent.com/abc=w226-h226-l90-rj", Width: 226, Height: 226},
	}
	got := bestThumbnail(thumbs, "")
	if got != "https://lh3.googleusercontent.com/abc=w512-h512-l90-rj" {
		t.Errorf("expected size params normalized, got %q", got)
	}

	if got := bestThumbnail(nil, "vid123"); !strings.Contains(got, "vid123") {
		t.Errorf("expected fallback art, got %q", got)
	}
}

func TestExtractTrack(t *testing.T) {
	item := &listItemRenderer{
		PlaylistItemData: &playlistItemData{VideoID: "vid1"},
		FlexColumns: []flexColumn{
			{MusicResponsiveListItemFlexColumnRenderer: flexColumnRenderer{
				Text: runs{Runs: []textRun{{Text: "Paranoid Android"}}},
			}},
			{MusicResponsiveListItemFlexColumnRenderer: flexColumnRenderer{
				Text: runs{Runs: []textRun{
					{Text: "Radiohead"},
					{Text: " • "},
					{
						Text: "OK Computer",
						NavigationEndpoint: &navigationEndpoint{
							BrowseEndpoint: &browseEndpoint{BrowseID: "MPREb_abc"},
						},
					},
				}},
			}},
		},
	}

	track := extractTrack(item)
	if track.VideoID != "vid1" || track.Title != "Paranoid Android" {
		t.Errorf("unexpected track: %+v", track)
	}
	if track.Artist != "Radiohead, OK Computer" {
		t.Errorf("unexpected artist join: %q", track.Artist)
	}
	if track.Album != "OK Computer" || track.AlbumID != "MPREb_abc" {
		t.Errorf("album browse run not picked up: %+v", track)
	}
	if !strings.Contains(track.AlbumArt, "vid1") {
		t.Errorf("expected fallback art for item without thumbnail, got %q", track.AlbumArt)
	}
}

func TestExtractTrackDefaults(t *testing.T) {
	track := extractTrack(&listItemRenderer{})
	if track.Title != "Unknown" || track.Artist != "Unknown Artist" {
		t.Errorf("unexpected defaults: %+v", track)
	}
}
