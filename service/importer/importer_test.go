package importer

import (
	"strings"
	"testing"
)

func TestImportCSVHeaderAliases(t *testing.T) {
	csvData := `Track,Performer,Album,Release_Year,Score,Tags,Comment
Paranoid Android,Radiohead,OK Computer,1997,10,rock; art rock,classic
Reckoner,Radiohead,In Rainbows,2007,9,,`

	ratings, result, err := ImportCSV(strings.NewReader(csvData), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Imported != 2 || result.Skipped != 0 || result.Duplicates != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	first := ratings[0]
	if first.Title != "Paranoid Android" || first.Artist != "Radiohead" {
		t.Errorf("aliased columns not mapped: %+v", first)
	}
	if first.Album != "OK Computer" || first.Year != "1997" || first.Rating != 10 {
		t.Errorf("unexpected fields: %+v", first)
	}
	if len(first.Tags) != 2 || first.Tags[0] != "rock" || first.Tags[1] != "art rock" {
		t.Errorf("unexpected tags: %v", first.Tags)
	}
	if first.Notes != "classic" {
		t.Errorf("comment column not mapped to notes: %q", first.Notes)
	}
	if first.VideoID == "" || !strings.HasPrefix(first.VideoID, "import-") {
		t.Errorf("expected synthesized video id, got %q", first.VideoID)
	}
	if len(ratings[1].Tags) != 0 {
		t.Errorf("expected empty tags slice, got %v", ratings[1].Tags)
	}
}

func TestImportCSVSkipsBadRatings(t *testing.T) {
	csvData := `title,artist,rating
Good Song,Someone,8
No Rating,Someone,
Bad Rating,Someone,loud`

	ratings, result, err := ImportCSV(strings.NewReader(csvData), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Imported != 1 || result.Skipped != 2 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(ratings) != 1 || ratings[0].Title != "Good Song" {
		t.Errorf("unexpected ratings: %+v", ratings)
	}
}

func TestImportCSVDuplicates(t *testing.T) {
	csvData := `title,artist,rating,videoId
Old Song,Someone,8,abc123
New Song,Someone,7,xyz789`

	existing := map[string]bool{"abc123": true}
	ratings, result, err := ImportCSV(strings.NewReader(csvData), existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Imported != 1 || result.Duplicates != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(ratings) != 1 || ratings[0].VideoID != "xyz789" {
		t.Errorf("unexpected ratings: %+v", ratings)
	}
}

func TestImportCSVUnrecognizedHeaders(t *testing.T) {
	_, _, err := ImportCSV(strings.NewReader("foo,bar\n1,2\n"), nil)
	if err == nil {
		t.Error("expected error for unrecognizable columns")
	}
}

func TestImportCSVRoundsFloatRatings(t *testing.T) {
	csvData := "title,rating\nA,8.6\nB,7.4\n"

	ratings, _, err := ImportCSV(strings.NewReader(csvData), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ratings[0].Rating != 9 || ratings[1].Rating != 7 {
		t.Errorf("expected rounded ratings 9 and 7, got %d and %d", ratings[0].Rating, ratings[1].Rating)
	}
}

func TestImportJSON(t *testing.T) {
	jsonData := `[
		{"song": "Paranoid Android", "artist": "Radiohead", "score": 10, "tags": ["rock", "art rock"]},
		{"name": "Reckoner", "artist": "Radiohead", "rating": "9", "video_id": "dup1"},
		{"title": "Unrateable", "artist": "Nobody"}
	]`

	existing := map[string]bool{"dup1": true}
	ratings, result, err := ImportJSON(strings.NewReader(jsonData), existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Imported != 1 || result.Duplicates != 1 || result.Skipped != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(ratings) != 1 {
		t.Fatalf("expected 1 rating, got %d", len(ratings))
	}
	r := ratings[0]
	if r.Title != "Paranoid Android" || r.Rating != 10 {
		t.Errorf("unexpected rating: %+v", r)
	}
	if len(r.Tags) != 2 || r.Tags[0] != "rock" {
		t.Errorf("json array tags not handled: %v", r.Tags)
	}
}

func TestImportJSONEmpty(t *testing.T) {
	if _, _, err := ImportJSON(strings.NewReader("[]"), nil); err == nil {
		t.Error("expected error for empty file")
	}
	if _, _, err := ImportJSON(strings.NewReader("{not json"), nil); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestSplitTags(t *testing.T) {
	if got := splitTags("a; b;c"); len(got) != 3 || got[2] != "c" {
		t.Errorf("semicolon split failed: %v", got)
	}
	if got := splitTags("a, b"); len(got) != 2 || got[1] != "b" {
		t.Errorf("comma fallback failed: %v", got)
	}
	if got := splitTags(""); got == nil || len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
}
