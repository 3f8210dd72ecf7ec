package analytics

import (
	"math"
	"testing"

	"github.com/tunelog/tunelog/models"
)

func rating(artist, album string, score int) *models.Rating {
	return &models.Rating{
		ID:      artist + "-" + album,
		VideoID: artist + album,
		Title:   "Song",
		Artist:  artist,
		Album:   album,
		Rating:  score,
		RatedAt: "2026-08-01T12:00:00Z",
	}
}

func TestGlobalMean(t *testing.T) {
	if got := GlobalMean(nil); got != 0 {
		t.Errorf("expected 0 for empty input, got %v", got)
	}
	ratings := []*models.Rating{
		rating("X", "A1", 10),
		rating("X", "A2", 10),
		rating("Y", "B1", 8),
	}
	got := GlobalMean(ratings)
	if math.Abs(got-28.0/3.0) > 1e-9 {
		t.Errorf("expected 9.333..., got %v", got)
	}
}

func TestArtistSummariesShrinkage(t *testing.T) {
	ratings := []*models.Rating{
		rating("X", "A1", 10),
		rating("X", "A2", 10),
		rating("Y", "B1", 8),
	}

	summaries := ArtistSummaries(ratings, 5, false)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 artists, got %d", len(summaries))
	}

	x, y := summaries[0], summaries[1]
	if x.Name != "X" || x.Rank != 1 {
		t.Errorf("expected X ranked first, got %s rank %d", x.Name, x.Rank)
	}
	if y.Name != "Y" || y.Rank != 2 {
		t.Errorf("expected Y ranked second, got %s rank %d", y.Name, y.Rank)
	}

	// X: (2*10 + 5*9.333) / 7, Y: (1*8 + 5*9.333) / 6
	if x.AdjustedScore != 9.524 {
		t.Errorf("expected X adjusted 9.524, got %v", x.AdjustedScore)
	}
	if y.AdjustedScore != 9.111 {
		t.Errorf("expected Y adjusted 9.111, got %v", y.AdjustedScore)
	}

	// shrinkage pulls the small-sample high average below the raw one
	if x.AdjustedScore >= x.AvgScore {
		t.Errorf("expected adjusted %v below raw average %v", x.AdjustedScore, x.AvgScore)
	}
	if x.Appearances != 2 || x.AlbumCount != 2 {
		t.Errorf("expected 2 appearances over 2 albums, got %d/%d", x.Appearances, x.AlbumCount)
	}
}

func TestZeroShrinkageIsRawAverage(t *testing.T) {
	ratings := []*models.Rating{
		rating("X", "A1", 10),
		rating("X", "A2", 7),
		rating("Y", "B1", 8),
	}

	for _, s := range ArtistSummaries(ratings, 0, false) {
		if s.AdjustedScore != s.AvgScore {
			t.Errorf("%s: expected adjusted == avg with C=0, got %v vs %v", s.Name, s.AdjustedScore, s.AvgScore)
		}
	}
}

func TestLargeShrinkageApproachesGlobalMean(t *testing.T) {
	ratings := []*models.Rating{
		rating("X", "A1", 10),
		rating("Y", "B1", 2),
	}
	mean := GlobalMean(ratings)

	for _, s := range ArtistSummaries(ratings, 1e9, false) {
		if math.Abs(s.AdjustedScore-round(mean, 3)) > 0.001 {
			t.Errorf("%s: expected adjusted near global mean %v, got %v", s.Name, mean, s.AdjustedScore)
		}
	}
}

func TestRanksAreContiguous(t *testing.T) {
	ratings := []*models.Rating{
		rating("A", "1", 5),
		rating("B", "2", 5),
		rating("C", "3", 5),
	}

	summaries := ArtistSummaries(ratings, 5, false)
	for i, s := range summaries {
		if s.Rank != i+1 {
			t.Errorf("expected rank %d, got %d", i+1, s.Rank)
		}
	}
	// equal scores keep first-seen order
	if summaries[0].Name != "A" || summaries[1].Name != "B" || summaries[2].Name != "C" {
		t.Errorf("expected stable tie order A B C, got %s %s %s",
			summaries[0].Name, summaries[1].Name, summaries[2].Name)
	}
}

func TestSplitArtistCredits(t *testing.T) {
	ratings := []*models.Rating{
		rating("A, B", "1", 10),
		rating("A", "2", 6),
	}

	combined := ArtistSummaries(ratings, 0, false)
	if len(combined) != 2 {
		t.Fatalf("expected 2 entries without splitting, got %d", len(combined))
	}

	split := ArtistSummaries(ratings, 0, true)
	byName := map[string]*Summary{}
	for _, s := range split {
		byName[s.Name] = s
	}
	if len(split) != 2 {
		t.Fatalf("expected A and B after splitting, got %d entries", len(split))
	}
	if a := byName["A"]; a == nil || a.Appearances != 2 {
		t.Errorf("expected A with 2 appearances, got %+v", a)
	}
	if b := byName["B"]; b == nil || b.Appearances != 1 {
		t.Errorf("expected B with 1 appearance, got %+v", b)
	}
}

func TestAlbumSummaries(t *testing.T) {
	r1 := rating("X", "Album One", 9)
	r1.Year = "1997"
	r1.AlbumArt = "http://img/1"
	r2 := rating("Y", "Album One", 7)
	r2.Year = "2005" // conflicting year, first record wins
	r3 := rating("Z", "", 5)

	summaries := AlbumSummaries([]*models.Rating{r1, r2, r3}, 0)
	byName := map[string]*Summary{}
	for _, s := range summaries {
		byName[s.Name] = s
	}

	one := byName["Album One"]
	if one == nil {
		t.Fatal("expected Album One summary")
	}
	if one.Appearances != 2 || one.Artist != "X" || one.Year != "1997" || one.AlbumArt != "http://img/1" {
		t.Errorf("unexpected representative fields: %+v", one)
	}
	if byName["Unknown"] == nil {
		t.Error("expected empty album grouped under Unknown")
	}
}

func TestBuildReport(t *testing.T) {
	r1 := rating("X", "A", 10)
	r1.RatedAt = "2026-08-01T09:00:00Z"
	r1.Year = "1994"
	r1.Tags = []string{"Rock", " indie "}
	r2 := rating("Y", "B", 8)
	r2.RatedAt = "2026-08-01T21:00:00Z"
	r2.Year = "1991"
	r2.Tags = []string{"rock"}
	r3 := rating("Z", "C", 8)
	r3.RatedAt = "2026-08-02T10:00:00Z"
	r3.Year = "not a year"

	report := BuildReport([]*models.Rating{r1, r2, r3}, 5, false)

	if report.TotalSongs != 3 {
		t.Errorf("expected 3 songs, got %d", report.TotalSongs)
	}
	if report.GlobalMean != 8.667 {
		t.Errorf("expected global mean 8.667, got %v", report.GlobalMean)
	}

	if len(report.Timeline) != 2 {
		t.Fatalf("expected 2 timeline days, got %d", len(report.Timeline))
	}
	first := report.Timeline[0]
	if first.Date != "2026-08-01" || first.Count != 2 || first.AvgRating != 9 {
		t.Errorf("unexpected first timeline point: %+v", first)
	}

	if report.Distribution["8"] != 2 || report.Distribution["10"] != 1 {
		t.Errorf("unexpected distribution: %v", report.Distribution)
	}

	nineties, ok := report.Decades["1990s"]
	if !ok || nineties.Count != 2 || nineties.AvgRating != 9 {
		t.Errorf("unexpected 1990s decade stats: %+v (found %v)", nineties, ok)
	}
	if len(report.Decades) != 1 {
		t.Errorf("non-numeric year must be skipped, got %v", report.Decades)
	}

	if len(report.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %v", report.Tags)
	}
	if report.Tags[0].Tag != "rock" || report.Tags[0].Count != 2 {
		t.Errorf("expected rock counted twice case-folded, got %+v", report.Tags[0])
	}
	if report.Tags[1].Tag != "indie" {
		t.Errorf("expected trimmed indie tag, got %+v", report.Tags[1])
	}
}
