package analytics

import (
	"testing"

	"github.com/tunelog/tunelog/models"
)

func intPtr(n int) *int { return &n }

func sampleRatings() []*models.Rating {
	mk := func(id, title, artist string, score int, ratedAt, year string) *models.Rating {
		return &models.Rating{
			ID: id, VideoID: id, Title: title, Artist: artist,
			Rating: score, RatedAt: ratedAt, Year: year,
		}
	}
	return []*models.Rating{
		mk("1", "Paranoid Android", "Radiohead", 10, "2026-08-01T10:00:00Z", "1997"),
		mk("2", "Reckoner", "Radiohead", 9, "2026-08-02T10:00:00Z", "2007"),
		mk("3", "Holland, 1945", "Neutral Milk Hotel", 8, "2026-08-03T10:00:00Z", "1998"),
		mk("4", "Svefn-g-englar", "Sigur Ros", 6, "2026-08-04T10:00:00Z", "1999"),
	}
}

func TestFilterRatingsByArtist(t *testing.T) {
	page, total := FilterRatings(sampleRatings(), ListQuery{Artist: "radiohead"})
	if total != 2 || len(page) != 2 {
		t.Fatalf("expected 2 radiohead ratings, got %d (total %d)", len(page), total)
	}
	for _, r := range page {
		if r.Artist != "Radiohead" {
			t.Errorf("unexpected artist %s", r.Artist)
		}
	}
}

func TestFilterRatingsByRange(t *testing.T) {
	_, total := FilterRatings(sampleRatings(), ListQuery{MinRating: intPtr(8), MaxRating: intPtr(9)})
	if total != 2 {
		t.Errorf("expected 2 ratings in [8,9], got %d", total)
	}
}

func TestFilterRatingsBySearch(t *testing.T) {
	page, total := FilterRatings(sampleRatings(), ListQuery{Search: "reckoner|holland"})
	if total != 2 {
		t.Fatalf("expected 2 search hits, got %d", total)
	}
	if page[0].ID != "3" || page[1].ID != "2" {
		// default sort is ratedAt descending
		t.Errorf("unexpected order: %s %s", page[0].ID, page[1].ID)
	}
}

func TestFilterRatingsSortAndPage(t *testing.T) {
	page, total := FilterRatings(sampleRatings(), ListQuery{
		SortBy: "rating", SortOrder: "asc", Limit: 2, Offset: 1,
	})
	if total != 4 {
		t.Fatalf("expected total 4 before paging, got %d", total)
	}
	if len(page) != 2 || page[0].Rating != 8 || page[1].Rating != 9 {
		t.Errorf("unexpected page: %+v", page)
	}

	empty, total := FilterRatings(sampleRatings(), ListQuery{Limit: 10, Offset: 100})
	if len(empty) != 0 || total != 4 {
		t.Errorf("expected empty page past the end, got %d (total %d)", len(empty), total)
	}
}

func TestFilterRatingsSortByYear(t *testing.T) {
	page, _ := FilterRatings(sampleRatings(), ListQuery{SortBy: "year", SortOrder: "asc"})
	if page[0].Year != "1997" || page[len(page)-1].Year != "2007" {
		t.Errorf("expected numeric year order, got %s..%s", page[0].Year, page[len(page)-1].Year)
	}
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(sampleRatings())

	if stats.Total != 4 {
		t.Errorf("expected total 4, got %d", stats.Total)
	}
	if stats.AverageRating != 8.25 {
		t.Errorf("expected average 8.25, got %v", stats.AverageRating)
	}
	if stats.HighestRating != 10 || stats.LowestRating != 6 {
		t.Errorf("unexpected extremes: %d/%d", stats.HighestRating, stats.LowestRating)
	}
	if stats.TopArtists[0].Artist != "Radiohead" || stats.TopArtists[0].Count != 2 {
		t.Errorf("unexpected top artist: %+v", stats.TopArtists[0])
	}
	if stats.ArtistAverages["Radiohead"] != 9.5 {
		t.Errorf("expected Radiohead average 9.5, got %v", stats.ArtistAverages["Radiohead"])
	}
	if stats.RatingDistribution["10"] != 1 {
		t.Errorf("unexpected distribution: %v", stats.RatingDistribution)
	}

	empty := ComputeStats(nil)
	if empty.Total != 0 || len(empty.TopArtists) != 0 {
		t.Errorf("unexpected empty stats: %+v", empty)
	}
}
