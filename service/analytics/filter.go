package analytics

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tunelog/tunelog/models"
)

// ListQuery filters, sorts, and pages the rating list
type ListQuery struct {
	Artist    string // substring match on the artist field
	MinRating *int
	MaxRating *int
	Search    string // smart-match query
	SortBy    string // title|artist|album|rating|year|ratedAt
	SortOrder string // asc|desc
	Limit     int    // 0 means no paging
	Offset    int
}

// FilterRatings applies the query to a snapshot, returning the page and
// the total count after filtering. The input slice is not mutated.
func FilterRatings(ratings []*models.Rating, q ListQuery) ([]*models.Rating, int) {
	filtered := make([]*models.Rating, 0, len(ratings))
	groups := ParseQuery(q.Search)
	artist := strings.ToLower(q.Artist)

	for _, r := range ratings {
		if artist != "" && !strings.Contains(strings.ToLower(r.Artist), artist) {
			continue
		}
		if q.MinRating != nil && r.Rating < *q.MinRating {
			continue
		}
		if q.MaxRating != nil && r.Rating > *q.MaxRating {
			continue
		}
		if !MatchGroups(groups, r.Title, r.Artist, r.Album, r.Notes, strings.Join(r.Tags, " ")) {
			continue
		}
		filtered = append(filtered, r)
	}

	sortRatings(filtered, q.SortBy, q.SortOrder != "asc")

	total := len(filtered)
	if q.Limit > 0 {
		if q.Offset >= total {
			return []*models.Rating{}, total
		}
		end := q.Offset + q.Limit
		if end > total {
			end = total
		}
		return filtered[q.Offset:end], total
	}
	return filtered, total
}

func sortRatings(ratings []*models.Rating, sortBy string, desc bool) {
	key := func(r *models.Rating) string {
		switch sortBy {
		case "title":
			return strings.ToLower(r.Title)
		case "artist":
			return strings.ToLower(r.Artist)
		case "album":
			return strings.ToLower(r.Album)
		default:
			return r.RatedAt
		}
	}

	switch sortBy {
	case "rating":
		sort.SliceStable(ratings, func(i, j int) bool {
			if desc {
				return ratings[i].Rating > ratings[j].Rating
			}
			return ratings[i].Rating < ratings[j].Rating
		})
	case "year":
		sort.SliceStable(ratings, func(i, j int) bool {
			yi, _ := parseYear(ratings[i].Year)
			yj, _ := parseYear(ratings[j].Year)
			if desc {
				return yi > yj
			}
			return yi < yj
		})
	default:
		sort.SliceStable(ratings, func(i, j int) bool {
			if desc {
				return key(ratings[i]) > key(ratings[j])
			}
			return key(ratings[i]) < key(ratings[j])
		})
	}
}

// Stats is the summary block returned alongside the ratings list
type Stats struct {
	Total              int                `json:"total"`
	AverageRating      float64            `json:"averageRating"`
	HighestRating      int                `json:"highestRating"`
	LowestRating       int                `json:"lowestRating"`
	TopArtists         []ArtistCount      `json:"topArtists"`
	ArtistAverages     map[string]float64 `json:"artistAverages"`
	RatingDistribution map[string]int     `json:"ratingDistribution"`
}

// ArtistCount pairs an artist with how many rated songs they have
type ArtistCount struct {
	Artist string `json:"artist"`
	Count  int    `json:"count"`
}

// ComputeStats summarizes the full dataset (always the full dataset,
// regardless of any active list filter)
func ComputeStats(ratings []*models.Rating) *Stats {
	stats := &Stats{
		Total:              len(ratings),
		ArtistAverages:     make(map[string]float64),
		RatingDistribution: make(map[string]int),
		TopArtists:         []ArtistCount{},
	}
	if len(ratings) == 0 {
		return stats
	}

	sum := 0
	highest := ratings[0].Rating
	lowest := ratings[0].Rating
	counts := make(map[string]int)
	totals := make(map[string]int)
	var order []string

	for _, r := range ratings {
		sum += r.Rating
		if r.Rating > highest {
			highest = r.Rating
		}
		if r.Rating < lowest {
			lowest = r.Rating
		}
		if _, seen := counts[r.Artist]; !seen {
			order = append(order, r.Artist)
		}
		counts[r.Artist]++
		totals[r.Artist] += r.Rating
		stats.RatingDistribution[strconv.Itoa(r.Rating)]++
	}

	stats.AverageRating = round(float64(sum)/float64(len(ratings)), 2)
	stats.HighestRating = highest
	stats.LowestRating = lowest

	for _, artist := range order {
		stats.TopArtists = append(stats.TopArtists, ArtistCount{Artist: artist, Count: counts[artist]})
		stats.ArtistAverages[artist] = round(float64(totals[artist])/float64(counts[artist]), 2)
	}
	sort.SliceStable(stats.TopArtists, func(i, j int) bool {
		return stats.TopArtists[i].Count > stats.TopArtists[j].Count
	})
	if len(stats.TopArtists) > 10 {
		stats.TopArtists = stats.TopArtists[:10]
	}

	return stats
}
