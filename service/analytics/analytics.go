// Package analytics derives ranked summaries and grouped aggregations
// from the flat rating list. Everything here is a pure function over an
// immutable snapshot: summaries are recomputed wholesale per request and
// discarded, never maintained incrementally.
package analytics

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tunelog/tunelog/models"
)

// Summary is a ranked per-entity (artist or album) aggregate
type Summary struct {
	Rank          int     `json:"rank"`
	Name          string  `json:"name"`
	Artist        string  `json:"artist,omitempty"`
	Year          string  `json:"year,omitempty"`
	AlbumArt      string  `json:"albumArt,omitempty"`
	Appearances   int     `json:"appearances"`
	TotalScore    float64 `json:"totalScore"`
	AvgScore      float64 `json:"avgScore"`
	AdjustedScore float64 `json:"adjustedScore"`
	AlbumCount    int     `json:"albumCount,omitempty"`
	MinRating     int     `json:"minRating"`
	MaxRating     int     `json:"maxRating"`
}

// TimelinePoint is one day of rating activity
type TimelinePoint struct {
	Date      string  `json:"date"`
	Count     int     `json:"count"`
	AvgRating float64 `json:"avgRating"`
}

// DecadeStats aggregates ratings whose release year falls in one decade
type DecadeStats struct {
	Count     int     `json:"count"`
	AvgRating float64 `json:"avgRating"`
}

// TagStats aggregates ratings carrying one tag
type TagStats struct {
	Tag       string  `json:"tag"`
	Count     int     `json:"count"`
	AvgRating float64 `json:"avgRating"`
}

// Report is the full analytics payload
type Report struct {
	Artists      []*Summary             `json:"artists"`
	Albums       []*Summary             `json:"albums"`
	Timeline     []TimelinePoint        `json:"timeline"`
	Distribution map[string]int         `json:"distribution"`
	Decades      map[string]DecadeStats `json:"decades"`
	Tags         []TagStats             `json:"tags"`
	GlobalMean   float64                `json:"globalMean"`
	TotalSongs   int                    `json:"totalSongs"`
	ShrinkageC   float64                `json:"shrinkageC"`
}

// GlobalMean is the corpus-wide arithmetic mean rating
func GlobalMean(ratings []*models.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(ratings))
}

// adjusted pulls an entity's raw average toward the global mean in
// inverse proportion to its sample size: (n·avg + C·μ) / (n + C).
// C=0 degenerates to the raw average.
func adjusted(n int, avg, c, globalMean float64) float64 {
	return (float64(n)*avg + c*globalMean) / (float64(n) + c)
}

type accumulator struct {
	scores []int
	albums map[string]struct{}
	// album representative fields, first record wins
	artist   string
	year     string
	albumArt string
}

// ArtistSummaries ranks artists by Bayesian-adjusted score. When
// splitCredits is set, a multi-artist credit like "A, B" counts one
// appearance for each of A and B; this comma heuristic misfires on
// artist names that legitimately contain commas, which is why it is a
// toggle and off by default.
func ArtistSummaries(ratings []*models.Rating, c float64, splitCredits bool) []*Summary {
	globalMean := GlobalMean(ratings)

	data := make(map[string]*accumulator)
	var order []string

	for _, r := range ratings {
		names := []string{r.Artist}
		if splitCredits {
			names = splitArtistCredits(r.Artist)
		}
		for _, name := range names {
			if name == "" {
				continue
			}
			acc, ok := data[name]
			if !ok {
				acc = &accumulator{albums: make(map[string]struct{})}
				data[name] = acc
				order = append(order, name)
			}
			acc.scores = append(acc.scores, r.Rating)
			acc.albums[r.Album] = struct{}{}
		}
	}

	summaries := make([]*Summary, 0, len(order))
	for _, name := range order {
		s := summarize(name, data[name], c, globalMean)
		if s == nil {
			continue
		}
		s.AlbumCount = len(data[name].albums)
		summaries = append(summaries, s)
	}

	rank(summaries)
	return summaries
}

// AlbumSummaries ranks albums by Bayesian-adjusted score. The
// representative artist, year, and art are first-seen values for the
// album key and are not re-validated across records.
func AlbumSummaries(ratings []*models.Rating, c float64) []*Summary {
	globalMean := GlobalMean(ratings)

	data := make(map[string]*accumulator)
	var order []string

	for _, r := range ratings {
		key := r.Album
		if key == "" {
			key = "Unknown"
		}
		acc, ok := data[key]
		if !ok {
			acc = &accumulator{
				artist:   r.Artist,
				year:     r.Year,
				albumArt: r.AlbumArt,
			}
			data[key] = acc
			order = append(order, key)
		}
		acc.scores = append(acc.scores, r.Rating)
	}

	summaries := make([]*Summary, 0, len(order))
	for _, key := range order {
		acc := data[key]
		s := summarize(key, acc, c, globalMean)
		if s == nil {
			continue
		}
		s.Artist = acc.artist
		s.Year = acc.year
		s.AlbumArt = acc.albumArt
		summaries = append(summaries, s)
	}

	rank(summaries)
	return summaries
}

func summarize(name string, acc *accumulator, c, globalMean float64) *Summary {
	n := len(acc.scores)
	if n == 0 {
		return nil
	}

	total := 0
	minRating := acc.scores[0]
	maxRating := acc.scores[0]
	for _, s := range acc.scores {
		total += s
		if s < minRating {
			minRating = s
		}
		if s > maxRating {
			maxRating = s
		}
	}
	avg := float64(total) / float64(n)

	return &Summary{
		Name:          name,
		Appearances:   n,
		TotalScore:    round(float64(total), 2),
		AvgScore:      round(avg, 3),
		AdjustedScore: round(adjusted(n, avg, c, globalMean), 3),
		MinRating:     minRating,
		MaxRating:     maxRating,
	}
}

// rank sorts by adjusted score descending (stable, so ties keep
// insertion order) and assigns contiguous 1-based ranks
func rank(summaries []*Summary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].AdjustedScore > summaries[j].AdjustedScore
	})
	for i, s := range summaries {
		s.Rank = i + 1
	}
}

// BuildReport computes the full analytics payload in one pass over the
// snapshot
func BuildReport(ratings []*models.Rating, c float64, splitCredits bool) *Report {
	report := &Report{
		Artists:      ArtistSummaries(ratings, c, splitCredits),
		Albums:       AlbumSummaries(ratings, c),
		Timeline:     []TimelinePoint{},
		Distribution: make(map[string]int),
		Decades:      make(map[string]DecadeStats),
		Tags:         []TagStats{},
		GlobalMean:   round(GlobalMean(ratings), 3),
		TotalSongs:   len(ratings),
		ShrinkageC:   c,
	}

	// timeline: ratings per day
	type bucket struct {
		count int
		total int
	}
	days := make(map[string]*bucket)
	for _, r := range ratings {
		if len(r.RatedAt) < 10 {
			continue
		}
		day := r.RatedAt[:10]
		b, ok := days[day]
		if !ok {
			b = &bucket{}
			days[day] = b
		}
		b.count++
		b.total += r.Rating
	}
	dayKeys := sortedKeys(days)
	for _, day := range dayKeys {
		b := days[day]
		report.Timeline = append(report.Timeline, TimelinePoint{
			Date:      day,
			Count:     b.count,
			AvgRating: round(float64(b.total)/float64(b.count), 2),
		})
	}

	// rating distribution
	for _, r := range ratings {
		report.Distribution[strconv.Itoa(r.Rating)]++
	}

	// decade breakdown, skipping records without a numeric year
	decades := make(map[string]*bucket)
	for _, r := range ratings {
		year, ok := parseYear(r.Year)
		if !ok {
			continue
		}
		decade := strconv.Itoa(year/10*10) + "s"
		b, found := decades[decade]
		if !found {
			b = &bucket{}
			decades[decade] = b
		}
		b.count++
		b.total += r.Rating
	}
	for decade, b := range decades {
		report.Decades[decade] = DecadeStats{
			Count:     b.count,
			AvgRating: round(float64(b.total)/float64(b.count), 2),
		}
	}

	// tag breakdown, most used first
	tagBuckets := make(map[string]*bucket)
	var tagOrder []string
	for _, r := range ratings {
		for _, tag := range r.Tags {
			t := strings.ToLower(strings.TrimSpace(tag))
			if t == "" {
				continue
			}
			b, ok := tagBuckets[t]
			if !ok {
				b = &bucket{}
				tagBuckets[t] = b
				tagOrder = append(tagOrder, t)
			}
			b.count++
			b.total += r.Rating
		}
	}
	for _, t := range tagOrder {
		b := tagBuckets[t]
		report.Tags = append(report.Tags, TagStats{
			Tag:       t,
			Count:     b.count,
			AvgRating: round(float64(b.total)/float64(b.count), 2),
		})
	}
	sort.SliceStable(report.Tags, func(i, j int) bool {
		return report.Tags[i].Count > report.Tags[j].Count
	})

	return report
}

func splitArtistCredits(artist string) []string {
	parts := strings.Split(artist, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	year := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		year = year*10 + int(r-'0')
	}
	return year, true
}

func round(x float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(x*p) / p
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
