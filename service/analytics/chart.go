package analytics

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tunelog/tunelog/models"
)

// Chart dimensions. Tag is multi-valued: a record tagged {x, y}
// contributes to both groups, and an untagged record lands in the
// NoTagLabel sentinel group.
const (
	DimArtist = "artist"
	DimAlbum  = "album"
	DimYear   = "year"
	DimRating = "rating"
	DimMonth  = "month"
	DimTag    = "tag"
)

const (
	MetricCount    = "count"
	MetricAvg      = "avg"
	MetricSum      = "sum"
	MetricAdjusted = "adjusted"
)

// NoTagLabel is the sentinel group for records without tags
const NoTagLabel = "no tag"

// UnknownLabel is used when a record lacks the grouping field
const UnknownLabel = "Unknown"

// ChartOptions configures one group-and-aggregate run
type ChartOptions struct {
	Dimension string
	Metric    string
	SortBy    string // "label" or "value"
	SortOrder string // "asc" or "desc"
	Limit     int
	MinRating *int
	MaxRating *int
	// ShrinkageC is only consulted for MetricAdjusted
	ShrinkageC float64
}

// ChartPoint is one (label, value) pair of the result series
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// BuildChart groups the rating snapshot by the requested dimension and
// reduces each group with the requested metric. Values are rounded to 2
// decimal places. Total over malformed rows: missing fields fall into
// the Unknown / no-tag groups.
func BuildChart(ratings []*models.Rating, opts ChartOptions) []ChartPoint {
	// the adjusted metric shrinks toward the corpus-wide mean, computed
	// before the rating-range prefilter narrows the snapshot
	globalMean := GlobalMean(ratings)

	filtered := ratings
	if opts.MinRating != nil || opts.MaxRating != nil {
		filtered = make([]*models.Rating, 0, len(ratings))
		for _, r := range ratings {
			if opts.MinRating != nil && r.Rating < *opts.MinRating {
				continue
			}
			if opts.MaxRating != nil && r.Rating > *opts.MaxRating {
				continue
			}
			filtered = append(filtered, r)
		}
	}

	type bucket struct {
		count int
		total int
	}
	buckets := make(map[string]*bucket)
	var order []string
	add := func(label string, rating int) {
		b, ok := buckets[label]
		if !ok {
			b = &bucket{}
			buckets[label] = b
			order = append(order, label)
		}
		b.count++
		b.total += rating
	}

	for _, r := range filtered {
		for _, label := range groupLabels(r, opts.Dimension) {
			add(label, r.Rating)
		}
	}

	points := make([]ChartPoint, 0, len(order))
	for _, label := range order {
		b := buckets[label]
		var value float64
		switch opts.Metric {
		case MetricAvg:
			value = float64(b.total) / float64(b.count)
		case MetricSum:
			value = float64(b.total)
		case MetricAdjusted:
			avg := float64(b.total) / float64(b.count)
			value = adjusted(b.count, avg, opts.ShrinkageC, globalMean)
		default:
			value = float64(b.count)
		}
		points = append(points, ChartPoint{Label: label, Value: round(value, 2)})
	}

	asc := opts.SortOrder == "asc"
	if opts.SortBy == "label" {
		sort.SliceStable(points, func(i, j int) bool {
			if asc {
				return points[i].Label < points[j].Label
			}
			return points[i].Label > points[j].Label
		})
	} else {
		sort.SliceStable(points, func(i, j int) bool {
			if asc {
				return points[i].Value < points[j].Value
			}
			return points[i].Value > points[j].Value
		})
	}

	if opts.Limit > 0 && len(points) > opts.Limit {
		points = points[:opts.Limit]
	}
	return points
}

func groupLabels(r *models.Rating, dimension string) []string {
	switch dimension {
	case DimAlbum:
		return []string{orUnknown(r.Album)}
	case DimYear:
		return []string{orUnknown(r.Year)}
	case DimRating:
		return []string{strconv.Itoa(r.Rating)}
	case DimMonth:
		if len(r.RatedAt) >= 7 {
			return []string{r.RatedAt[:7]}
		}
		return []string{UnknownLabel}
	case DimTag:
		var labels []string
		for _, tag := range r.Tags {
			if t := strings.ToLower(strings.TrimSpace(tag)); t != "" {
				labels = append(labels, t)
			}
		}
		if len(labels) == 0 {
			return []string{NoTagLabel}
		}
		return labels
	default:
		return []string{orUnknown(r.Artist)}
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return UnknownLabel
	}
	return s
}
