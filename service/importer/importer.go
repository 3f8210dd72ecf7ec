// Package importer normalizes user-supplied CSV/JSON files into rating
// records. Column-name aliasing and type coercion happen here, at the
// import boundary; the aggregation engine only ever sees clean records.
package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tunelog/tunelog/models"
)

// canonical header mapping
var headerAliases = map[string]string{
	"title":       "title",
	"track":       "title",
	"track_title": "title",
	"name":        "title",
	"song":        "title",

	"artist":      "artist",
	"artist_name": "artist",
	"performer":   "artist",

	"album":       "album",
	"album_title": "album",

	"year":         "year",
	"release_year": "year",

	"rating": "rating",
	"score":  "rating",

	"tags": "tags",

	"notes":   "notes",
	"note":    "notes",
	"comment": "notes",

	"id":        "id",
	"videoid":   "videoId",
	"video_id":  "videoId",
	"albumart":  "albumArt",
	"album_art": "albumArt",

	"ratedat":  "ratedAt",
	"rated_at": "ratedAt",
	"date":     "ratedAt",
}

// Result counts what happened to each input row
type Result struct {
	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"`
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ImportCSV reads ratings from a CSV stream. existing maps video ids
// that are already rated; rows matching one are counted as duplicates.
// Rows without a usable numeric rating are skipped, not errors.
func ImportCSV(r io.Reader, existing map[string]bool) ([]*models.Rating, *Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rawHeaders, err := reader.Read()
	if err != nil {
		return nil, nil, err
	}

	columnMap := make(map[int]string)
	for i, h := range rawHeaders {
		if canonical, ok := headerAliases[normalize(h)]; ok {
			columnMap[i] = canonical
		}
	}
	if len(columnMap) == 0 {
		return nil, nil, errors.New("CSV has no recognizable columns")
	}

	result := &Result{}
	var ratings []*models.Rating

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		row := make(map[string]string)
		for i, field := range record {
			if canonical, ok := columnMap[i]; ok {
				row[canonical] = strings.TrimSpace(field)
			}
		}

		rating, ok := buildRating(row, existing, result)
		if !ok {
			continue
		}
		ratings = append(ratings, rating)
	}

	return ratings, result, nil
}

// ImportJSON reads ratings from a JSON array of objects. Field names go
// through the same alias map as CSV headers.
func ImportJSON(r io.Reader, existing map[string]bool) ([]*models.Rating, *Result, error) {
	var rows []map[string]any
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("no records in file")
	}

	result := &Result{}
	var ratings []*models.Rating

	for _, raw := range rows {
		row := make(map[string]string)
		for k, v := range raw {
			canonical, ok := headerAliases[normalize(k)]
			if !ok {
				continue
			}
			switch val := v.(type) {
			case string:
				row[canonical] = strings.TrimSpace(val)
			case float64:
				row[canonical] = strconv.FormatFloat(val, 'f', -1, 64)
			case []any:
				// tags may arrive as a JSON array
				var parts []string
				for _, item := range val {
					if s, ok := item.(string); ok {
						parts = append(parts, s)
					}
				}
				row[canonical] = strings.Join(parts, ";")
			}
		}

		rating, ok := buildRating(row, existing, result)
		if !ok {
			continue
		}
		ratings = append(ratings, rating)
	}

	return ratings, result, nil
}

func buildRating(row map[string]string, existing map[string]bool, result *Result) (*models.Rating, bool) {
	score, err := parseRating(row["rating"])
	if err != nil {
		result.Skipped++
		return nil, false
	}

	videoID := row["videoId"]
	if videoID == "" {
		// synthesize a stable-enough id so re-imports don't collide
		videoID = "import-" + uuid.NewString()
	} else if existing[videoID] {
		result.Duplicates++
		return nil, false
	}

	title := row["title"]
	if title == "" {
		title = "Unknown"
	}
	artist := row["artist"]
	if artist == "" {
		artist = "Unknown Artist"
	}
	ratedAt := row["ratedAt"]
	if ratedAt == "" {
		ratedAt = time.Now().Format(time.RFC3339)
	}

	result.Imported++
	return &models.Rating{
		ID:       uuid.NewString(),
		VideoID:  videoID,
		Title:    title,
		Artist:   artist,
		Album:    row["album"],
		Year:     row["year"],
		AlbumArt: row["albumArt"],
		Rating:   score,
		Tags:     splitTags(row["tags"]),
		Notes:    row["notes"],
		RatedAt:  ratedAt,
	}, true
}

// parseRating coerces a rating cell to an integer. Floats are rounded;
// anything else fails.
func parseRating(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty rating")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(math.Round(f)), nil
}

// splitTags splits on ";" or "," and trims
func splitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	sep := ";"
	if !strings.Contains(s, ";") {
		sep = ","
	}
	var tags []string
	for _, p := range strings.Split(s, sep) {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	if tags == nil {
		return []string{}
	}
	return tags
}
