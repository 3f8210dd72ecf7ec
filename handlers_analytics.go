package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tunelog/tunelog/models"
	"github.com/tunelog/tunelog/service/analytics"
	"github.com/tunelog/tunelog/service/importer"
)

func (app *application) analytics(w http.ResponseWriter, r *http.Request) {
	ratings, err := app.store.ListRatings()
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	c := app.settings().ShrinkageC
	if raw := r.URL.Query().Get("c"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			app.errorResponse(w, http.StatusBadRequest, "c must be a non-negative number")
			return
		}
		c = parsed
	}
	splitCredits := r.URL.Query().Get("splitArtists") == "1"

	app.jsonResponse(w, http.StatusOK, analytics.BuildReport(ratings, c, splitCredits))
}

func (app *application) chart(w http.ResponseWriter, r *http.Request) {
	ratings, err := app.store.ListRatings()
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	q := r.URL.Query()
	opts := analytics.ChartOptions{
		Dimension:  q.Get("dimension"),
		Metric:     q.Get("metric"),
		SortBy:     q.Get("sort_by"),
		SortOrder:  q.Get("sort_order"),
		Limit:      queryIntDefault(r, "limit", 0),
		MinRating:  queryInt(r, "min_rating"),
		MaxRating:  queryInt(r, "max_rating"),
		ShrinkageC: app.settings().ShrinkageC,
	}
	if opts.Dimension == "" {
		opts.Dimension = analytics.DimArtist
	}
	if opts.Metric == "" {
		opts.Metric = analytics.MetricCount
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"dimension": opts.Dimension,
		"metric":    opts.Metric,
		"points":    analytics.BuildChart(ratings, opts),
	})
}

var exportHeader = []string{
	"id", "videoId", "title", "artist", "album", "year",
	"albumArt", "rating", "ratedAt", "updatedAt", "tags", "notes",
}

func (app *application) exportCSV(w http.ResponseWriter, r *http.Request) {
	ratings, err := app.store.ListRatings()
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename=song_ratings.csv`)

	cw := csv.NewWriter(w)
	cw.Write(exportHeader)
	for _, entry := range ratings {
		cw.Write([]string{
			entry.ID,
			entry.VideoID,
			entry.Title,
			entry.Artist,
			entry.Album,
			entry.Year,
			entry.AlbumArt,
			strconv.Itoa(entry.Rating),
			entry.RatedAt,
			entry.UpdatedAt,
			strings.Join(entry.Tags, "; "),
			entry.Notes,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		app.logger.Error("writing csv export", "error", err.Error())
	}
}

func (app *application) exportJSON(w http.ResponseWriter, r *http.Request) {
	ratings, err := app.store.ListRatings()
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename=song_ratings.json`)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{
		"exportedAt": time.Now().Format(time.RFC3339),
		"total":      len(ratings),
		"ratings":    ratings,
	}); err != nil {
		app.logger.Error("writing json export", "error", err.Error())
	}
}

// importRatings accepts a multipart upload of a CSV or JSON file and
// merges its rows into the store, skipping duplicates by videoId.
func (app *application) importRatings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		app.errorResponse(w, http.StatusBadRequest, "No file provided")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		app.errorResponse(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	current, err := app.store.ListRatings()
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	existing := make(map[string]bool, len(current))
	for _, entry := range current {
		existing[entry.VideoID] = true
	}

	var (
		rows   []*models.Rating
		result *importer.Result
	)
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		rows, result, err = importer.ImportCSV(file, existing)
		if err != nil {
			app.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("Invalid CSV file: %s", err))
			return
		}
	case ".json":
		rows, result, err = importer.ImportJSON(file, existing)
		if err != nil {
			app.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON file: %s", err))
			return
		}
	default:
		app.errorResponse(w, http.StatusBadRequest, "Unsupported file type; use .csv or .json")
		return
	}

	for _, row := range rows {
		if err := app.store.CreateRating(row); err != nil {
			app.logger.Error("inserting imported rating", "videoId", row.VideoID, "error", err.Error())
			result.Imported--
			result.Skipped++
		}
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"success":    true,
		"imported":   result.Imported,
		"duplicates": result.Duplicates,
		"skipped":    result.Skipped,
	})
}
