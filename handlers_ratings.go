package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tunelog/tunelog/models"
	"github.com/tunelog/tunelog/service/analytics"
)

// ratingInput is the payload for creating or updating a rating
type ratingInput struct {
	VideoID  string    `json:"videoId"`
	Title    *string   `json:"title"`
	Artist   *string   `json:"artist"`
	Album    *string   `json:"album"`
	Year     *string   `json:"year"`
	AlbumArt *string   `json:"albumArt"`
	Rating   *int      `json:"rating"`
	Tags     *[]string `json:"tags"`
	Notes    *string   `json:"notes"`
}

func (app *application) validRating(rating int) error {
	settings := app.settings()
	if rating < settings.RatingMin || rating > settings.RatingMax {
		return fmt.Errorf("rating must be between %d and %d", settings.RatingMin, settings.RatingMax)
	}
	return nil
}

func (app *application) listRatings(w http.ResponseWriter, r *http.Request) {
	all, err := app.store.ListRatings()
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	q := r.URL.Query()
	query := analytics.ListQuery{
		Artist:    q.Get("artist"),
		MinRating: queryInt(r, "min_rating"),
		MaxRating: queryInt(r, "max_rating"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Limit:     queryIntDefault(r, "limit", 50),
		Offset:    queryIntDefault(r, "offset", 0),
	}
	if query.SortBy == "" {
		query.SortBy = "ratedAt"
	}
	if query.SortOrder == "" {
		query.SortOrder = "desc"
	}

	page, total := analytics.FilterRatings(all, query)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"ratings": page,
		"total":   total,
		"offset":  query.Offset,
		"hasMore": query.Limit > 0 && query.Offset+query.Limit < total,
		// stats always cover the full dataset
		"stats": analytics.ComputeStats(all),
	})
}

func (app *application) createRating(w http.ResponseWriter, r *http.Request) {
	var input ratingInput
	if err := app.readJSON(r, &input); err != nil {
		app.errorResponse(w, http.StatusBadRequest, "No data provided")
		return
	}

	if input.VideoID == "" {
		app.errorResponse(w, http.StatusBadRequest, "videoId is required")
		return
	}
	if input.Rating == nil {
		app.errorResponse(w, http.StatusBadRequest, "rating is required")
		return
	}
	if err := app.validRating(*input.Rating); err != nil {
		app.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := app.store.GetRatingByVideoID(input.VideoID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if existing != nil {
		app.jsonResponse(w, http.StatusConflict, map[string]any{
			"error":     "Song already rated",
			"duplicate": true,
			"entry":     existing,
		})
		return
	}

	entry := &models.Rating{
		ID:      uuid.NewString(),
		VideoID: input.VideoID,
		Title:   stringOr(input.Title, "Unknown"),
		Artist:  stringOr(input.Artist, "Unknown Artist"),
		Album:   stringOr(input.Album, ""),
		Year:    stringOr(input.Year, ""),
		Rating:  *input.Rating,
		Tags:    tagsOr(input.Tags),
		Notes:   stringOr(input.Notes, ""),
		RatedAt: time.Now().Format(time.RFC3339),
	}
	if input.AlbumArt != nil {
		entry.AlbumArt = *input.AlbumArt
	}

	if err := app.store.CreateRating(entry); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, map[string]any{"success": true, "entry": entry})
}

func (app *application) updateRating(w http.ResponseWriter, r *http.Request) {
	entry, err := app.store.GetRating(r.PathValue("id"))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if entry == nil {
		app.errorResponse(w, http.StatusNotFound, "Rating not found")
		return
	}

	var input ratingInput
	if err := app.readJSON(r, &input); err != nil {
		app.errorResponse(w, http.StatusBadRequest, "No data provided")
		return
	}

	if input.Rating != nil {
		if err := app.validRating(*input.Rating); err != nil {
			app.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		entry.Rating = *input.Rating
	}
	if input.Title != nil {
		entry.Title = *input.Title
	}
	if input.Artist != nil {
		entry.Artist = *input.Artist
	}
	if input.Album != nil {
		entry.Album = *input.Album
	}
	if input.Year != nil {
		entry.Year = *input.Year
	}
	if input.Tags != nil {
		entry.Tags = *input.Tags
	}
	if input.Notes != nil {
		entry.Notes = *input.Notes
	}
	entry.UpdatedAt = time.Now().Format(time.RFC3339)

	if err := app.store.UpdateRating(entry); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{"success": true, "entry": entry})
}

func (app *application) deleteRating(w http.ResponseWriter, r *http.Request) {
	deleted, err := app.store.DeleteRating(r.PathValue("id"))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if !deleted {
		app.errorResponse(w, http.StatusNotFound, "Rating not found")
		return
	}
	app.jsonResponse(w, http.StatusOK, map[string]any{"success": true})
}

func (app *application) listUnrated(w http.ResponseWriter, r *http.Request) {
	unrated, err := app.store.ListUnrated()
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if unrated == nil {
		unrated = []*models.UnratedSong{}
	}
	app.jsonResponse(w, http.StatusOK, map[string]any{
		"unrated": unrated,
		"total":   len(unrated),
	})
}

func (app *application) addUnrated(w http.ResponseWriter, r *http.Request) {
	var input struct {
		VideoID  string `json:"videoId"`
		Title    string `json:"title"`
		Artist   string `json:"artist"`
		Album    string `json:"album"`
		AlbumID  string `json:"albumId"`
		Year     string `json:"year"`
		AlbumArt string `json:"albumArt"`
	}
	if err := app.readJSON(r, &input); err != nil {
		app.errorResponse(w, http.StatusBadRequest, "No data provided")
		return
	}
	if input.VideoID == "" {
		app.errorResponse(w, http.StatusBadRequest, "videoId is required")
		return
	}

	// skip silently if already rated or already captured
	rated, err := app.store.GetRatingByVideoID(input.VideoID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if rated != nil {
		app.jsonResponse(w, http.StatusOK, map[string]any{"skipped": true, "reason": "already rated"})
		return
	}
	existing, err := app.store.GetUnratedByVideoID(input.VideoID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if existing != nil {
		app.jsonResponse(w, http.StatusOK, map[string]any{"skipped": true, "reason": "already in unrated"})
		return
	}

	entry := &models.UnratedSong{
		ID:        uuid.NewString(),
		VideoID:   input.VideoID,
		Title:     orDefault(input.Title, "Unknown"),
		Artist:    orDefault(input.Artist, "Unknown Artist"),
		Album:     input.Album,
		AlbumID:   input.AlbumID,
		Year:      input.Year,
		AlbumArt:  input.AlbumArt,
		SkippedAt: time.Now().Format(time.RFC3339),
	}
	if err := app.store.CreateUnrated(entry); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusCreated, map[string]any{"success": true, "entry": entry})
}

func (app *application) deleteUnrated(w http.ResponseWriter, r *http.Request) {
	deleted, err := app.store.DeleteUnrated(r.PathValue("id"))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if !deleted {
		app.errorResponse(w, http.StatusNotFound, "Entry not found")
		return
	}
	app.jsonResponse(w, http.StatusOK, map[string]any{"success": true})
}

func (app *application) deleteAllUnrated(w http.ResponseWriter, r *http.Request) {
	if err := app.store.DeleteAllUnrated(); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, map[string]any{"success": true})
}

// rateUnrated promotes an unrated entry to a rating
func (app *application) rateUnrated(w http.ResponseWriter, r *http.Request) {
	entry, err := app.store.GetUnrated(r.PathValue("id"))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if entry == nil {
		app.errorResponse(w, http.StatusNotFound, "Unrated entry not found")
		return
	}

	var input ratingInput
	if err := app.readJSON(r, &input); err != nil || input.Rating == nil {
		app.errorResponse(w, http.StatusBadRequest, "rating is required")
		return
	}
	if err := app.validRating(*input.Rating); err != nil {
		app.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	// the song may have been rated through another path in the meantime
	rated, err := app.store.GetRatingByVideoID(entry.VideoID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if rated != nil {
		if _, err := app.store.DeleteUnrated(entry.ID); err != nil {
			app.logger.Error("removing promoted unrated entry", "id", entry.ID, "error", err.Error())
		}
		app.jsonResponse(w, http.StatusConflict, map[string]any{
			"error":     "Song already rated",
			"duplicate": true,
			"entry":     rated,
		})
		return
	}

	rating := &models.Rating{
		ID:       uuid.NewString(),
		VideoID:  entry.VideoID,
		Title:    stringOr(input.Title, entry.Title),
		Artist:   stringOr(input.Artist, entry.Artist),
		Album:    stringOr(input.Album, entry.Album),
		Year:     stringOr(input.Year, entry.Year),
		AlbumArt: entry.AlbumArt,
		Rating:   *input.Rating,
		Tags:     tagsOr(input.Tags),
		Notes:    stringOr(input.Notes, ""),
		RatedAt:  time.Now().Format(time.RFC3339),
	}
	if err := app.store.CreateRating(rating); err != nil {
		app.serverError(w, r, err)
		return
	}
	if _, err := app.store.DeleteUnrated(entry.ID); err != nil {
		app.logger.Error("removing promoted unrated entry", "id", entry.ID, "error", err.Error())
	}

	app.jsonResponse(w, http.StatusCreated, map[string]any{"success": true, "entry": rating})
}

func stringOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func tagsOr(tags *[]string) []string {
	if tags == nil {
		return []string{}
	}
	return *tags
}
