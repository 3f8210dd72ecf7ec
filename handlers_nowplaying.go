package main

import (
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/tunelog/tunelog/models"
	"github.com/tunelog/tunelog/service/versions"
)

// annotatedTrack is a track snapshot decorated with its rating status
type annotatedTrack struct {
	models.Track
	AlreadyRated   bool                `json:"alreadyRated"`
	ExistingRating *models.Rating      `json:"existingRating,omitempty"`
	AlreadyUnrated bool                `json:"alreadyUnrated"`
	UnratedEntry   *models.UnratedSong `json:"unratedEntry,omitempty"`
}

func (app *application) annotate(track *models.Track) (*annotatedTrack, error) {
	existing, err := app.store.GetRatingByVideoID(track.VideoID)
	if err != nil {
		return nil, err
	}
	unrated, err := app.store.GetUnratedByVideoID(track.VideoID)
	if err != nil {
		return nil, err
	}

	at := &annotatedTrack{
		Track:          *track,
		AlreadyRated:   existing != nil,
		ExistingRating: existing,
		AlreadyUnrated: unrated != nil,
		UnratedEntry:   unrated,
	}
	// fill in a cached release year without blocking the response
	if at.Year == "" && at.AlbumID != "" {
		at.Year = app.enricher.CachedYear(at.AlbumID)
	}
	return at, nil
}

func (app *application) nowPlaying(w http.ResponseWriter, r *http.Request) {
	if !app.provider.Authenticated() {
		app.errorResponse(w, http.StatusServiceUnavailable, "Not authenticated. Complete setup first.")
		return
	}

	track := app.tracker.Current()
	if track == nil {
		app.jsonResponse(w, http.StatusOK, map[string]any{"track": nil})
		return
	}

	annotated, err := app.annotate(track)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, map[string]any{"track": annotated})
}

// selectTrack applies a manual track choice from search results or the
// sidebar. Manual intent always wins over the poll loop, and polling is
// paused briefly so the next tick doesn't immediately fight the user.
func (app *application) selectTrack(w http.ResponseWriter, r *http.Request) {
	var track models.Track
	if err := app.readJSON(r, &track); err != nil || track.VideoID == "" {
		app.errorResponse(w, http.StatusBadRequest, "videoId is required")
		return
	}

	app.tracker.Select(&track)
	app.tracker.PauseFor(time.Duration(viper.GetInt("tracker.pause")) * time.Second)

	annotated, err := app.annotate(&track)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, map[string]any{"success": true, "track": annotated})
}

func (app *application) pauseTracker(w http.ResponseWriter, r *http.Request) {
	app.tracker.Pause()
	app.jsonResponse(w, http.StatusOK, map[string]any{"success": true, "paused": true})
}

func (app *application) resumeTracker(w http.ResponseWriter, r *http.Request) {
	app.tracker.Resume()
	app.jsonResponse(w, http.StatusOK, map[string]any{"success": true, "paused": false})
}

func (app *application) search(w http.ResponseWriter, r *http.Request) {
	if !app.provider.Authenticated() {
		app.errorResponse(w, http.StatusServiceUnavailable, "Not authenticated.")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		app.jsonResponse(w, http.StatusOK, map[string]any{"results": []any{}})
		return
	}

	tracks, err := app.provider.Search(r.Context(), query)
	if err != nil {
		app.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	results := make([]*annotatedTrack, 0, len(tracks))
	for _, track := range tracks {
		annotated, err := app.annotate(track)
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		results = append(results, annotated)
	}
	app.jsonResponse(w, http.StatusOK, map[string]any{"results": results})
}

func (app *application) findVersions(w http.ResponseWriter, r *http.Request) {
	if !app.provider.Authenticated() {
		app.errorResponse(w, http.StatusServiceUnavailable, "Not authenticated.")
		return
	}

	q := r.URL.Query()
	title := q.Get("title")
	artist := q.Get("artist")
	if title == "" || artist == "" {
		app.jsonResponse(w, http.StatusOK, map[string]any{"versions": []any{}})
		return
	}

	ratings, err := app.store.ListRatings()
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	found, err := app.versions.Find(r.Context(), ratings, title, artist, q.Get("videoId"))
	if err != nil {
		app.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if found == nil {
		found = []*versions.Version{}
	}
	app.jsonResponse(w, http.StatusOK, map[string]any{"versions": found})
}

func (app *application) albumTracks(w http.ResponseWriter, r *http.Request) {
	if !app.provider.Authenticated() {
		app.errorResponse(w, http.StatusServiceUnavailable, "Not authenticated.")
		return
	}

	albumID := r.URL.Query().Get("albumId")
	if albumID == "" {
		app.jsonResponse(w, http.StatusOK, map[string]any{"tracks": []any{}})
		return
	}

	album, err := app.provider.Album(r.Context(), albumID)
	if err != nil {
		app.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	type albumTrack struct {
		annotatedTrack
		TrackNumber int `json:"trackNumber"`
	}
	tracks := make([]*albumTrack, 0, len(album.Tracks))
	for i, track := range album.Tracks {
		annotated, err := app.annotate(track)
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		tracks = append(tracks, &albumTrack{annotatedTrack: *annotated, TrackNumber: i + 1})
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"tracks": tracks,
		"album":  album.Title,
		"year":   album.Year,
	})
}

// enrichAlbum resolves an album's release year lazily. The result is
// also applied to the current track, but only if that album's track is
// still the one being displayed.
func (app *application) enrichAlbum(w http.ResponseWriter, r *http.Request) {
	albumID := r.PathValue("albumID")
	year := app.enricher.Year(r.Context(), albumID)

	if current := app.tracker.Current(); current != nil && current.AlbumID == albumID {
		app.tracker.ApplyYear(current.VideoID, year)
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"year": year})
}
