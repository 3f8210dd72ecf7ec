package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/status", app.status)
	mux.HandleFunc("GET /api/setup/status", app.setupStatus)
	mux.HandleFunc("POST /api/setup/headers", app.setupHeaders)
	mux.HandleFunc("GET /api/setup/verify", app.setupVerify)

	mux.HandleFunc("GET /api/settings", app.getSettings)
	mux.HandleFunc("POST /api/settings", app.updateSettings)

	mux.HandleFunc("GET /api/now-playing", app.nowPlaying)
	mux.HandleFunc("POST /api/now-playing/select", app.selectTrack)
	mux.HandleFunc("POST /api/tracker/pause", app.pauseTracker)
	mux.HandleFunc("POST /api/tracker/resume", app.resumeTracker)

	mux.HandleFunc("GET /api/search", app.search)
	mux.HandleFunc("GET /api/find-versions", app.findVersions)
	mux.HandleFunc("GET /api/album-tracks", app.albumTracks)
	mux.HandleFunc("GET /api/enrich/{albumID}", app.enrichAlbum)

	mux.HandleFunc("GET /api/ratings", app.listRatings)
	mux.HandleFunc("POST /api/ratings", app.createRating)
	mux.HandleFunc("PUT /api/ratings/{id}", app.updateRating)
	mux.HandleFunc("DELETE /api/ratings/{id}", app.deleteRating)

	mux.HandleFunc("GET /api/unrated", app.listUnrated)
	mux.HandleFunc("POST /api/unrated", app.addUnrated)
	mux.HandleFunc("DELETE /api/unrated/all", app.deleteAllUnrated)
	mux.HandleFunc("DELETE /api/unrated/{id}", app.deleteUnrated)
	mux.HandleFunc("POST /api/unrated/{id}/rate", app.rateUnrated)

	mux.HandleFunc("GET /api/analytics", app.analytics)
	mux.HandleFunc("GET /api/chart", app.chart)

	mux.HandleFunc("GET /api/export/csv", app.exportCSV)
	mux.HandleFunc("GET /api/export/json", app.exportJSON)
	mux.HandleFunc("POST /api/import", app.importRatings)

	standard := alice.New(app.recoverPanic, app.logRequest, commonHeaders)

	return standard.Then(mux)
}
