package main

import (
	"net/http"

	"github.com/tunelog/tunelog/db"
	"github.com/tunelog/tunelog/models"
)

func (app *application) status(w http.ResponseWriter, r *http.Request) {
	app.jsonResponse(w, http.StatusOK, map[string]bool{
		"authenticated": app.provider.Authenticated(),
	})
}

func (app *application) setupStatus(w http.ResponseWriter, r *http.Request) {
	authenticated := app.provider.Authenticated()
	app.jsonResponse(w, http.StatusOK, map[string]bool{
		"needsSetup":    !authenticated,
		"hasAuthFile":   app.provider.HasSavedHeaders(),
		"authenticated": authenticated,
	})
}

func (app *application) setupHeaders(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Headers string `json:"headers"`
	}
	if err := app.readJSON(r, &input); err != nil {
		app.errorResponse(w, http.StatusBadRequest, "No headers provided")
		return
	}

	if err := app.provider.Setup(input.Headers); err != nil {
		app.errorResponse(w, http.StatusBadRequest, "Setup failed: "+err.Error())
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Authentication saved successfully!",
	})
}

func (app *application) setupVerify(w http.ResponseWriter, r *http.Request) {
	message, err := app.provider.Verify(r.Context())
	if err != nil {
		app.jsonResponse(w, http.StatusOK, map[string]any{
			"verified": false,
			"error":    "Verification failed: " + err.Error(),
		})
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"verified": true,
		"message":  message,
	})
}

func (app *application) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := app.store.LoadSettings()
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, settings)
}

func (app *application) updateSettings(w http.ResponseWriter, r *http.Request) {
	current, err := app.store.LoadSettings()
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	// partial update: absent fields keep their stored values
	var input struct {
		RatingMin   *int     `json:"ratingMin"`
		RatingMax   *int     `json:"ratingMax"`
		ShrinkageC  *float64 `json:"shrinkageC"`
		MaxRecent   *int     `json:"maxRecent"`
		SidebarMode *string  `json:"sidebarMode"`
	}
	if err := app.readJSON(r, &input); err != nil {
		app.errorResponse(w, http.StatusBadRequest, "No data provided")
		return
	}

	if input.RatingMin != nil {
		current.RatingMin = *input.RatingMin
	}
	if input.RatingMax != nil {
		current.RatingMax = *input.RatingMax
	}
	if input.ShrinkageC != nil {
		if *input.ShrinkageC < 0 {
			app.errorResponse(w, http.StatusBadRequest, "shrinkageC must be >= 0")
			return
		}
		current.ShrinkageC = *input.ShrinkageC
	}
	if input.MaxRecent != nil {
		if *input.MaxRecent < 0 {
			app.errorResponse(w, http.StatusBadRequest, "maxRecent must be >= 0")
			return
		}
		current.MaxRecent = *input.MaxRecent
	}
	if input.SidebarMode != nil {
		if *input.SidebarMode != "album" && *input.SidebarMode != "related" {
			app.errorResponse(w, http.StatusBadRequest, "sidebarMode must be 'album' or 'related'")
			return
		}
		current.SidebarMode = *input.SidebarMode
	}

	if current.RatingMin >= current.RatingMax {
		app.errorResponse(w, http.StatusBadRequest, "Min must be less than max")
		return
	}

	if err := app.store.SaveSettings(current); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.tracker.SetMaxRecent(current.MaxRecent)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"success":  true,
		"settings": current,
	})
}

// settings loads the stored settings, falling back to defaults when the
// store is unreadable mid-request
func (app *application) settings() *models.Settings {
	settings, err := app.store.LoadSettings()
	if err != nil {
		app.logger.Error("loading settings", "error", err.Error())
		return db.DefaultSettings()
	}
	return settings
}
