package main

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"strconv"
)

// The serverError helper writes a log entry at Error level (including the request
// method and URI as attributes), then sends a generic 500 Internal Server Error
// response to the user.
func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
		trace  = string(debug.Stack())
	)

	app.logger.Error(err.Error(), "method", method, "uri", uri, "trace", trace)
	app.errorResponse(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// jsonResponse writes data as a JSON response
func (app *application) jsonResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// errorResponse writes an {"error": ...} JSON body
func (app *application) errorResponse(w http.ResponseWriter, statusCode int, message string) {
	app.jsonResponse(w, statusCode, map[string]string{"error": message})
}

// readJSON decodes the request body into dst
func (app *application) readJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// queryInt reads an optional integer query parameter
func queryInt(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

// queryIntDefault reads an integer query parameter with a fallback
func queryIntDefault(r *http.Request, name string, fallback int) int {
	if n := queryInt(r, name); n != nil {
		return *n
	}
	return fallback
}
