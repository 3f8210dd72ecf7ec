package ytmusic

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// matches the headers object inside a Chrome "Copy as fetch (Node.js)"
// snippet: headers: { ... }
var fetchHeadersRe = regexp.MustCompile(`(?is)["']?headers["']?\s*[=:]\s*(\{[^}]+\})`)

var requestLinePrefixes = []string{"GET ", "POST ", "PUT ", "DELETE ", "PATCH ", "OPTIONS "}

// ParseAuthHeaders auto-detects the format of pasted request headers and
// returns them as a map. Three formats are supported:
//  1. a direct JSON object {"key": "value", ...}
//  2. a Chrome "Copy as fetch (Node.js)" snippet
//  3. raw "Key: value" lines (Firefox or Chrome manual copy), with
//     wrapped values continued on the next line
//
// Returns an error when nothing parseable is found.
func ParseAuthHeaders(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty headers")
	}

	if strings.HasPrefix(raw, "{") {
		var obj map[string]string
		if err := json.Unmarshal([]byte(raw), &obj); err == nil && len(obj) > 0 {
			return obj, nil
		}
	}

	if m := fetchHeadersRe.FindStringSubmatch(raw); m != nil {
		// fetch snippets use single quotes; fix them up for the JSON parser
		jsonStr := strings.ReplaceAll(m[1], "'", `"`)
		var obj map[string]string
		if err := json.Unmarshal([]byte(jsonStr), &obj); err == nil && len(obj) > 0 {
			return obj, nil
		}
	}

	result := make(map[string]string)
	currentKey := ""
	for _, line := range strings.Split(raw, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if isRequestLine(stripped) {
			continue
		}

		colon := strings.Index(stripped, ":")
		if colon > 0 {
			key := strings.TrimSpace(stripped[:colon])
			value := strings.TrimSpace(stripped[colon+1:])
			result[key] = value
			currentKey = key
		} else if strings.HasPrefix(stripped, ":") {
			// HTTP/2 pseudo-headers like :authority, :path
			continue
		} else if currentKey != "" {
			// continuation of a wrapped header value
			result[currentKey] += " " + stripped
		}
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("could not parse headers")
	}
	return result, nil
}

func isRequestLine(s string) bool {
	upper := strings.ToUpper(s)
	for _, p := range requestLinePrefixes {
		if strings.HasPrefix(upper, p) {
			return true
		}
	}
	return false
}

// headerValue does a case-insensitive lookup
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func saveHeaders(path string, headers map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(headers, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func loadHeaders(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var headers map[string]string
	if err := json.Unmarshal(data, &headers); err != nil {
		return nil, err
	}
	return headers, nil
}
