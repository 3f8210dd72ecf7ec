package ytmusic

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tunelog/tunelog/models"
)

const (
	apiBaseURL = "https://music.youtube.com/youtubei/v1"
	origin     = "https://music.youtube.com"

	clientName    = "WEB_REMIX"
	clientVersion = "1.20240101.01.00"

	historyBrowseID = "FEmusic_history"
	// search params for filter=songs
	searchSongsParams = "EgWKAQIIAWoKEAkQBRAKEAMQBA%3D%3D"

	historyCacheTTL = 5 * time.Second
)

// ErrNotAuthenticated is returned when no browser headers have been set
// up yet. Callers degrade to "no track" rather than surfacing it.
var ErrNotAuthenticated = fmt.Errorf("ytmusic: not authenticated")

// AlbumData is the subset of an album page the app consumes
type AlbumData struct {
	Title    string          `json:"title"`
	Year     string          `json:"year"`
	AlbumArt string          `json:"albumArt"`
	Tracks   []*models.Track `json:"tracks"`
}

// Client talks to the YouTube Music internal API using pasted browser
// headers for authentication.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *log.Logger
	headersPath string

	mu      sync.RWMutex
	headers map[string]string

	cacheMu      sync.RWMutex
	historyCache []*models.Track
	historyAt    time.Time
}

// New creates a client. Headers are loaded from headersPath when the
// file exists; otherwise the client starts unauthenticated and Setup
// must be called before any API method works.
func New(headersPath string) *Client {
	logger := log.New(os.Stdout, "ytmusic: ", log.LstdFlags|log.Lmsgprefix)

	c := &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter:     rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
		logger:      logger,
		headersPath: headersPath,
	}

	if headers, err := loadHeaders(headersPath); err == nil {
		if headerValue(headers, "Cookie") != "" {
			c.headers = headers
			logger.Println("loaded saved browser headers")
		}
	}

	return c
}

// Authenticated reports whether browser headers are available
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers != nil
}

// HasSavedHeaders reports whether a headers file exists on disk
func (c *Client) HasSavedHeaders() bool {
	_, err := os.Stat(c.headersPath)
	return err == nil
}

// Setup parses pasted browser headers, persists them, and switches the
// client onto them.
func (c *Client) Setup(raw string) error {
	parsed, err := ParseAuthHeaders(raw)
	if err != nil {
		return err
	}
	if headerValue(parsed, "Cookie") == "" {
		return fmt.Errorf("missing 'Cookie' header; try the 'Copy as fetch (Node.js)' method or use Firefox")
	}

	if err := saveHeaders(c.headersPath, parsed); err != nil {
		return fmt.Errorf("saving headers: %w", err)
	}

	c.mu.Lock()
	c.headers = parsed
	c.mu.Unlock()

	c.cacheMu.Lock()
	c.historyCache = nil
	c.cacheMu.Unlock()

	c.logger.Println("browser headers saved")
	return nil
}

// Verify fetches history to prove the saved headers work. Returns a
// human-readable message describing the most recent item.
func (c *Client) Verify(ctx context.Context) (string, error) {
	history, err := c.History(ctx)
	if err != nil {
		return "", err
	}
	if len(history) == 0 {
		return "Connected! (No listening history yet)", nil
	}
	latest := history[0]
	return fmt.Sprintf("Connected! Most recent: %s by %s", latest.Title, latest.Artist), nil
}

// sapisidHash builds the SAPISIDHASH authorization value YouTube's web
// clients send: sha1("<ts> <SAPISID> <origin>") prefixed with the
// timestamp.
func sapisidHash(cookie string, now time.Time) string {
	sapisid := ""
	for _, part := range strings.Split(cookie, ";") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) == 2 && (kv[0] == "SAPISID" || kv[0] == "__Secure-3PAPISID") {
			sapisid = kv[1]
			break
		}
	}
	if sapisid == "" {
		return ""
	}
	ts := now.Unix()
	sum := sha1.Sum(fmt.Appendf(nil, "%d %s %s", ts, sapisid, origin))
	return fmt.Sprintf("SAPISIDHASH %d_%x", ts, sum)
}

func (c *Client) post(ctx context.Context, endpoint string, body map[string]any) (*browseResponse, error) {
	c.mu.RLock()
	headers := c.headers
	c.mu.RUnlock()

	if headers == nil {
		return nil, ErrNotAuthenticated
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body["context"] = map[string]any{
		"client": map[string]any{
			"clientName":    clientName,
			"clientVersion": clientVersion,
			"hl":            "en",
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", apiBaseURL+endpoint+"?alt=json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", origin)
	req.Header.Set("X-Origin", origin)
	if auth := sapisidHash(headerValue(headers, "Cookie"), time.Now()); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ytmusic API error (%d): %s", resp.StatusCode, msg)
	}

	var parsed browseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &parsed, nil
}

// History returns listening history, most recent first. Results are
// cached briefly so the now-playing poll does not hammer the API.
func (c *Client) History(ctx context.Context) ([]*models.Track, error) {
	c.cacheMu.RLock()
	if c.historyCache != nil && time.Since(c.historyAt) < historyCacheTTL {
		cached := c.historyCache
		c.cacheMu.RUnlock()
		return cached, nil
	}
	c.cacheMu.RUnlock()

	resp, err := c.post(ctx, "/browse", map[string]any{"browseId": historyBrowseID})
	if err != nil {
		return nil, err
	}

	var tracks []*models.Track
	for _, shelf := range resp.shelves() {
		// shelf title is the play period ("Today", "Yesterday", ...)
		played := shelf.Title.text()
		for _, item := range shelf.Contents {
			if item.MusicResponsiveListItemRenderer == nil {
				continue
			}
			track := extractTrack(item.MusicResponsiveListItemRenderer)
			if track.VideoID == "" {
				continue
			}
			track.Played = played
			tracks = append(tracks, track)
		}
	}

	c.cacheMu.Lock()
	c.historyCache = tracks
	c.historyAt = time.Now()
	c.cacheMu.Unlock()

	return tracks, nil
}

// NowPlaying returns the most recently played track, or (nil, nil) when
// the history is empty.
func (c *Client) NowPlaying(ctx context.Context) (*models.Track, error) {
	history, err := c.History(ctx)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	return history[0], nil
}

// Search looks up songs matching the query
func (c *Client) Search(ctx context.Context, query string) ([]*models.Track, error) {
	resp, err := c.post(ctx, "/search", map[string]any{
		"query":  query,
		"params": searchSongsParams,
	})
	if err != nil {
		return nil, err
	}

	var tracks []*models.Track
	for _, shelf := range resp.shelves() {
		for _, item := range shelf.Contents {
			if item.MusicResponsiveListItemRenderer == nil {
				continue
			}
			track := extractTrack(item.MusicResponsiveListItemRenderer)
			if track.VideoID == "" {
				continue
			}
			tracks = append(tracks, track)
		}
	}
	return tracks, nil
}

// Album fetches an album page by its browse id
func (c *Client) Album(ctx context.Context, albumID string) (*AlbumData, error) {
	resp, err := c.post(ctx, "/browse", map[string]any{"browseId": albumID})
	if err != nil {
		return nil, err
	}

	album := &AlbumData{}
	if h := resp.Header.MusicDetailHeaderRenderer; h != nil {
		album.Title = h.Title.text()
		album.Year = subtitleYear(h.Subtitle)
		if h.Thumbnail != nil {
			album.AlbumArt = bestThumbnail(h.Thumbnail.MusicThumbnailRenderer.Thumbnail.Thumbnails, "")
		}
	}

	for _, shelf := range resp.shelves() {
		for _, item := range shelf.Contents {
			if item.MusicResponsiveListItemRenderer == nil {
				continue
			}
			track := extractTrack(item.MusicResponsiveListItemRenderer)
			if track.VideoID == "" {
				continue
			}
			track.Album = album.Title
			track.AlbumID = albumID
			track.Year = album.Year
			if track.AlbumArt == "" {
				track.AlbumArt = album.AlbumArt
			}
			album.Tracks = append(album.Tracks, track)
		}
	}
	return album, nil
}

// subtitleYear picks the trailing 4-digit run out of an album subtitle
// ("Album • Artist • 2007")
func subtitleYear(subtitle runs) string {
	for i := len(subtitle.Runs) - 1; i >= 0; i-- {
		text := strings.TrimSpace(subtitle.Runs[i].Text)
		if len(text) == 4 && isDigits(text) {
			return text
		}
	}
	return ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// extractTrack pulls a track snapshot out of a list item renderer.
// Column 0 is the title, column 1 the artist credits, and the album (if
// any) is whichever run carries an MPRE browse id.
func extractTrack(item *listItemRenderer) *models.Track {
	track := &models.Track{}

	if item.PlaylistItemData != nil {
		track.VideoID = item.PlaylistItemData.VideoID
	}

	for i, col := range item.FlexColumns {
		text := col.MusicResponsiveListItemFlexColumnRenderer.Text
		switch i {
		case 0:
			track.Title = text.text()
			if track.VideoID == "" {
				for _, run := range text.Runs {
					if run.NavigationEndpoint != nil && run.NavigationEndpoint.WatchEndpoint != nil {
						track.VideoID = run.NavigationEndpoint.WatchEndpoint.VideoID
					}
				}
			}
		case 1:
			track.Artist = joinArtists(text.Runs)
		}
		for _, run := range text.Runs {
			if run.NavigationEndpoint != nil && run.NavigationEndpoint.BrowseEndpoint != nil &&
				strings.HasPrefix(run.NavigationEndpoint.BrowseEndpoint.BrowseID, "MPRE") {
				track.Album = run.Text
				track.AlbumID = run.NavigationEndpoint.BrowseEndpoint.BrowseID
			}
		}
	}

	if track.Title == "" {
		track.Title = "Unknown"
	}
	if track.Artist == "" {
		track.Artist = "Unknown Artist"
	}

	if item.Thumbnail != nil {
		track.AlbumArt = bestThumbnail(item.Thumbnail.MusicThumbnailRenderer.Thumbnail.Thumbnails, track.VideoID)
	} else if track.VideoID != "" {
		track.AlbumArt = fallbackArt(track.VideoID)
	}

	return track
}

// joinArtists joins artist credit runs with ", ", skipping the
// separator runs YouTube inserts between names
func joinArtists(artistRuns []textRun) string {
	var names []string
	for _, run := range artistRuns {
		switch strings.TrimSpace(run.Text) {
		case "", "•", "&", ",":
			continue
		}
		names = append(names, run.Text)
	}
	return strings.Join(names, ", ")
}

// bestThumbnail picks the largest thumbnail and normalizes
// googleusercontent size params to a full-resolution variant
func bestThumbnail(thumbs []thumbnail, videoID string) string {
	best := ""
	bestArea := -1
	for _, t := range thumbs {
		if area := t.Width * t.Height; area > bestArea {
			best = t.URL
			bestArea = area
		}
	}
	if best != "" && strings.Contains(best, "lh3.googleusercontent.com") {
		if idx := strings.Index(best, "="); idx != -1 {
			best = best[:idx] + "=w512-h512-l90-rj"
		}
	}
	if best == "" && videoID != "" {
		best = fallbackArt(videoID)
	}
	return best
}

func fallbackArt(videoID string) string {
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID)
}
