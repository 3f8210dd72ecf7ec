package models

// Track represents a provider-reported "now playing" snapshot. It is
// ephemeral: one arrives per poll and is never stored as-is.
type Track struct {
	VideoID  string `json:"videoId"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	AlbumID  string `json:"albumId,omitempty"`
	Year     string `json:"year,omitempty"`
	AlbumArt string `json:"albumArt,omitempty"`
	Played   string `json:"played,omitempty"`
}
