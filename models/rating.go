package models

// Rating is the durable record created when the user scores a track.
type Rating struct {
	ID        string   `json:"id"`
	VideoID   string   `json:"videoId"`
	Title     string   `json:"title"`
	Artist    string   `json:"artist"`
	Album     string   `json:"album"`
	Year      string   `json:"year,omitempty"`
	AlbumArt  string   `json:"albumArt,omitempty"`
	Rating    int      `json:"rating"`
	Tags      []string `json:"tags"`
	Notes     string   `json:"notes"`
	RatedAt   string   `json:"ratedAt"`
	UpdatedAt string   `json:"updatedAt,omitempty"`
}

// UnratedSong is a track that played without getting rated. Kept so the
// user can come back and score it later.
type UnratedSong struct {
	ID        string `json:"id"`
	VideoID   string `json:"videoId"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Album     string `json:"album"`
	AlbumID   string `json:"albumId,omitempty"`
	Year      string `json:"year,omitempty"`
	AlbumArt  string `json:"albumArt,omitempty"`
	SkippedAt string `json:"skippedAt"`
}

// Settings holds the user-tunable values consumed across the app.
type Settings struct {
	RatingMin   int     `json:"ratingMin"`
	RatingMax   int     `json:"ratingMax"`
	ShrinkageC  float64 `json:"shrinkageC"`
	MaxRecent   int     `json:"maxRecent"`
	SidebarMode string  `json:"sidebarMode"`
}
