package db

import (
	"database/sql"
	"strings"

	"github.com/tunelog/tunelog/models"
)

// tags are stored as a single TEXT column; semicolons match the CSV
// export format so round-trips stay lossless
const tagSeparator = "; "

func joinTags(tags []string) string {
	return strings.Join(tags, tagSeparator)
}

func splitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ";")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// CreateRating stores a new rating record
func (db *DB) CreateRating(r *models.Rating) error {
	_, err := db.Exec(`
	INSERT INTO ratings (id, video_id, title, artist, album, year, album_art, rating, tags, notes, rated_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.VideoID, r.Title, r.Artist, r.Album, r.Year, r.AlbumArt,
		r.Rating, joinTags(r.Tags), r.Notes, r.RatedAt, r.UpdatedAt)

	return err
}

// UpdateRating replaces the mutable fields of an existing rating
func (db *DB) UpdateRating(r *models.Rating) error {
	_, err := db.Exec(`
	UPDATE ratings
	SET title = ?,
		artist = ?,
		album = ?,
		year = ?,
		rating = ?,
		tags = ?,
		notes = ?,
		updated_at = ?
	WHERE id = ?`,
		r.Title, r.Artist, r.Album, r.Year, r.Rating,
		joinTags(r.Tags), r.Notes, r.UpdatedAt, r.ID)

	return err
}

// DeleteRating removes a rating by its entry id. Returns false when no
// row matched.
func (db *DB) DeleteRating(id string) (bool, error) {
	result, err := db.Exec(`DELETE FROM ratings WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

func scanRating(scan func(dest ...any) error) (*models.Rating, error) {
	r := &models.Rating{}
	var tags, year, art, notes, updatedAt sql.NullString
	err := scan(&r.ID, &r.VideoID, &r.Title, &r.Artist, &r.Album,
		&year, &art, &r.Rating, &tags, &notes, &r.RatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	r.Year = year.String
	r.AlbumArt = art.String
	r.Notes = notes.String
	r.UpdatedAt = updatedAt.String
	r.Tags = splitTags(tags.String)
	return r, nil
}

const ratingColumns = `id, video_id, title, artist, album, year, album_art, rating, tags, notes, rated_at, updated_at`

// GetRating retrieves a rating by its entry id
func (db *DB) GetRating(id string) (*models.Rating, error) {
	row := db.QueryRow(`SELECT `+ratingColumns+` FROM ratings WHERE id = ?`, id)
	r, err := scanRating(row.Scan)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GetRatingByVideoID retrieves a rating by the track's external id.
// Used for duplicate detection before creating a new rating.
func (db *DB) GetRatingByVideoID(videoID string) (*models.Rating, error) {
	row := db.QueryRow(`SELECT `+ratingColumns+` FROM ratings WHERE video_id = ?`, videoID)
	r, err := scanRating(row.Scan)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListRatings returns every rating, newest first
func (db *DB) ListRatings() ([]*models.Rating, error) {
	rows, err := db.Query(`SELECT ` + ratingColumns + ` FROM ratings ORDER BY rated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []*models.Rating
	for rows.Next() {
		r, err := scanRating(rows.Scan)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}

	return ratings, rows.Err()
}
