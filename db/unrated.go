package db

import (
	"database/sql"

	"github.com/tunelog/tunelog/models"
)

// CreateUnrated stores a skipped track. The UNIQUE constraint on
// video_id makes duplicate auto-capture calls harmless; callers should
// check GetUnratedByVideoID first if they care about the outcome.
func (db *DB) CreateUnrated(u *models.UnratedSong) error {
	_, err := db.Exec(`
	INSERT INTO unrated (id, video_id, title, artist, album, album_id, year, album_art, skipped_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.VideoID, u.Title, u.Artist, u.Album, u.AlbumID, u.Year, u.AlbumArt, u.SkippedAt)

	return err
}

func scanUnrated(scan func(dest ...any) error) (*models.UnratedSong, error) {
	u := &models.UnratedSong{}
	var albumID, year, art sql.NullString
	err := scan(&u.ID, &u.VideoID, &u.Title, &u.Artist, &u.Album,
		&albumID, &year, &art, &u.SkippedAt)
	if err != nil {
		return nil, err
	}
	u.AlbumID = albumID.String
	u.Year = year.String
	u.AlbumArt = art.String
	return u, nil
}

const unratedColumns = `id, video_id, title, artist, album, album_id, year, album_art, skipped_at`

// GetUnrated retrieves an unrated entry by its id
func (db *DB) GetUnrated(id string) (*models.UnratedSong, error) {
	row := db.QueryRow(`SELECT `+unratedColumns+` FROM unrated WHERE id = ?`, id)
	u, err := scanUnrated(row.Scan)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUnratedByVideoID retrieves an unrated entry by the track's external id
func (db *DB) GetUnratedByVideoID(videoID string) (*models.UnratedSong, error) {
	row := db.QueryRow(`SELECT `+unratedColumns+` FROM unrated WHERE video_id = ?`, videoID)
	u, err := scanUnrated(row.Scan)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ListUnrated returns all unrated entries, newest first
func (db *DB) ListUnrated() ([]*models.UnratedSong, error) {
	rows, err := db.Query(`SELECT ` + unratedColumns + ` FROM unrated ORDER BY skipped_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var unrated []*models.UnratedSong
	for rows.Next() {
		u, err := scanUnrated(rows.Scan)
		if err != nil {
			return nil, err
		}
		unrated = append(unrated, u)
	}

	return unrated, rows.Err()
}

// DeleteUnrated removes an unrated entry by id. Returns false when no
// row matched.
func (db *DB) DeleteUnrated(id string) (bool, error) {
	result, err := db.Exec(`DELETE FROM unrated WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// DeleteAllUnrated dismisses every unrated entry
func (db *DB) DeleteAllUnrated() error {
	_, err := db.Exec(`DELETE FROM unrated`)
	return err
}
