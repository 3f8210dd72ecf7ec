package db

import (
	"database/sql"

	"github.com/spf13/viper"
	"github.com/tunelog/tunelog/models"
)

// DefaultSettings returns the configured seed values. Used until the
// user saves settings for the first time.
func DefaultSettings() *models.Settings {
	return &models.Settings{
		RatingMin:   viper.GetInt("rating.min"),
		RatingMax:   viper.GetInt("rating.max"),
		ShrinkageC:  viper.GetFloat64("analytics.shrinkage_c"),
		MaxRecent:   viper.GetInt("tracker.max_recent"),
		SidebarMode: "album",
	}
}

// LoadSettings returns the stored settings, or the defaults when
// nothing has been saved yet.
func (db *DB) LoadSettings() (*models.Settings, error) {
	s := &models.Settings{}
	err := db.QueryRow(`
	SELECT rating_min, rating_max, shrinkage_c, max_recent, sidebar_mode
	FROM settings WHERE id = 1`).Scan(
		&s.RatingMin, &s.RatingMax, &s.ShrinkageC, &s.MaxRecent, &s.SidebarMode)

	if err == sql.ErrNoRows {
		return DefaultSettings(), nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SaveSettings upserts the single settings row
func (db *DB) SaveSettings(s *models.Settings) error {
	_, err := db.Exec(`
	INSERT INTO settings (id, rating_min, rating_max, shrinkage_c, max_recent, sidebar_mode)
	VALUES (1, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		rating_min = excluded.rating_min,
		rating_max = excluded.rating_max,
		shrinkage_c = excluded.shrinkage_c,
		max_recent = excluded.max_recent,
		sidebar_mode = excluded.sidebar_mode`,
		s.RatingMin, s.RatingMax, s.ShrinkageC, s.MaxRecent, s.SidebarMode)

	return err
}
