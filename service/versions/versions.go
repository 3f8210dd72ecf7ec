// Package versions finds other recordings of a song by scanning the
// artist's albums on the provider: remasters, live cuts, compilation
// appearances. Title matching is fuzzy since reissues rarely keep the
// exact same title string.
package versions

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/tunelog/tunelog/models"
	"github.com/tunelog/tunelog/service/ytmusic"
)

const similarityThreshold = 0.9

// Provider is the slice of the ytmusic client we need
type Provider interface {
	Search(ctx context.Context, query string) ([]*models.Track, error)
	Album(ctx context.Context, albumID string) (*ytmusic.AlbumData, error)
}

// Version is one alternate recording of the song
type Version struct {
	models.Track
	IsAlbum        bool           `json:"isAlbum"`
	AlreadyRated   bool           `json:"alreadyRated"`
	ExistingRating *models.Rating `json:"existingRating,omitempty"`
}

// Service scans for alternate versions of a track
type Service struct {
	provider Provider
	logger   *log.Logger
	jw       *metrics.JaroWinkler
}

// New creates a versions service
func New(provider Provider) *Service {
	return &Service{
		provider: provider,
		logger:   log.New(os.Stdout, "versions: ", log.LstdFlags|log.Lmsgprefix),
		jw:       metrics.NewJaroWinkler(),
	}
}

// Find searches the artist's albums for tracks matching the title.
// currentVideoID (and any already-collected version) is excluded.
// ratings is consulted to annotate versions the user already scored.
// Individual album failures are skipped, not fatal.
func (s *Service) Find(ctx context.Context, ratings []*models.Rating, title, artist, currentVideoID string) ([]*Version, error) {
	albums, err := s.provider.Search(ctx, artist)
	if err != nil {
		return nil, err
	}

	ratedByVideo := make(map[string]*models.Rating, len(ratings))
	for _, r := range ratings {
		ratedByVideo[r.VideoID] = r
	}

	titleFold := strings.ToLower(strings.TrimSpace(title))
	artistFold := strings.ToLower(artist)

	seen := map[string]bool{}
	if currentVideoID != "" {
		seen[currentVideoID] = true
	}
	seenAlbums := map[string]bool{}

	var versions []*Version
	for _, hit := range albums {
		albumID := hit.AlbumID
		if albumID == "" || seenAlbums[albumID] {
			continue
		}
		seenAlbums[albumID] = true

		// only scan albums credited to the requested artist
		if !strings.Contains(strings.ToLower(hit.Artist), artistFold) {
			continue
		}

		album, err := s.provider.Album(ctx, albumID)
		if err != nil {
			s.logger.Printf("skipping album %s: %v", albumID, err)
			continue
		}

		for _, track := range album.Tracks {
			if track.VideoID == "" || seen[track.VideoID] {
				continue
			}
			if !s.titleMatches(titleFold, track.Title) {
				continue
			}
			seen[track.VideoID] = true

			existing := ratedByVideo[track.VideoID]
			v := &Version{
				Track:          *track,
				IsAlbum:        !strings.EqualFold(album.Title, title),
				AlreadyRated:   existing != nil,
				ExistingRating: existing,
			}
			v.Artist = artist
			versions = append(versions, v)
		}
	}

	return versions, nil
}

func (s *Service) titleMatches(wantFold, candidate string) bool {
	candFold := strings.ToLower(strings.TrimSpace(candidate))
	if candFold == wantFold {
		return true
	}
	return strutil.Similarity(wantFold, candFold, s.jw) >= similarityThreshold
}
