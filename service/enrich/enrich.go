package enrich

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/tunelog/tunelog/service/ytmusic"
)

// AlbumSource is the slice of the provider client we need
type AlbumSource interface {
	Album(ctx context.Context, albumID string) (*ytmusic.AlbumData, error)
}

// Service resolves the original release year for an album. History
// items carry no year; the frontend asks for it lazily and the result
// is applied to the current track only if it is still current. Results
// are cached per album id, failures included, so a broken album page is
// not re-fetched every poll.
type Service struct {
	source AlbumSource
	logger *log.Logger

	mu    sync.RWMutex
	cache map[string]string
}

// New creates an enrichment service around the given album source
func New(source AlbumSource) *Service {
	logger := log.New(os.Stdout, "enrich: ", log.LstdFlags|log.Lmsgprefix)

	return &Service{
		source: source,
		logger: logger,
		cache:  make(map[string]string),
	}
}

// Year returns the album's release year, or "" when it cannot be
// determined. Lookup failures are not errors to the caller; the year is
// cosmetic and the display falls back to blank.
func (s *Service) Year(ctx context.Context, albumID string) string {
	if albumID == "" {
		return ""
	}

	s.mu.RLock()
	year, ok := s.cache[albumID]
	s.mu.RUnlock()
	if ok {
		return year
	}

	album, err := s.source.Album(ctx, albumID)
	if err != nil {
		s.logger.Printf("album lookup failed for %s: %v", albumID, err)
		// cache the failure too
		s.storeYear(albumID, "")
		return ""
	}

	s.storeYear(albumID, album.Year)
	return album.Year
}

// CachedYear returns a cached year without triggering a lookup
func (s *Service) CachedYear(albumID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[albumID]
}

func (s *Service) storeYear(albumID, year string) {
	s.mu.Lock()
	s.cache[albumID] = year
	s.mu.Unlock()
}
