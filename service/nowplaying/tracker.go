package nowplaying

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tunelog/tunelog/models"
)

// Provider reports what is currently playing. A nil track with a nil
// error means nothing is playing.
type Provider interface {
	NowPlaying(ctx context.Context) (*models.Track, error)
}

// Store is the slice of the persistence layer the tracker needs for the
// auto-capture side effect.
type Store interface {
	GetRatingByVideoID(videoID string) (*models.Rating, error)
	GetUnratedByVideoID(videoID string) (*models.UnratedSong, error)
	CreateUnrated(u *models.UnratedSong) error
}

// Tracker owns the reconciliation state and drives it from a poll loop.
// Polls are strictly sequential: one reconciliation completes before the
// next tick's result is applied.
type Tracker struct {
	provider Provider
	store    Store
	logger   *log.Logger

	mu          sync.Mutex
	state       *State
	paused      bool
	resumeTimer *time.Timer
}

// NewTracker creates a tracker with the given anti-flicker window
func NewTracker(provider Provider, store Store, maxRecent int) *Tracker {
	logger := log.New(os.Stdout, "nowplaying: ", log.LstdFlags|log.Lmsgprefix)

	return &Tracker{
		provider: provider,
		store:    store,
		logger:   logger,
		state:    NewState(maxRecent),
	}
}

// Run polls the provider until ctx is cancelled
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Poll(ctx)
		}
	}
}

// Poll runs one observation cycle. Provider failures are treated as
// "no track" for the cycle; the loop never dies on them.
func (t *Tracker) Poll(ctx context.Context) {
	t.mu.Lock()
	if t.paused {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	track, err := t.provider.NowPlaying(ctx)
	if err != nil {
		t.logger.Printf("poll failed, treating as no track: %v", err)
		track = nil
	}

	t.mu.Lock()
	action, outgoing := t.state.Observe(track)
	t.mu.Unlock()

	switch action {
	case ActionAccept:
		if track != nil {
			t.logger.Printf("now playing: %s - %s", track.Artist, track.Title)
		}
		if outgoing != nil {
			t.captureUnrated(outgoing)
		}
	case ActionFlicker:
		t.logger.Printf("ignored flicker: %s (%s)", track.Title, track.VideoID)
	case ActionCleared:
		t.logger.Println("nothing playing")
	}
}

// captureUnrated records the displaced track as skipped unless it was
// already rated or captured. Fire-and-forget: failures are logged and
// the transition stands.
func (t *Tracker) captureUnrated(track *models.Track) {
	rated, err := t.store.GetRatingByVideoID(track.VideoID)
	if err != nil {
		t.logger.Printf("auto-capture lookup failed for %s: %v", track.VideoID, err)
		return
	}
	if rated != nil {
		return
	}

	existing, err := t.store.GetUnratedByVideoID(track.VideoID)
	if err != nil {
		t.logger.Printf("auto-capture lookup failed for %s: %v", track.VideoID, err)
		return
	}
	if existing != nil {
		return
	}

	entry := &models.UnratedSong{
		ID:        uuid.NewString(),
		VideoID:   track.VideoID,
		Title:     track.Title,
		Artist:    track.Artist,
		Album:     track.Album,
		AlbumID:   track.AlbumID,
		Year:      track.Year,
		AlbumArt:  track.AlbumArt,
		SkippedAt: time.Now().Format(time.RFC3339),
	}
	if err := t.store.CreateUnrated(entry); err != nil {
		t.logger.Printf("auto-capture failed for %s - %s: %v", track.Artist, track.Title, err)
		return
	}
	t.logger.Printf("captured as unrated: %s - %s", track.Artist, track.Title)
}

// Select applies an explicit user choice, bypassing the poll loop
func (t *Tracker) Select(track *models.Track) {
	t.mu.Lock()
	t.state.Select(track)
	t.mu.Unlock()
	t.logger.Printf("manual select: %s - %s", track.Artist, track.Title)
}

// Current returns a copy of the authoritative current track, or nil
func (t *Tracker) Current() *models.Track {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Current == nil {
		return nil
	}
	copied := *t.state.Current
	return &copied
}

// ApplyYear applies an async enrichment result, but only if the track
// it was fetched for is still current. Stale responses are dropped.
func (t *Tracker) ApplyYear(videoID, year string) bool {
	if year == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Current == nil || t.state.Current.VideoID != videoID {
		return false
	}
	t.state.Current.Year = year
	return true
}

// SetMaxRecent re-tunes the anti-flicker window, trimming oldest ids if
// the window shrank
func (t *Tracker) SetMaxRecent(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.MaxRecent = n
	if n >= 0 && len(t.state.RecentIDs) > n {
		t.state.RecentIDs = t.state.RecentIDs[len(t.state.RecentIDs)-n:]
	}
}

// Pause stops polling until Resume is called
func (t *Tracker) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopResumeTimer()
	t.paused = true
	t.logger.Println("polling paused")
}

// PauseFor pauses polling and auto-resumes after d. A later PauseFor or
// Pause replaces the pending resume.
func (t *Tracker) PauseFor(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopResumeTimer()
	t.paused = true
	t.resumeTimer = time.AfterFunc(d, t.Resume)
	t.logger.Printf("polling paused for %s", d)
}

// Resume restarts polling
func (t *Tracker) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopResumeTimer()
	if t.paused {
		t.paused = false
		t.logger.Println("polling resumed")
	}
}

// Paused reports whether polling is currently paused
func (t *Tracker) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

func (t *Tracker) stopResumeTimer() {
	if t.resumeTimer != nil {
		t.resumeTimer.Stop()
		t.resumeTimer = nil
	}
}
