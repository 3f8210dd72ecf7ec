package nowplaying

import "github.com/tunelog/tunelog/models"

// Action describes what a poll observation did to the state
type Action int

const (
	// ActionNone: nothing playing before or after
	ActionNone Action = iota
	// ActionCleared: provider reported no track, current was dropped
	ActionCleared
	// ActionRefresh: same track still playing, metadata refreshed
	ActionRefresh
	// ActionFlicker: a recently-displaced id came back, observation dropped
	ActionFlicker
	// ActionAccept: a new track became current
	ActionAccept
)

// State is the reconciliation state for one session: the authoritative
// current track plus a short FIFO of recently-displaced ids. The
// provider sometimes re-reports the previous track for a poll cycle or
// two right after a genuine change; ids in RecentIDs are ignored until
// they age out, at the cost of suppressing a genuine replay inside the
// window.
//
// State is not safe for concurrent use; the Tracker serializes access.
type State struct {
	Current   *models.Track
	RecentIDs []string
	MaxRecent int
}

// NewState returns an empty state with the given anti-flicker window
func NewState(maxRecent int) *State {
	return &State{MaxRecent: maxRecent}
}

// Observe applies one poll observation. incoming may be nil (provider
// reported nothing playing). Returns the action taken and, on
// ActionAccept, the track that was displaced (nil when none); the
// caller owns the auto-capture side effect for that track.
func (s *State) Observe(incoming *models.Track) (Action, *models.Track) {
	if incoming == nil {
		if s.Current == nil {
			return ActionNone, nil
		}
		s.Current = nil
		return ActionCleared, nil
	}

	if s.Current != nil && s.Current.VideoID == incoming.VideoID {
		s.refresh(incoming)
		return ActionRefresh, nil
	}

	if s.Current != nil && s.contains(incoming.VideoID) {
		return ActionFlicker, nil
	}

	outgoing := s.Current
	if outgoing != nil {
		s.push(outgoing.VideoID)
	}
	s.accept(incoming)
	return ActionAccept, outgoing
}

// Select applies an explicit user choice. It always wins: the track
// becomes current and the flicker memory is emptied so stale ids cannot
// second-guess the user. No auto-capture happens on this path; the user
// is at the screen and can rate the outgoing song deliberately.
func (s *State) Select(track *models.Track) {
	s.RecentIDs = nil
	s.accept(track)
}

// refresh replaces the displayed metadata with the incoming snapshot,
// keeping lazily-enriched fields the snapshot lacks
func (s *State) refresh(incoming *models.Track) {
	updated := *incoming
	if updated.Year == "" {
		updated.Year = s.Current.Year
	}
	if updated.AlbumArt == "" {
		updated.AlbumArt = s.Current.AlbumArt
	}
	if updated.Album == "" {
		updated.Album = s.Current.Album
	}
	if updated.AlbumID == "" {
		updated.AlbumID = s.Current.AlbumID
	}
	s.Current = &updated
}

func (s *State) accept(track *models.Track) {
	copied := *track
	s.Current = &copied
	// the current id may never sit in the flicker memory as well
	s.remove(copied.VideoID)
}

func (s *State) push(id string) {
	if s.MaxRecent <= 0 {
		return
	}
	s.RecentIDs = append(s.RecentIDs, id)
	if len(s.RecentIDs) > s.MaxRecent {
		s.RecentIDs = s.RecentIDs[len(s.RecentIDs)-s.MaxRecent:]
	}
}

func (s *State) contains(id string) bool {
	for _, r := range s.RecentIDs {
		if r == id {
			return true
		}
	}
	return false
}

func (s *State) remove(id string) {
	for i, r := range s.RecentIDs {
		if r == id {
			s.RecentIDs = append(s.RecentIDs[:i], s.RecentIDs[i+1:]...)
			return
		}
	}
}
