package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/tunelog/tunelog/service/ytmusic"
)

type fakeSource struct {
	albums map[string]*ytmusic.AlbumData
	calls  int
}

func (s *fakeSource) Album(ctx context.Context, albumID string) (*ytmusic.AlbumData, error) {
	s.calls++
	album, ok := s.albums[albumID]
	if !ok {
		return nil, errors.New("album not found")
	}
	return album, nil
}

func TestYearCachesLookups(t *testing.T) {
	source := &fakeSource{albums: map[string]*ytmusic.AlbumData{
		"MPREb_ok": {Title: "In Rainbows", Year: "2007"},
	}}
	service := New(source)
	ctx := context.Background()

	if got := service.Year(ctx, "MPREb_ok"); got != "2007" {
		t.Errorf("expected 2007, got %q", got)
	}
	if got := service.Year(ctx, "MPREb_ok"); got != "2007" {
		t.Errorf("expected cached 2007, got %q", got)
	}
	if source.calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", source.calls)
	}
	if got := service.CachedYear("MPREb_ok"); got != "2007" {
		t.Errorf("expected cached year readable, got %q", got)
	}
}

func TestYearCachesFailures(t *testing.T) {
	source := &fakeSource{}
	service := New(source)
	ctx := context.Background()

	if got := service.Year(ctx, "MPREb_broken"); got != "" {
		t.Errorf("expected empty year on failure, got %q", got)
	}
	service.Year(ctx, "MPREb_broken")
	if source.calls != 1 {
		t.Errorf("failure must be cached, got %d upstream calls", source.calls)
	}
}

func TestYearEmptyAlbumID(t *testing.T) {
	source := &fakeSource{}
	service := New(source)

	if got := service.Year(context.Background(), ""); got != "" {
		t.Errorf("expected empty year for empty id, got %q", got)
	}
	if source.calls != 0 {
		t.Errorf("empty id must not hit upstream, got %d calls", source.calls)
	}
}
