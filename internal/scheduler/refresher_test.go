package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seojedaperez/ignismap-engine/internal/config"
	"github.com/seojedaperez/ignismap-engine/internal/domain"
)

type recordingRefresher struct {
	mu     sync.Mutex
	calls  []domain.GeoPoint
	errFor map[domain.GeoPoint]error
}

func (r *recordingRefresher) RefreshSnapshot(_ context.Context, location domain.GeoPoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, location)
	return r.errFor[location]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRefreshAllCoversEveryLocation(t *testing.T) {
	refresher := &recordingRefresher{}
	locations := []config.WatchedLocation{
		{Lat: 39.47, Lon: -0.38},
		{Lat: 40.42, Lon: -3.70},
	}

	New(refresher, locations, discardLogger()).RefreshAll()

	assert.Equal(t, []domain.GeoPoint{
		{Lat: 39.47, Lon: -0.38},
		{Lat: 40.42, Lon: -3.70},
	}, refresher.calls)
}

func TestRefreshAllContinuesPastFailures(t *testing.T) {
	broken := domain.GeoPoint{Lat: 39.47, Lon: -0.38}
	refresher := &recordingRefresher{
		errFor: map[domain.GeoPoint]error{broken: errors.New("provider down")},
	}
	locations := []config.WatchedLocation{
		{Lat: 39.47, Lon: -0.38},
		{Lat: 40.42, Lon: -3.70},
	}

	New(refresher, locations, discardLogger()).RefreshAll()

	assert.Len(t, refresher.calls, 2, "a failing location must not stop the pass")
}

func TestStartRejectsBadSpec(t *testing.T) {
	r := New(&recordingRefresher{}, []config.WatchedLocation{{Lat: 1, Lon: 1}}, discardLogger())
	assert.Error(t, r.Start("not a cron spec"))
}

func TestStartWithNoLocationsIsNoop(t *testing.T) {
	r := New(&recordingRefresher{}, nil, discardLogger())
	require.NoError(t, r.Start("@every 15m"))
	r.Stop()
}
