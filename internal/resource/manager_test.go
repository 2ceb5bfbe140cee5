package resource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/aerorefuel/internal/alloc"
)

func TestAllocateResourceTracksLocation(t *testing.T) {
	ra := alloc.NewResourceAllocator(nil)
	ra.AddResource("bot-1")
	m := NewManager(ra, nil)
	m.Track("bot-1", "tower-a")

	base := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)
	_, err := m.AllocateResource("bot-1", base, base.Add(time.Hour), "tower-a", "tower-b", "fp-1")
	require.NoError(t, err)

	loc, err := m.LocationAt("bot-1", base.Add(-time.Minute))
	require.NoError(t, err)
	require.Equal(t, "tower-a", loc)

	_, err = m.LocationAt("bot-1", base.Add(30*time.Minute))
	require.Error(t, err)
	var trackerErr *TrackerError
	require.ErrorAs(t, err, &trackerErr)

	loc, err = m.LocationAt("bot-1", base.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, "tower-b", loc)
}

func TestDeallocateResourceRollsBackTrackerRecord(t *testing.T) {
	ra := alloc.NewResourceAllocator(nil)
	ra.AddResource("bot-1")
	m := NewManager(ra, nil)
	m.Track("bot-1", "tower-a")

	base := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)
	id, err := m.AllocateResource("bot-1", base, base.Add(time.Hour), "tower-a", "tower-b", "fp-1")
	require.NoError(t, err)

	m.DeallocateResource(id)

	// The underlying reservation is gone...
	require.True(t, m.IsAllocationAvailable("bot-1", base, base.Add(time.Hour)))

	// ...and the movement record went with it: the bot never flew, so
	// it is still at its initial tower for the whole window.
	tracker, ok := m.Tracker("bot-1")
	require.True(t, ok)
	require.Empty(t, tracker.History())

	loc, err := m.LocationAt("bot-1", base.Add(30*time.Minute))
	require.NoError(t, err)
	require.Equal(t, "tower-a", loc)
}
