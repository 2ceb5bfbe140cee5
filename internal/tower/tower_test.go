package tower

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/aerorefuel/internal/geo"
)

func testTower(t *testing.T) *Tower {
	t.Helper()
	return New(Config{
		ID:                "tower-1",
		Position:          geo.NewPosition(0, 0, 0),
		LaunchTime:        10 * time.Minute,
		LandingTime:       10 * time.Minute,
		ParallelLaunchers: 2,
		ParallelLanders:   2,
		PayloadCapacity:   1,
		BotCapacity:       1,
	}, time.UTC, nil)
}

func TestAllocateLaunchTriesEachLauncherInTurn(t *testing.T) {
	tw := testTower(t)
	date := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)

	id1, err := tw.AllocateLaunch("fp-1", date, 5)
	require.NoError(t, err)

	// Second allocation for the same slot must land on the other launcher.
	id2, err := tw.AllocateLaunch("fp-2", date, 5)
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)

	// A third request for the same slot exhausts both launchers.
	_, err = tw.AllocateLaunch("fp-3", date, 5)
	require.Error(t, err)

	tw.DeallocateLaunch(id1)
	id3, err := tw.AllocateLaunch("fp-3", date, 5)
	require.NoError(t, err)
	require.NotEmpty(t, id3)
}

func TestAllocateLandingRoundTrip(t *testing.T) {
	tw := testTower(t)
	date := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)

	id, err := tw.AllocateLanding("fp-1", date, 0)
	require.NoError(t, err)
	tw.DeallocateLanding(id)

	id2, err := tw.AllocateLanding("fp-2", date, 0)
	require.NoError(t, err)
	require.NotEmpty(t, id2)
}

func TestBayAllocationRespectsCapacity(t *testing.T) {
	tw := testTower(t)
	from := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)

	id, err := tw.AllocatePayloadBay(from, to, "payload-a")
	require.NoError(t, err)

	_, err = tw.AllocatePayloadBay(from, to, "payload-b")
	require.Error(t, err)

	tw.DeallocatePayloadBay(id)
	_, err = tw.AllocatePayloadBay(from, to, "payload-b")
	require.NoError(t, err)
}

func TestNearestAvailableLaunchEndingBy(t *testing.T) {
	tw := testTower(t)
	date := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)

	// Occupy both launchers' slot 5 (covering [00:50,01:00)) so the
	// nearest remaining candidate ending at or before 01:05 is slot 4.
	_, err := tw.AllocateLaunch("fp-1", date, 5)
	require.NoError(t, err)
	_, err = tw.AllocateLaunch("fp-2", date, 5)
	require.NoError(t, err)

	query := date.Add(65 * time.Minute)
	end, _, interval, ok := tw.NearestAvailableLaunchEndingBy(query)
	require.True(t, ok)
	require.Equal(t, 4, interval)
	require.False(t, end.After(query))
}

func TestEqual(t *testing.T) {
	a := testTower(t)
	b := testTower(t)
	require.True(t, a.Equal(b))

	c := New(Config{ID: "tower-2"}, time.UTC, nil)
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(nil))
}
