package alloc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAllocateRejectsOverlap(t *testing.T) {
	a := NewResourceAllocator(nil)
	a.AddResource("tower-1-launch")

	base := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)
	_, err := a.Allocate("tower-1-launch", base, base.Add(time.Hour), nil)
	require.NoError(t, err)

	_, err = a.Allocate("tower-1-launch", base.Add(30*time.Minute), base.Add(90*time.Minute), nil)
	require.Error(t, err)
	var allocErr *AllocationError
	require.ErrorAs(t, err, &allocErr)
}

func TestAllocateAcceptsAdjacentHalfOpenIntervals(t *testing.T) {
	a := NewResourceAllocator(nil)
	a.AddResource("r")
	base := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)

	_, err := a.Allocate("r", base, base.Add(time.Hour), nil)
	require.NoError(t, err)

	_, err = a.Allocate("r", base.Add(time.Hour), base.Add(2*time.Hour), nil)
	require.NoError(t, err, "half-open intervals touching at the boundary must not overlap")
}

func TestDeleteIsIdempotent(t *testing.T) {
	a := NewResourceAllocator(nil)
	a.AddResource("r")
	base := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)
	id, _ := a.Allocate("r", base, base.Add(time.Hour), nil)

	a.Delete(id)
	require.NotPanics(t, func() { a.Delete(id) })
	_, ok := a.GetByID(id)
	require.False(t, ok)
}

func TestIsAvailableProbeDoesNotLeaveAllocation(t *testing.T) {
	a := NewResourceAllocator(nil)
	a.AddResource("r")
	base := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)

	require.True(t, a.IsAvailable("r", base, base.Add(time.Hour)))

	_, err := a.Allocate("r", base, base.Add(time.Hour), nil)
	require.NoError(t, err, "the probe must not have left a real allocation behind")
}

func TestIntervalAllocatorRoundTrip(t *testing.T) {
	ia := NewIntervalAllocator(time.Hour, time.UTC, nil)
	ia.AddResource("tower-1")
	date := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)

	_, err := ia.Allocate("tower-1", date, 0, nil)
	require.NoError(t, err)

	avail := ia.GetAvailableIntervals("tower-1", date)
	want := make([]int, 0, 23)
	for i := 1; i < 24; i++ {
		want = append(want, i)
	}
	require.Equal(t, want, avail)

	noon := date.Add(12 * time.Hour)
	nearest := ia.NearestIntervalsToWindowStart("tower-1", noon)
	wantNearest := []int{12, 11, 13, 10, 14, 9, 15, 8, 16, 7, 17, 6, 18, 5, 19, 4, 20, 3, 21, 2, 22, 1, 23}
	require.Equal(t, wantNearest, nearest)
}

func TestIntervalAllocatorOutOfRange(t *testing.T) {
	ia := NewIntervalAllocator(time.Hour, time.UTC, nil)
	ia.AddResource("tower-1")
	date := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)
	_, err := ia.Allocate("tower-1", date, 24, nil)
	require.Error(t, err)
}
