package waypoint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/aerorefuel/internal/geo"
)

func TestLegExpectedDuration(t *testing.T) {
	leg := NewLeg(geo.NewPosition(0, 0, 0), geo.NewPosition(0, 0, 200))
	require.Equal(t, 200*time.Second, leg.ExpectedDuration(1.0))
}

func TestActionTokenPredicates(t *testing.T) {
	a := NewAction("payload being_recharged", 90*time.Second)
	require.True(t, a.IsPayloadAction())
	require.True(t, a.IsBeingRecharged())
	require.False(t, a.IsGivingRecharge())
	require.False(t, a.IsWaiting())
}

func TestApproximatedInvariant(t *testing.T) {
	leg := NewLeg(geo.NewPosition(0, 0, 0), geo.NewPosition(0, 0, 1))
	require.False(t, leg.Approximated())

	now := time.Now()
	leg.SetTimes(now, now.Add(time.Second))
	require.True(t, leg.Approximated())

	leg.ClearTimes()
	require.False(t, leg.Approximated())
}

func TestCloneIsIndependent(t *testing.T) {
	a := NewAction("waiting", 10*time.Second)
	now := time.Now()
	a.SetTimes(now, now.Add(10*time.Second))

	clone := a.Clone()
	clone.SetDuration(20 * time.Second)
	clone.ClearTimes()

	require.Equal(t, 10*time.Second, a.Duration())
	require.True(t, a.Approximated())
	require.Equal(t, 20*time.Second, clone.Duration())
	require.False(t, clone.Approximated())
}

func TestLegAccessorsPanicOnAction(t *testing.T) {
	a := NewAction("waiting", time.Second)
	require.Panics(t, func() { a.From() })
}
