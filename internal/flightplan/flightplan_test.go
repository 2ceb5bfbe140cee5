package flightplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/aerorefuel/internal/geo"
	"github.com/elektrokombinacija/aerorefuel/internal/waypoint"
)

func straightPlan() *FlightPlan {
	leg := waypoint.NewLeg(geo.NewPosition(0, 0, 0), geo.NewPosition(0, 0, 1000))
	return New("", "tower-a", "tower-b", []*waypoint.Waypoint{leg}, Meta{BotModel: "falcon"})
}

func TestValidateAcceptsStraightPlan(t *testing.T) {
	fp := straightPlan()
	err := fp.Validate(geo.NewPosition(0, 0, 0), geo.NewPosition(0, 0, 1000))
	require.NoError(t, err)
}

func TestValidateRejectsMismatchedTower(t *testing.T) {
	fp := straightPlan()
	err := fp.Validate(geo.NewPosition(1, 1, 1), geo.NewPosition(0, 0, 1000))
	require.Error(t, err)
}

func TestValidateRejectsNonLegTail(t *testing.T) {
	leg := waypoint.NewLeg(geo.NewPosition(0, 0, 0), geo.NewPosition(0, 0, 1000))
	action := waypoint.NewAction("waiting", time.Second)
	fp := New("", "tower-a", "tower-b", []*waypoint.Waypoint{leg, action}, Meta{})
	err := fp.Validate(geo.NewPosition(0, 0, 0), geo.NewPosition(0, 0, 1000))
	require.Error(t, err)
}

func TestSnapshotRestoreRoundTrips(t *testing.T) {
	fp := straightPlan()
	originalLen := fp.Len()

	extra := waypoint.NewAction("waiting", 5*time.Second)
	fp.Append(extra)
	require.Equal(t, originalLen+1, fp.Len())

	fp.RestoreFromSnapshot()
	require.Equal(t, originalLen, fp.Len())
}

func TestCloneIsIndependentOfSource(t *testing.T) {
	fp := straightPlan()
	clone := fp.Clone()
	require.NotEqual(t, fp.ID(), clone.ID())

	clone.Append(waypoint.NewAction("waiting", time.Second))
	require.NotEqual(t, fp.Len(), clone.Len())
}

func TestIsApproximated(t *testing.T) {
	fp := straightPlan()
	require.False(t, fp.IsApproximated())

	now := time.Now()
	fp.At(0).SetTimes(now, now.Add(time.Second))
	require.True(t, fp.IsApproximated())
}
