package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/aerorefuel/internal/flightplan"
	"github.com/elektrokombinacija/aerorefuel/internal/geo"
	"github.com/elektrokombinacija/aerorefuel/internal/waypoint"
)

func TestStretchFlightPlanPreservesTotalDuration(t *testing.T) {
	startPos := geo.NewPosition(0, 0, 0)
	endPos := geo.NewPosition(0, 0, 1000)
	leg := waypoint.NewLeg(startPos, endPos)
	fp := flightplan.New("", "tower-a", "tower-b", []*waypoint.Waypoint{leg}, flightplan.Meta{})

	t0 := time.Date(2026, 7, 29, 8, 0, 0, 0, time.UTC)
	require.NoError(t, AnchorFromLaunch(fp, t0, 10))
	fp.Snapshot()

	oldTotal, _ := fp.TotalDuration()
	oldEnd, _ := fp.End()

	startDelta := 60 * time.Second
	endDelta := 60 * time.Second
	require.NoError(t, StretchFlightPlan(fp, startDelta, endDelta, 10, startPos, endPos))

	newTotal, _ := fp.TotalDuration()
	require.Equal(t, oldTotal+startDelta+endDelta, newTotal)

	start, _ := fp.Start()
	require.Equal(t, t0.Add(-startDelta), start)
	end, _ := fp.End()
	require.Equal(t, oldEnd.Add(endDelta), end)

	// At most a hop leg and a waiting action per stretched end.
	require.LessOrEqual(t, fp.Len(), 1+4)
}

func TestStretchFlightPlanExtendsExistingWaiting(t *testing.T) {
	startPos := geo.NewPosition(0, 0, 0)
	endPos := geo.NewPosition(0, 0, 1000)
	leg := waypoint.NewLeg(startPos, endPos)
	fp := flightplan.New("", "tower-a", "tower-b", []*waypoint.Waypoint{leg}, flightplan.Meta{})

	t0 := time.Date(2026, 7, 29, 8, 0, 0, 0, time.UTC)
	require.NoError(t, AnchorFromLaunch(fp, t0, 10))
	fp.Snapshot()

	require.NoError(t, StretchFlightPlan(fp, 20*time.Second, 0, 10, startPos, endPos))
	firstLen := fp.Len()
	fp.Snapshot()

	require.NoError(t, StretchFlightPlan(fp, 15*time.Second, 0, 10, startPos, endPos))
	require.Equal(t, firstLen, fp.Len())
}
