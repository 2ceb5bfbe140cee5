package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/aerorefuel/internal/flightplan"
	"github.com/elektrokombinacija/aerorefuel/internal/geo"
	"github.com/elektrokombinacija/aerorefuel/internal/waypoint"
)

func threeWaypointPlan() *flightplan.FlightPlan {
	leg1 := waypoint.NewLeg(geo.NewPosition(0, 0, 0), geo.NewPosition(0, 0, 100))
	action := waypoint.NewAction(waypoint.TokenPayload, 30*time.Second)
	leg2 := waypoint.NewLeg(geo.NewPosition(0, 0, 100), geo.NewPosition(0, 0, 200))
	return flightplan.New("", "tower-a", "tower-b", []*waypoint.Waypoint{leg1, action, leg2}, flightplan.Meta{})
}

func TestAnchorFromLaunch(t *testing.T) {
	fp := threeWaypointPlan()
	t0 := time.Date(2026, 7, 29, 8, 0, 0, 0, time.UTC)
	require.NoError(t, AnchorFromLaunch(fp, t0, 10))

	start, _ := fp.Start()
	end, _ := fp.End()
	require.Equal(t, t0, start)
	// leg1: 10s, action: 30s, leg2: 10s = 50s total.
	require.Equal(t, t0.Add(50*time.Second), end)
}

func TestAnchorFromWaypointETA(t *testing.T) {
	fp := threeWaypointPlan()
	action := fp.At(1)
	eta := time.Date(2026, 7, 29, 9, 0, 0, 0, time.UTC)

	require.NoError(t, AnchorFromWaypointETA(fp, action.ID(), eta, 10))

	actionStart, _ := action.StartTime()
	require.Equal(t, eta, actionStart)

	start, _ := fp.Start()
	require.Equal(t, eta.Add(-10*time.Second), start)
}

func TestAnchorFromLanding(t *testing.T) {
	fp := threeWaypointPlan()
	tLand := time.Date(2026, 7, 29, 9, 0, 0, 0, time.UTC)

	require.NoError(t, AnchorFromLanding(fp, tLand, 10))
	require.Equal(t, 3, fp.Len())

	end, _ := fp.End()
	require.Equal(t, tLand, end)
}
