package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/aerorefuel/internal/flightplan"
	"github.com/elektrokombinacija/aerorefuel/internal/geo"
	"github.com/elektrokombinacija/aerorefuel/internal/waypoint"
)

func TestAddPreGivingRefuelWaypoint(t *testing.T) {
	approach := waypoint.NewLeg(geo.NewPosition(0, 0, 0), geo.NewPosition(0, 0, 1000))
	buffer := waypoint.NewAction(waypoint.TokenAnticipationBuffer, 50*time.Second)
	buffer.SetID("critical")
	giving := waypoint.NewAction(waypoint.TokenGivingRecharge, 100*time.Second)
	depart := waypoint.NewLeg(geo.NewPosition(0, 0, 1000), geo.NewPosition(0, 0, 0))
	fp := flightplan.New("", "tower-a", "tower-a", []*waypoint.Waypoint{approach, buffer, giving, depart}, flightplan.Meta{})

	opts := Options{
		RefuelDuration:              100 * time.Second,
		RemainingFlightTimeAtRefuel: 150 * time.Second,
		AnticipationBuffer:          50 * time.Second,
	}
	err := AddPreGivingRefuelWaypoint(fp, 10, opts, 500*time.Second)
	require.NoError(t, err)

	require.Equal(t, 6, fp.Len())

	var sawRefuel bool
	for i := 0; i < fp.Len(); i++ {
		if w := fp.At(i); w.IsAction() && w.IsBeingRecharged() {
			sawRefuel = true
			require.True(t, i < fp.IndexOf("critical"))
		}
	}
	require.True(t, sawRefuel)
}
