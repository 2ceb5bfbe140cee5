package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/aerorefuel/internal/flightplan"
	"github.com/elektrokombinacija/aerorefuel/internal/geo"
	"github.com/elektrokombinacija/aerorefuel/internal/tower"
	"github.com/elektrokombinacija/aerorefuel/internal/waypoint"
)

func TestFitFlightPlanIntoTowerAllocationsSnapsToSlots(t *testing.T) {
	launchPos := geo.NewPosition(0, 0, 0)
	landingPos := geo.NewPosition(0, 0, 500)

	launchTower := tower.New(tower.Config{
		ID: "launch", Position: launchPos,
		LaunchTime: 10 * time.Minute, LandingTime: 10 * time.Minute,
		ParallelLaunchers: 1, ParallelLanders: 1,
	}, time.UTC, nil)
	landingTower := tower.New(tower.Config{
		ID: "landing", Position: landingPos,
		LaunchTime: 10 * time.Minute, LandingTime: 10 * time.Minute,
		ParallelLaunchers: 1, ParallelLanders: 1,
	}, time.UTC, nil)

	leg := waypoint.NewLeg(launchPos, landingPos)
	fp := flightplan.New("", "launch", "landing", []*waypoint.Waypoint{leg}, flightplan.Meta{BotModel: "operator-1"})

	schema := operatorSchema(1, 100000)
	opts := Options{RefuelDuration: 10 * time.Second, RemainingFlightTimeAtRefuel: 20 * time.Second}

	// Anchor somewhere off-grid, well past the day's first slots; slot
	// width is 10 minutes.
	date := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)
	t0 := date.Add(8*time.Hour + 3*time.Minute + 17*time.Second)
	require.NoError(t, AnchorFromLaunch(fp, t0, schema.Speed))
	require.NoError(t, AddPositionsToActionWaypoints(fp, launchPos, landingPos))
	fp.Snapshot()

	slots, err := FitFlightPlanIntoTowerAllocations(fp, schema, opts, launchTower, landingTower)
	require.NoError(t, err)
	require.GreaterOrEqual(t, slots.LaunchInterval, 0)
	require.GreaterOrEqual(t, slots.LandingInterval, 0)

	start, ok := fp.Start()
	require.True(t, ok)
	end, ok := fp.End()
	require.True(t, ok)

	// The fitted start must land exactly on the launch tower's slot grid.
	elapsedSinceMidnight := start.Sub(date)
	require.Equal(t, time.Duration(0), elapsedSinceMidnight%(10*time.Minute))
	require.True(t, end.After(start))
}
