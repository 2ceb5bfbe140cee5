package transform

import (
	"fmt"
	"time"

	"github.com/elektrokombinacija/aerorefuel/internal/flightplan"
	"github.com/elektrokombinacija/aerorefuel/internal/model"
	"github.com/elektrokombinacija/aerorefuel/internal/tower"
)

// FitSlots is the (date, interval) pair chosen for the launch and
// landing tower allocations once a plan has been fit to the slot grid.
type FitSlots struct {
	LaunchDate      time.Time
	LaunchInterval  int
	LandingDate     time.Time
	LandingInterval int
}

// FitFlightPlanIntoTowerAllocations snaps an approximated plan's start
// and end onto the launch and landing towers' slot grids by stretching,
// re-running recalculate when the stretch adds flight time, and
// retrying until the plan lands exactly on a slot pair. It returns the
// slots the plan was ultimately fit to, leaving the actual tower
// allocation to the caller.
func FitFlightPlanIntoTowerAllocations(
	fp *flightplan.FlightPlan,
	schema model.BotSchema,
	opts Options,
	launchTower, landingTower *tower.Tower,
) (FitSlots, error) {
	const maxFitAttempts = 30
	for attempt := 0; attempt < maxFitAttempts; attempt++ {
		start, ok := fp.Start()
		if !ok {
			return FitSlots{}, fmt.Errorf("transform: flight plan is not anchored")
		}
		end, ok := fp.End()
		if !ok {
			return FitSlots{}, fmt.Errorf("transform: flight plan is not anchored")
		}

		launchWindowEnd, launchDate, launchInterval, ok := launchTower.NearestAvailableLaunchEndingBy(start)
		if !ok {
			return FitSlots{}, fmt.Errorf("transform: no available launch slot ending by %s", start)
		}
		landingWindowStart, landingDate, landingInterval, ok := landingTower.NearestAvailableLandingStartingAfter(end)
		if !ok {
			return FitSlots{}, fmt.Errorf("transform: no available landing slot starting after %s", end)
		}

		startDelta := start.Sub(launchWindowEnd)
		endDelta := landingWindowStart.Sub(end)
		if startDelta == 0 && endDelta == 0 {
			return FitSlots{LaunchDate: launchDate, LaunchInterval: launchInterval, LandingDate: landingDate, LandingInterval: landingInterval}, nil
		}

		fp.RestoreFromSnapshot()
		if err := StretchFlightPlan(fp, startDelta, endDelta, schema.Speed, launchTower.Position(), landingTower.Position()); err != nil {
			return FitSlots{}, err
		}
		if err := Recalculate(fp, schema, opts); err != nil {
			return FitSlots{}, err
		}
		newStart, _ := fp.Start()
		if err := AnchorFromLaunch(fp, newStart, schema.Speed); err != nil {
			return FitSlots{}, err
		}
		if err := AddPositionsToActionWaypoints(fp, launchTower.Position(), landingTower.Position()); err != nil {
			return FitSlots{}, err
		}
		fp.Snapshot()

		// Whether recalculate added refuels or not, the loop re-checks
		// from the top: a stretch that added no refuels should now land
		// exactly on the targeted slots, while one that did may have
		// shifted the plan's duration enough to need another round.
	}
	return FitSlots{}, fmt.Errorf("transform: fit-to-slots did not converge after %d attempts", maxFitAttempts)
}
