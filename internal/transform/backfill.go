package transform

import (
	"github.com/elektrokombinacija/aerorefuel/internal/flightplan"
	"github.com/elektrokombinacija/aerorefuel/internal/geo"
)

// AddPositionsToActionWaypoints back-fills every action waypoint's
// derived position from the nearest preceding leg's destination, or the
// starting tower's position if no leg precedes it. It re-validates the
// plan afterward.
func AddPositionsToActionWaypoints(fp *flightplan.FlightPlan, startingTowerPos, finishingTowerPos geo.Position) error {
	lastLegTo := startingTowerPos
	for i := 0; i < fp.Len(); i++ {
		w := fp.At(i)
		if w.IsLeg() {
			lastLegTo = w.To()
			continue
		}
		w.SetPosition(lastLegTo)
	}
	return fp.Validate(startingTowerPos, finishingTowerPos)
}
