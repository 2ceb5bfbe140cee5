package transform

import (
	"fmt"
	"time"

	"github.com/elektrokombinacija/aerorefuel/internal/flightplan"
	"github.com/elektrokombinacija/aerorefuel/internal/geo"
	"github.com/elektrokombinacija/aerorefuel/internal/waypoint"
)

// minPreGivingRatio and maxPreGivingRatio bound the split point along
// the leg preceding a giving_recharge action.
const (
	minPreGivingRatio = 0.5
	maxPreGivingRatio = 1.0
	preGivingSafety   = 60 * time.Second
)

// AddPreGivingRefuelWaypoint prevents a pathological loop where a
// refueler, to reach its refuel position, would itself need a refuel
// exactly at that position: it splits the leg immediately preceding a
// giving_recharge action and inserts a being_recharged partway along it.
//
// The split ratio is chosen so the remaining leg, plus the refuel
// anticipation buffer, plus the refuel itself, plus a 60s safety margin,
// still fits within the bot's endurance, clamped to [0.5, 1).
func AddPreGivingRefuelWaypoint(fp *flightplan.FlightPlan, speed float64, opts Options, endurance time.Duration) error {
	givingIdx := -1
	for i := 0; i < fp.Len(); i++ {
		if w := fp.At(i); w.IsAction() && w.IsGivingRecharge() {
			givingIdx = i
			break
		}
	}
	if givingIdx < 1 {
		return fmt.Errorf("transform: flight plan has no giving_recharge action to inject a pre-refuel before")
	}

	legIdx := givingIdx - 1
	for legIdx >= 0 && !fp.At(legIdx).IsLeg() {
		legIdx--
	}
	if legIdx < 0 {
		return fmt.Errorf("transform: no leg precedes the giving_recharge action")
	}
	leg := fp.At(legIdx)

	remaining := endurance - opts.RefuelDuration - opts.RemainingFlightTimeAtRefuel - opts.AnticipationBuffer - preGivingSafety
	legTime := leg.ExpectedDuration(speed)
	if legTime <= 0 {
		return fmt.Errorf("transform: pre-giving-refuel leg has zero duration")
	}

	ratio := 1 - float64(remaining)/float64(legTime)
	if ratio < minPreGivingRatio {
		ratio = minPreGivingRatio
	}
	if ratio >= maxPreGivingRatio {
		ratio = maxPreGivingRatio - 0.001
	}

	from, to := leg.From(), leg.To()
	splitPos := geo.Interpolate(from, to, ratio)

	leg.SetTo(splitPos)
	refuel := newRefuelWaypoint(opts.RefuelDuration)
	fp.InsertAt(legIdx+1, refuel)

	rest := waypoint.NewLeg(splitPos, to)
	rest.SetGenerated(true)
	fp.InsertAt(legIdx+2, rest)

	return nil
}
