package transform

import (
	"fmt"
	"time"

	"github.com/elektrokombinacija/aerorefuel/internal/flightplan"
	"github.com/elektrokombinacija/aerorefuel/internal/geo"
	"github.com/elektrokombinacija/aerorefuel/internal/waypoint"
)

// maxLiftMeters bounds the vertical-hop search stretch uses to fabricate
// extra flight time at either end of a plan.
const maxLiftMeters = 22

func durationForDistance(dist, speed float64) time.Duration {
	if speed <= 0 {
		return 0
	}
	return geo.RoundToSeconds(time.Duration(dist / speed * float64(time.Second)))
}

// alreadyStretchedStart reports whether the plan's start already carries
// a generated vertical-hop leg followed by a generated waiting action,
// the shape a previous StretchFlightPlan call left behind.
func alreadyStretchedStart(fp *flightplan.FlightPlan) bool {
	return fp.Len() >= 2 && fp.At(0).IsLeg() && fp.At(0).Generated() &&
		fp.At(1).IsAction() && fp.At(1).IsWaiting() && fp.At(1).Generated()
}

func alreadyStretchedEnd(fp *flightplan.FlightPlan) bool {
	n := fp.Len()
	return n >= 2 && fp.At(n-1).IsLeg() && fp.At(n-1).Generated() &&
		fp.At(n-2).IsAction() && fp.At(n-2).IsWaiting() && fp.At(n-2).Generated()
}

// stretchStart adds startDelta of extra flight time before the plan's
// first waypoint.
func stretchStart(fp *flightplan.FlightPlan, startDelta time.Duration, speed float64) error {
	if startDelta <= 0 {
		return nil
	}
	if alreadyStretchedStart(fp) {
		waiting := fp.At(1)
		waiting.SetDuration(waiting.Duration() + startDelta)
		return nil
	}

	firstLeg := fp.At(0)
	if !firstLeg.IsLeg() {
		return fmt.Errorf("transform: flight plan does not start with a leg")
	}
	towerPos := firstLeg.From()
	originalTo := firstLeg.To()
	originalDur := firstLeg.ExpectedDuration(speed)
	target := originalDur + startDelta

	// Largest displacement whose hop + modified first leg still fit
	// within the required duration; the waiting action absorbs the
	// exact remainder so the total comes out to target.
	var liftPos geo.Position
	var syntheticDur, modifiedDur time.Duration
	for h := 0; h < maxLiftMeters; h++ {
		candidate := geo.NewPosition(towerPos.X(), towerPos.Y(), towerPos.Z()+float64(h))
		sdur := durationForDistance(geo.Distance(towerPos, candidate), speed)
		mdur := durationForDistance(geo.Distance(candidate, originalTo), speed)
		if h > 0 && sdur+mdur > target {
			break
		}
		liftPos, syntheticDur, modifiedDur = candidate, sdur, mdur
	}

	syntheticLeg := waypoint.NewLeg(towerPos, liftPos)
	syntheticLeg.SetGenerated(true)
	firstLeg.SetFrom(liftPos)

	waitingDur := target - syntheticDur - modifiedDur

	fp.InsertAt(0, syntheticLeg)
	if waitingDur > 0 {
		waiting := waypoint.NewAction(waypoint.TokenWaiting, waitingDur)
		waiting.SetGenerated(true)
		fp.InsertAt(1, waiting)
	}
	return nil
}

// stretchEnd is the symmetric landing-side counterpart of stretchStart.
func stretchEnd(fp *flightplan.FlightPlan, endDelta time.Duration, speed float64) error {
	if endDelta <= 0 {
		return nil
	}
	n := fp.Len()
	if alreadyStretchedEnd(fp) {
		waiting := fp.At(n - 2)
		waiting.SetDuration(waiting.Duration() + endDelta)
		return nil
	}

	lastLeg := fp.At(n - 1)
	if !lastLeg.IsLeg() {
		return fmt.Errorf("transform: flight plan does not end with a leg")
	}
	towerPos := lastLeg.To()
	originalFrom := lastLeg.From()
	originalDur := lastLeg.ExpectedDuration(speed)
	target := originalDur + endDelta

	var liftPos geo.Position
	var syntheticDur, modifiedDur time.Duration
	for h := 0; h < maxLiftMeters; h++ {
		candidate := geo.NewPosition(towerPos.X(), towerPos.Y(), towerPos.Z()+float64(h))
		mdur := durationForDistance(geo.Distance(originalFrom, candidate), speed)
		sdur := durationForDistance(geo.Distance(candidate, towerPos), speed)
		if h > 0 && sdur+mdur > target {
			break
		}
		liftPos, syntheticDur, modifiedDur = candidate, sdur, mdur
	}

	syntheticLeg := waypoint.NewLeg(liftPos, towerPos)
	syntheticLeg.SetGenerated(true)
	lastLeg.SetTo(liftPos)

	waitingDur := target - syntheticDur - modifiedDur

	if waitingDur > 0 {
		waiting := waypoint.NewAction(waypoint.TokenWaiting, waitingDur)
		waiting.SetGenerated(true)
		fp.InsertAt(fp.Len(), waiting)
	}
	fp.InsertAt(fp.Len(), syntheticLeg)
	return nil
}

// StretchFlightPlan adds startDelta/endDelta extra flight time at either
// end of the plan by inserting (or extending) a synthetic vertical hop
// plus a waiting action, then re-anchors from the new, earlier start and
// re-back-fills action positions.
func StretchFlightPlan(fp *flightplan.FlightPlan, startDelta, endDelta time.Duration, speed float64, startingTowerPos, finishingTowerPos geo.Position) error {
	oldStart, ok := fp.Start()
	if !ok {
		return fmt.Errorf("transform: cannot stretch an unanchored flight plan")
	}
	oldTotal, _ := fp.TotalDuration()

	if err := stretchStart(fp, startDelta, speed); err != nil {
		return err
	}
	if err := stretchEnd(fp, endDelta, speed); err != nil {
		return err
	}

	newStart := oldStart.Add(-startDelta)
	if err := AnchorFromLaunch(fp, newStart, speed); err != nil {
		return err
	}
	if err := AddPositionsToActionWaypoints(fp, startingTowerPos, finishingTowerPos); err != nil {
		return err
	}

	newTotal, _ := fp.TotalDuration()
	wantTotal := oldTotal + startDelta + endDelta
	if newTotal != wantTotal {
		return fmt.Errorf("transform: stretch produced duration %s, want %s", newTotal, wantTotal)
	}
	return nil
}
