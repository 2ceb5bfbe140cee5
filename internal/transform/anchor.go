package transform

import (
	"fmt"
	"time"

	"github.com/elektrokombinacija/aerorefuel/internal/flightplan"
	"github.com/elektrokombinacija/aerorefuel/internal/waypoint"
)

// forwardPass assigns start/end times to every waypoint in order,
// beginning at start; all three anchoring modes normalize through it.
func forwardPass(fp *flightplan.FlightPlan, start time.Time, speed float64) {
	cur := start
	for i := 0; i < fp.Len(); i++ {
		w := fp.At(i)
		end := cur.Add(w.ExpectedDuration(speed))
		w.SetTimes(cur, end)
		cur = end
	}
}

// AnchorFromLaunch anchors every waypoint by a forward pass from t0.
func AnchorFromLaunch(fp *flightplan.FlightPlan, t0 time.Time, speed float64) error {
	if fp.Len() == 0 {
		return fmt.Errorf("transform: cannot anchor an empty flight plan")
	}
	forwardPass(fp, t0, speed)
	return nil
}

// AnchorFromWaypointETA anchors the plan so the named waypoint's start
// equals eta: it first walks backward from that waypoint assigning
// times by subtracting duration, then re-runs the forward pass from the
// computed start of waypoint 0 to normalize every waypoint, including
// any after the anchor.
func AnchorFromWaypointETA(fp *flightplan.FlightPlan, waypointID string, eta time.Time, speed float64) error {
	idx := fp.IndexOf(waypointID)
	if idx < 0 {
		return fmt.Errorf("transform: no waypoint with id %q", waypointID)
	}

	target := fp.At(idx)
	end := eta.Add(target.ExpectedDuration(speed))
	target.SetTimes(eta, end)

	nextStart := eta
	for i := idx - 1; i >= 0; i-- {
		w := fp.At(i)
		start := nextStart.Add(-w.ExpectedDuration(speed))
		w.SetTimes(start, nextStart)
		nextStart = start
	}

	start0, _ := fp.At(0).StartTime()
	forwardPass(fp, start0, speed)
	return nil
}

// AnchorFromLanding anchors the plan so its last waypoint ends at
// tLand: it appends a zero-work dummy action, anchors that dummy's
// start to tLand via the waypoint-ETA path, then discards the dummy.
func AnchorFromLanding(fp *flightplan.FlightPlan, tLand time.Time, speed float64) error {
	dummy := waypoint.NewAction(waypoint.TokenDummy, 0)
	dummy.SetGenerated(true)
	fp.Append(dummy)

	if err := AnchorFromWaypointETA(fp, dummy.ID(), tLand, speed); err != nil {
		fp.RemoveAt(fp.Len() - 1)
		return err
	}
	fp.RemoveAt(fp.Len() - 1)
	return nil
}
