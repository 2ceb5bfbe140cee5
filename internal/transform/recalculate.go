// Package transform holds the pure flight-plan mutations the scheduler
// composes: refuel insertion, time anchoring, position back-fill,
// stretching, slot fitting, and pre-giving-refuel injection.
package transform

import (
	"fmt"
	"time"

	"github.com/elektrokombinacija/aerorefuel/internal/flightplan"
	"github.com/elektrokombinacija/aerorefuel/internal/geo"
	"github.com/elektrokombinacija/aerorefuel/internal/model"
	"github.com/elektrokombinacija/aerorefuel/internal/waypoint"
)

// Options carries the scheduler-wide durations recalculate needs: the
// duration of one refuel, the flight time remaining in the refueled bot
// at the moment of refuel, and the refueler's early-arrival buffer.
// refuelInParallelWithPayload is a planned extension: merging payload
// and being_recharged labels instead of splitting them. It is never
// enabled and the merge cases are not implemented.
type Options struct {
	RefuelDuration              time.Duration
	RemainingFlightTimeAtRefuel time.Duration
	AnticipationBuffer          time.Duration

	refuelInParallelWithPayload bool
}

// Threshold returns the maximum accumulated in-flight time allowed
// between two consecutive refuels for a bot of the given schema.
func (o Options) Threshold(schema model.BotSchema) time.Duration {
	endurance := time.Duration(schema.FlightTime * float64(time.Second))
	return endurance - o.RemainingFlightTimeAtRefuel - o.RefuelDuration
}

func newRefuelWaypoint(d time.Duration) *waypoint.Waypoint {
	w := waypoint.NewAction(waypoint.TokenBeingRecharged, d)
	w.SetGenerated(true)
	return w
}

// Recalculate splits legs and actions so that the accumulated in-flight
// time between any two consecutive being_recharged actions (or the
// plan's start and the first one) never exceeds Options.Threshold. It
// is a restartable scan: each insertion restarts the walk from the
// beginning, since earlier segments are already under threshold and
// never re-trigger.
func Recalculate(fp *flightplan.FlightPlan, schema model.BotSchema, opts Options) error {
	threshold := opts.Threshold(schema)
	if threshold <= 0 {
		return fmt.Errorf("transform: non-positive refuel threshold %s for bot model %q", threshold, schema.Model)
	}

	for {
		if !recalculatePass(fp, schema, opts, threshold) {
			return nil
		}
	}
}

// recalculatePass performs one scan, applying at most one insertion, and
// reports whether it made one (the caller restarts the scan if so).
func recalculatePass(fp *flightplan.FlightPlan, schema model.BotSchema, opts Options, threshold time.Duration) bool {
	var accum time.Duration
	for i := 0; i < fp.Len(); i++ {
		w := fp.At(i)

		if w.IsAction() && w.IsBeingRecharged() {
			accum = 0
			continue
		}

		var d time.Duration
		if w.IsAction() {
			d = w.Duration()
		} else {
			d = w.ExpectedDuration(schema.Speed)
		}

		newAccum := accum + d
		if newAccum <= threshold {
			accum = newAccum
			continue
		}

		overshoot := newAccum - threshold
		if w.IsLeg() {
			splitLeg(fp, i, w, d, overshoot, opts.RefuelDuration)
		} else {
			splitAction(fp, i, w, d, overshoot, opts.RefuelDuration)
		}
		return true
	}
	return false
}

func splitAction(fp *flightplan.FlightPlan, i int, w *waypoint.Waypoint, d, overshoot, refuelDuration time.Duration) {
	if w.IsGivingRecharge() {
		insertIdx := i
		if i >= 1 && fp.At(i-1).IsAction() && fp.At(i-1).IsAnticipationBuffer() {
			insertIdx = i - 1
		}
		fp.InsertAt(insertIdx, newRefuelWaypoint(refuelDuration))
		return
	}

	if d == overshoot {
		fp.InsertAt(i, newRefuelWaypoint(refuelDuration))
		return
	}

	w.SetDuration(d - overshoot)
	fp.InsertAt(i+1, newRefuelWaypoint(refuelDuration))

	rest := waypoint.NewAction(w.Action(), overshoot)
	rest.SetGenerated(true)
	fp.InsertAt(i+2, rest)
}

func splitLeg(fp *flightplan.FlightPlan, i int, w *waypoint.Waypoint, legTime, overshoot, refuelDuration time.Duration) {
	ratio := (legTime - overshoot).Seconds() / legTime.Seconds()
	from, to := w.From(), w.To()
	splitPos := geo.Interpolate(from, to, ratio)

	w.SetTo(splitPos)
	fp.InsertAt(i+1, newRefuelWaypoint(refuelDuration))

	rest := waypoint.NewLeg(splitPos, to)
	rest.SetGenerated(true)
	fp.InsertAt(i+2, rest)
}
