// Package state manages the visualization state.
package state

import (
	"sort"
	"time"

	"github.com/elektrokombinacija/aerorefuel/internal/flightplan"
	"github.com/elektrokombinacija/aerorefuel/internal/geo"
	"github.com/elektrokombinacija/aerorefuel/internal/scheduler"
)

// Flight is one flight plan flattened out of a Schedule tree for
// rendering, alongside the label describing its role in the mission
// (root mission, or "refuel for <waypoint>").
type Flight struct {
	Label string
	Plan  *flightplan.FlightPlan
}

// State holds all visualization state: the flattened set of flight
// plans a Schedule produced, and the playback cursor scrubbing through
// their combined time span.
type State struct {
	Schedule *scheduler.Schedule
	Flights  []Flight
	Playback *PlaybackState
}

// NewState flattens sched's tree of flight plans and builds playback
// state spanning their earliest start to latest end.
func NewState(sched *scheduler.Schedule) *State {
	flights := flatten(sched, "mission")

	var minStart, maxEnd time.Time
	for i, f := range flights {
		start, _ := f.Plan.Start()
		end, _ := f.Plan.End()
		if i == 0 || start.Before(minStart) {
			minStart = start
		}
		if i == 0 || end.After(maxEnd) {
			maxEnd = end
		}
	}

	return &State{
		Schedule: sched,
		Flights:  flights,
		Playback: NewPlaybackState(minStart, maxEnd),
	}
}

func flatten(sched *scheduler.Schedule, label string) []Flight {
	if sched == nil {
		return nil
	}
	var out []Flight
	if sched.FlightPlan != nil {
		out = append(out, Flight{Label: label, Plan: sched.FlightPlan})
	}
	ids := make([]string, 0, len(sched.Refuelers))
	for id := range sched.Refuelers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		out = append(out, flatten(sched.Refuelers[id], "refuel for "+id)...)
	}
	return out
}

// PositionAt interpolates a flight's bot position at instant t by
// walking its waypoints' approximated time windows; returns the first
// waypoint's origin before the flight starts and the last one's
// destination after it ends.
func PositionAt(f Flight, t time.Time) (geo.Position, bool) {
	plan := f.Plan
	if plan.Len() == 0 {
		return geo.Position{}, false
	}
	for i := 0; i < plan.Len(); i++ {
		w := plan.At(i)
		start, ok := w.StartTime()
		if !ok {
			continue
		}
		end, _ := w.EndTime()
		if t.Before(start) {
			if w.IsLeg() {
				return w.From(), true
			}
			pos, ok := w.Position()
			return pos, ok
		}
		if t.Before(end) || t.Equal(start) {
			if w.IsLeg() {
				dur := end.Sub(start)
				if dur <= 0 {
					return w.From(), true
				}
				ratio := t.Sub(start).Seconds() / dur.Seconds()
				return geo.Interpolate(w.From(), w.To(), ratio), true
			}
			pos, ok := w.Position()
			return pos, ok
		}
	}
	last := plan.At(plan.Len() - 1)
	if last.IsLeg() {
		return last.To(), true
	}
	pos, ok := last.Position()
	return pos, ok
}
