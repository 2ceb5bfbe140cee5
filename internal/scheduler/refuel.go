package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/elektrokombinacija/aerorefuel/internal/flightplan"
	"github.com/elektrokombinacija/aerorefuel/internal/geo"
	"github.com/elektrokombinacija/aerorefuel/internal/model"
	"github.com/elektrokombinacija/aerorefuel/internal/tower"
	"github.com/elektrokombinacija/aerorefuel/internal/transform"
	"github.com/elektrokombinacija/aerorefuel/internal/waypoint"
)

// createTransitSchedule schedules a ferry flight from fromTowerID to
// toTowerID, anchored purely by the caller-supplied arrival time:
// AnchorModeLanding sets the plan's end to arrival directly; a transit
// has no independent launch-time parameter of its own. meta names the
// resource being ferried (the bot flying the transit itself, or a
// carrier bot model plus the payload aboard), so the transit's own
// binding moves that resource's tracker to the destination tower.
func (s *Scheduler) createTransitSchedule(fromTowerID, toTowerID string, arrival time.Time, meta flightplan.Meta, t *txn, depth int) (*Schedule, error) {
	from, ok := s.world.Towers[fromTowerID]
	if !ok {
		return nil, &ScheduleError{Reason: fmt.Sprintf("transit from unknown tower %q", fromTowerID)}
	}
	to, ok := s.world.Towers[toTowerID]
	if !ok {
		return nil, &ScheduleError{Reason: fmt.Sprintf("transit to unknown tower %q", toTowerID)}
	}
	leg := waypoint.NewLeg(from.Position(), to.Position())
	plan := flightplan.New("", fromTowerID, toTowerID, []*waypoint.Waypoint{leg}, meta)
	return s.determineSchedule(plan, LandingAnchor(arrival), t, depth+1)
}

// refuelCandidate is one (launch tower, refueler schema) pairing a
// refuel sub-plan could be built around, ordered by distance to the
// being_recharged waypoint it would service.
type refuelCandidate struct {
	tower    *tower.Tower
	schema   model.BotSchema
	distance float64
}

// createRefuelFlightPlans builds and schedules the refueler sub-plan
// servicing a single being_recharged waypoint: candidates are towers
// paired with refueler-capable schemas, tried nearest-first, with a
// pre-giving-refuel injected when a candidate would otherwise need to
// refuel itself exactly at the hand-off.
func (s *Scheduler) createRefuelFlightPlans(parent *flightplan.FlightPlan, w *waypoint.Waypoint, t *txn, depth int) (*Schedule, error) {
	if depth+1 > s.world.MaxRecursionDepth {
		return nil, &ScheduleError{FlightPlanID: parent.ID(), Reason: "refuel recursion depth exceeded"}
	}
	pos, ok := w.Position()
	if !ok {
		return nil, &ScheduleError{FlightPlanID: parent.ID(), Reason: "being_recharged waypoint has no back-filled position"}
	}
	wStart, ok := w.StartTime()
	if !ok {
		return nil, &ScheduleError{FlightPlanID: parent.ID(), Reason: "being_recharged waypoint is not anchored"}
	}

	candidates := s.refuelCandidates(pos, wStart)
	var lastErr error
	for _, c := range candidates {
		plan := s.buildRefuelCandidatePlan(c, pos)

		probe := plan.Clone()
		if err := transform.Recalculate(probe, c.schema, s.world.Options); err == nil && hasPathologicalRefuel(probe) {
			endurance := time.Duration(c.schema.FlightTime * float64(time.Second))
			if err := transform.AddPreGivingRefuelWaypoint(plan, c.schema.Speed, s.world.Options, endurance); err != nil {
				lastErr = err
				continue
			}
			plan.Snapshot()
		}

		eta := wStart.Add(-s.world.Options.AnticipationBuffer)
		local := newTxn()
		sched, err := s.determineSchedule(plan, WaypointETAAnchor("critical", eta), local, depth+1)
		if err != nil {
			local.rollback()
			lastErr = err
			continue
		}
		t.merge(local)
		return sched, nil
	}
	return nil, &ScheduleError{FlightPlanID: parent.ID(), Reason: "no refueler candidate could be scheduled", Cause: lastErr}
}

// buildRefuelCandidatePlan assembles the four-waypoint round trip: out,
// anticipation buffer, giving_recharge, back.
func (s *Scheduler) buildRefuelCandidatePlan(c refuelCandidate, target geo.Position) *flightplan.FlightPlan {
	out := waypoint.NewLeg(c.tower.Position(), target)
	buf := waypoint.NewAction(waypoint.TokenAnticipationBuffer, s.world.Options.AnticipationBuffer)
	buf.SetID("critical")
	give := waypoint.NewAction(waypoint.TokenGivingRecharge, s.world.Options.RefuelDuration)
	back := waypoint.NewLeg(target, c.tower.Position())
	meta := flightplan.Meta{BotModel: c.schema.Model}
	if s.world.RefuelPayloadModel != "" {
		meta.PayloadModel = s.world.RefuelPayloadModel
	}
	return flightplan.New("", c.tower.ID(), c.tower.ID(), []*waypoint.Waypoint{out, buf, give, back}, meta)
}

// refuelCandidates lists every (tower, refueler schema) pairing worth
// trying, sorted nearest-tower-first.
func (s *Scheduler) refuelCandidates(target geo.Position, at time.Time) []refuelCandidate {
	var out []refuelCandidate
	for _, tw := range s.world.Towers {
		for _, schema := range s.refuelerSchemasFor(tw, at) {
			out = append(out, refuelCandidate{tower: tw, schema: schema, distance: geo.Distance(tw.Position(), target)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].distance != out[j].distance {
			return out[i].distance < out[j].distance
		}
		if out[i].tower.ID() != out[j].tower.ID() {
			return out[i].tower.ID() < out[j].tower.ID()
		}
		return out[i].schema.Model < out[j].schema.Model
	})
	return out
}

// refuelerSchemasFor returns the refueler-capable bot schemas to try
// launching from tw: first the schemas of refueler bots known (via
// their tracker) to be sitting at tw at the given instant, falling back
// to the global set of refueler schemas compatible with the configured
// refuel payload.
func (s *Scheduler) refuelerSchemasFor(tw *tower.Tower, at time.Time) []model.BotSchema {
	seen := make(map[string]bool)
	var resident []model.BotSchema
	for _, b := range s.world.Bots {
		loc, err := s.world.BotManager.LocationAt(b.ID, at)
		if err != nil || loc != tw.ID() {
			continue
		}
		schema, ok := s.world.Schemas.BotSchema(b.Model)
		if !ok || !schema.IsRefueler() || seen[schema.Model] {
			continue
		}
		seen[schema.Model] = true
		resident = append(resident, schema)
	}
	if len(resident) > 0 {
		return resident
	}

	all := s.world.Schemas.RefuelerSchemas()
	if s.world.RefuelPayloadModel == "" {
		return all
	}
	payloadSchema, ok := s.world.Schemas.PayloadSchema(s.world.RefuelPayloadModel)
	if !ok {
		return all
	}
	var compatible []model.BotSchema
	for _, sc := range all {
		if payloadSchema.IsCompatible(sc.Model) {
			compatible = append(compatible, sc)
		}
	}
	return compatible
}

// hasPathologicalRefuel reports whether recalculate was forced to insert
// a being_recharged waypoint directly ahead of an anticipation buffer /
// giving_recharge pair: the candidate's own approach leg left no room
// to reach the hand-off without running dry, so the refueler would need
// a refuel exactly at the position it came to refuel. A pre-giving
// refuel partway along the approach breaks the loop.
func hasPathologicalRefuel(fp *flightplan.FlightPlan) bool {
	for i := 0; i+2 < fp.Len(); i++ {
		w := fp.At(i)
		if !w.IsAction() || !w.IsBeingRecharged() || !w.Generated() {
			continue
		}
		next := fp.At(i + 1)
		if !next.IsAction() || !next.IsAnticipationBuffer() {
			continue
		}
		if fp.At(i+2).IsGivingRecharge() {
			return true
		}
	}
	return false
}
