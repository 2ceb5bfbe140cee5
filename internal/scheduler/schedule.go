package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/elektrokombinacija/aerorefuel/internal/flightplan"
	"github.com/elektrokombinacija/aerorefuel/internal/transform"
)

// Schedule is a fully scheduled flight plan plus the sub-schedules for
// every refuel it depends on, keyed by the being_recharged waypoint id
// each sub-schedule services. An orchestration root (built from partial
// flight plans) has a nil FlightPlan of its own and keys its
// sub-schedules by the completed flight plan's id instead.
type Schedule struct {
	FlightPlan *flightplan.FlightPlan
	Slots      transform.FitSlots
	Refuelers  map[string]*Schedule
}

// FlatPlans returns every flight plan in the schedule tree (the root
// plan plus, transitively, every refueler's), sorted by start time.
func (s *Schedule) FlatPlans() []*flightplan.FlightPlan {
	var out []*flightplan.FlightPlan
	s.collectPlans(&out)
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := out[i].Start()
		b, _ := out[j].Start()
		return a.Before(b)
	})
	return out
}

func (s *Schedule) collectPlans(out *[]*flightplan.FlightPlan) {
	if s == nil {
		return
	}
	if s.FlightPlan != nil {
		*out = append(*out, s.FlightPlan)
	}
	ids := make([]string, 0, len(s.Refuelers))
	for id := range s.Refuelers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		s.Refuelers[id].collectPlans(out)
	}
}

// StartTime returns the earliest start across the tree's flight plans.
func (s *Schedule) StartTime() (time.Time, bool) {
	plans := s.FlatPlans()
	if len(plans) == 0 {
		return time.Time{}, false
	}
	return plans[0].Start()
}

// EndTime returns the latest end across the tree's flight plans.
func (s *Schedule) EndTime() (time.Time, bool) {
	var latest time.Time
	found := false
	for _, p := range s.FlatPlans() {
		if end, ok := p.End(); ok && (!found || end.After(latest)) {
			latest = end
			found = true
		}
	}
	return latest, found
}

// IsPossible reports whether the schedule could still be flown as
// planned at evaluation time now: its earliest start is in the future.
func (s *Schedule) IsPossible(now time.Time) bool {
	start, ok := s.StartTime()
	return ok && start.After(now)
}

// DetermineSchedule is the scheduler's single public entry point: it
// turns a structurally valid, resource-intent-carrying flight plan into
// a fully scheduled Schedule, recursively scheduling every refueler and
// transit ferry it needs. On any failure every allocation made along
// the way, by this call and any of its recursive sub-calls, is rolled
// back before the error is returned.
func (s *Scheduler) DetermineSchedule(plan *flightplan.FlightPlan, anchor Anchor) (*Schedule, error) {
	t := newTxn()
	sched, err := s.determineSchedule(plan, anchor, t, 0)
	if err != nil {
		t.rollback()
		return nil, err
	}
	return sched, nil
}

func (s *Scheduler) determineSchedule(plan *flightplan.FlightPlan, anchor Anchor, t *txn, depth int) (*Schedule, error) {
	if depth > s.world.MaxRecursionDepth {
		return nil, &ScheduleError{FlightPlanID: plan.ID(), Reason: fmt.Sprintf("exceeded max recursion depth %d", s.world.MaxRecursionDepth)}
	}

	launchTower, ok := s.world.Towers[plan.StartingTowerID()]
	if !ok {
		return nil, &ScheduleError{FlightPlanID: plan.ID(), Reason: fmt.Sprintf("unknown starting tower %q", plan.StartingTowerID())}
	}
	landingTower, ok := s.world.Towers[plan.FinishingTowerID()]
	if !ok {
		return nil, &ScheduleError{FlightPlanID: plan.ID(), Reason: fmt.Sprintf("unknown finishing tower %q", plan.FinishingTowerID())}
	}

	meta := plan.Meta()
	botModel := meta.BotModel
	if meta.BotID != "" {
		if resolved, ok := s.botModelByID(meta.BotID); ok {
			botModel = resolved
		}
	}
	schema, ok := s.world.Schemas.BotSchema(botModel)
	if !ok {
		return nil, &ScheduleError{FlightPlanID: plan.ID(), Reason: fmt.Sprintf("unknown bot model %q", botModel)}
	}

	if err := plan.Validate(launchTower.Position(), landingTower.Position()); err != nil {
		return nil, &ScheduleError{FlightPlanID: plan.ID(), Reason: "validate", Cause: err}
	}
	if err := transform.Recalculate(plan, schema, s.world.Options); err != nil {
		return nil, &ScheduleError{FlightPlanID: plan.ID(), Reason: "recalculate", Cause: err}
	}
	if err := s.applyAnchor(plan, anchor, schema.Speed); err != nil {
		return nil, &ScheduleError{FlightPlanID: plan.ID(), Reason: "anchor", Cause: err}
	}
	if err := transform.AddPositionsToActionWaypoints(plan, launchTower.Position(), landingTower.Position()); err != nil {
		return nil, &ScheduleError{FlightPlanID: plan.ID(), Reason: "backfill positions", Cause: err}
	}
	plan.Snapshot()

	slots, err := transform.FitFlightPlanIntoTowerAllocations(plan, schema, s.world.Options, launchTower, landingTower)
	if err != nil {
		return nil, &ScheduleError{FlightPlanID: plan.ID(), Reason: "fit to tower slots", Cause: err}
	}

	start, _ := plan.Start()
	end, _ := plan.End()

	launchAllocID, err := launchTower.AllocateLaunch(plan.ID(), slots.LaunchDate, slots.LaunchInterval)
	if err != nil {
		return nil, &ScheduleError{FlightPlanID: plan.ID(), Reason: "allocate launch slot", Cause: err}
	}
	t.record(func() { launchTower.DeallocateLaunch(launchAllocID) })

	landingAllocID, err := landingTower.AllocateLanding(plan.ID(), slots.LandingDate, slots.LandingInterval)
	if err != nil {
		return nil, &ScheduleError{FlightPlanID: plan.ID(), Reason: "allocate landing slot", Cause: err}
	}
	t.record(func() { landingTower.DeallocateLanding(landingAllocID) })

	if meta.HasBot() {
		if _, err := s.bindResource(meta.BotID, meta.BotModel, botInstanceRefs(s.world.Bots), s.world.BotManager,
			plan.StartingTowerID(), plan.FinishingTowerID(), start, end, plan.ID(), botModel, t, depth, true); err != nil {
			return nil, &ScheduleError{FlightPlanID: plan.ID(), Reason: "bind bot", Cause: err}
		}
	}
	if meta.HasPayload() {
		if _, err := s.bindResource(meta.PayloadID, meta.PayloadModel, payloadInstanceRefs(s.world.Payloads), s.world.PayloadManager,
			plan.StartingTowerID(), plan.FinishingTowerID(), start, end, plan.ID(), botModel, t, depth, false); err != nil {
			return nil, &ScheduleError{FlightPlanID: plan.ID(), Reason: "bind payload", Cause: err}
		}
	}

	refuelers := make(map[string]*Schedule)
	for i := 0; i < plan.Len(); i++ {
		w := plan.At(i)
		if !w.IsAction() || !w.IsBeingRecharged() {
			continue
		}
		sub, err := s.createRefuelFlightPlans(plan, w, t, depth)
		if err != nil {
			return nil, &ScheduleError{FlightPlanID: plan.ID(), Reason: fmt.Sprintf("schedule refueler for waypoint %s", w.ID()), Cause: err}
		}
		refuelers[w.ID()] = sub
	}

	return &Schedule{FlightPlan: plan, Slots: slots, Refuelers: refuelers}, nil
}

func (s *Scheduler) applyAnchor(plan *flightplan.FlightPlan, anchor Anchor, speed float64) error {
	switch anchor.Mode {
	case AnchorModeLaunch:
		return transform.AnchorFromLaunch(plan, anchor.Time, speed)
	case AnchorModeLanding:
		return transform.AnchorFromLanding(plan, anchor.Time, speed)
	case AnchorModeWaypointETA:
		return transform.AnchorFromWaypointETA(plan, anchor.WaypointID, anchor.Time, speed)
	default:
		return fmt.Errorf("scheduler: unknown anchor mode %d", anchor.Mode)
	}
}

func (s *Scheduler) botModelByID(id string) (string, bool) {
	for _, b := range s.world.Bots {
		if b.ID == id {
			return b.Model, true
		}
	}
	return "", false
}

