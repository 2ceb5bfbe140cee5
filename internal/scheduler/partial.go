package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/elektrokombinacija/aerorefuel/internal/flightplan"
	"github.com/elektrokombinacija/aerorefuel/internal/geo"
	"github.com/elektrokombinacija/aerorefuel/internal/tower"
	"github.com/elektrokombinacija/aerorefuel/internal/waypoint"
)

// PartialPlan is a flight plan that names no starting or finishing
// tower: just a bot model and a waypoint sequence. The scheduler picks
// towers for it before it can be scheduled.
type PartialPlan struct {
	ID        string
	BotModel  string
	Waypoints []*waypoint.Waypoint
}

// DetermineScheduleForPartialFlightPlans completes each partial plan by
// pairing it with its nearest starting and finishing towers, schedules
// each completion anchored so its first original waypoint starts at
// criticalTime, and merges the results into one root Schedule with no
// top-level flight plan of its own.
func (s *Scheduler) DetermineScheduleForPartialFlightPlans(partials []PartialPlan, criticalTime time.Time) (*Schedule, error) {
	seen := make(map[string]bool, len(partials))
	for _, p := range partials {
		if seen[p.ID] {
			return nil, fmt.Errorf("scheduler: partial flight plan ids aren't unique (duplicate %q)", p.ID)
		}
		seen[p.ID] = true
	}

	t := newTxn()
	root := &Schedule{Refuelers: make(map[string]*Schedule, len(partials))}
	for _, partial := range partials {
		sub, planID, err := s.scheduleBestCompletion(partial, criticalTime, t)
		if err != nil {
			t.rollback()
			return nil, err
		}
		root.Refuelers[planID] = sub
	}
	return root, nil
}

// scheduleBestCompletion walks the partial's candidate tower-pair
// generator (nearest-start x nearest-finish, advancing one axis at a
// time) and schedules each completion in its own sub-transaction until
// one succeeds.
func (s *Scheduler) scheduleBestCompletion(partial PartialPlan, criticalTime time.Time, t *txn) (*Schedule, string, error) {
	gen, err := s.newPartialPlanGenerator(partial)
	if err != nil {
		return nil, "", err
	}

	var lastErr error
	for {
		startTower, finishTower, ok := gen.next()
		if !ok {
			break
		}
		plan := gen.complete(startTower, finishTower)

		// waypoints[0] is the connecting leg buildPartialCompletion just
		// prepended; waypoints[1] is the partial's own first waypoint,
		// the one the critical time anchors.
		anchorWaypointID := plan.At(1).ID()

		local := newTxn()
		sub, err := s.determineSchedule(plan, WaypointETAAnchor(anchorWaypointID, criticalTime), local, 0)
		if err != nil {
			local.rollback()
			lastErr = err
			continue
		}
		t.merge(local)
		return sub, plan.ID(), nil
	}
	return nil, "", fmt.Errorf("scheduler: no start/finish tower pairing could complete partial flight plan %s: %w", partial.ID, lastErr)
}

// partialPlanGenerator yields candidate (start tower, finish tower)
// pairs for one partial flight plan, nearest-first on each axis, by
// advancing a cursor (startIdx, finishIdx) one axis at a time. It
// visits every pair at most once, in non-decreasing order of
// startIdx+finishIdx, which tries the all-nearest pairing first and
// only reaches into farther towers once nearer ones are exhausted.
type partialPlanGenerator struct {
	partial       PartialPlan
	startPos      geo.Position
	finishPos     geo.Position
	startTowers   []*tower.Tower
	finishTowers  []*tower.Tower
	visited       map[[2]int]bool
	frontierDepth int
}

func (s *Scheduler) newPartialPlanGenerator(partial PartialPlan) (*partialPlanGenerator, error) {
	if len(partial.Waypoints) == 0 {
		return nil, fmt.Errorf("scheduler: partial flight plan %s has no waypoints", partial.ID)
	}
	first := partial.Waypoints[0]
	last := partial.Waypoints[len(partial.Waypoints)-1]

	startPos, err := connectingPosition(first, false)
	if err != nil {
		return nil, fmt.Errorf("scheduler: partial flight plan %s: %w", partial.ID, err)
	}
	finishPos, err := connectingPosition(last, true)
	if err != nil {
		return nil, fmt.Errorf("scheduler: partial flight plan %s: %w", partial.ID, err)
	}

	startTowers := s.nearestTowers(startPos)
	finishTowers := s.nearestTowers(finishPos)
	if len(startTowers) == 0 || len(finishTowers) == 0 {
		return nil, fmt.Errorf("scheduler: no towers registered to complete partial flight plan %s", partial.ID)
	}

	return &partialPlanGenerator{
		partial:      partial,
		startPos:     startPos,
		finishPos:    finishPos,
		startTowers:  startTowers,
		finishTowers: finishTowers,
		visited:      make(map[[2]int]bool),
	}, nil
}

// next advances the cursor to the next unvisited pair on the current
// diagonal (startIdx+finishIdx == frontierDepth), moving to the next
// diagonal out once the current one is exhausted.
func (g *partialPlanGenerator) next() (*tower.Tower, *tower.Tower, bool) {
	maxDepth := len(g.startTowers) + len(g.finishTowers) - 2
	for g.frontierDepth <= maxDepth {
		for i := 0; i <= g.frontierDepth; i++ {
			j := g.frontierDepth - i
			if i >= len(g.startTowers) || j >= len(g.finishTowers) {
				continue
			}
			key := [2]int{i, j}
			if g.visited[key] {
				continue
			}
			g.visited[key] = true
			return g.startTowers[i], g.finishTowers[j], true
		}
		g.frontierDepth++
	}
	return nil, nil, false
}

func (g *partialPlanGenerator) complete(startTower, finishTower *tower.Tower) *flightplan.FlightPlan {
	return buildPartialCompletion(g.partial, startTower, finishTower, g.startPos, g.finishPos)
}

// buildPartialCompletion connects startTower and finishTower to the
// partial's own waypoints with synthetic legs.
func buildPartialCompletion(partial PartialPlan, startTower, finishTower *tower.Tower, startPos, finishPos geo.Position) *flightplan.FlightPlan {
	waypoints := make([]*waypoint.Waypoint, 0, len(partial.Waypoints)+2)
	firstLeg := waypoint.NewLeg(startTower.Position(), startPos)
	firstLeg.SetGenerated(true)
	waypoints = append(waypoints, firstLeg)
	for _, w := range partial.Waypoints {
		waypoints = append(waypoints, w.Clone())
	}
	lastLeg := waypoint.NewLeg(finishPos, finishTower.Position())
	lastLeg.SetGenerated(true)
	waypoints = append(waypoints, lastLeg)

	return flightplan.New(partial.ID, startTower.ID(), finishTower.ID(), waypoints, flightplan.Meta{BotModel: partial.BotModel})
}

// connectingPosition returns the position a synthetic connecting leg
// should touch: a leg waypoint's origin when completing the start, its
// destination when completing the finish; an action waypoint's own
// back-filled or caller-supplied position either way.
func connectingPosition(w *waypoint.Waypoint, useDestination bool) (geo.Position, error) {
	if w.IsAction() {
		pos, ok := w.Position()
		if !ok {
			return geo.Position{}, fmt.Errorf("boundary action waypoint %s has no position", w.ID())
		}
		return pos, nil
	}
	if useDestination {
		return w.To(), nil
	}
	return w.From(), nil
}

// nearestTowers returns every known tower sorted by distance to pos,
// nearest first.
func (s *Scheduler) nearestTowers(pos geo.Position) []*tower.Tower {
	towers := make([]*tower.Tower, 0, len(s.world.Towers))
	for _, tw := range s.world.Towers {
		towers = append(towers, tw)
	}
	sort.SliceStable(towers, func(i, j int) bool {
		di := geo.Distance(towers[i].Position(), pos)
		dj := geo.Distance(towers[j].Position(), pos)
		if di != dj {
			return di < dj
		}
		return towers[i].ID() < towers[j].ID()
	})
	return towers
}
