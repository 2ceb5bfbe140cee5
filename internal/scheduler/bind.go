package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/elektrokombinacija/aerorefuel/internal/flightplan"
	"github.com/elektrokombinacija/aerorefuel/internal/geo"
	"github.com/elektrokombinacija/aerorefuel/internal/model"
	"github.com/elektrokombinacija/aerorefuel/internal/resource"
	"github.com/elektrokombinacija/aerorefuel/internal/tower"
)

// instanceRef is a (id, model) pair, the common shape of model.Bot and
// model.Payload used to share the binding search between the two.
type instanceRef struct{ ID, Model string }

// bindResource resolves a flight plan's bot or payload meta (an explicit
// instance id, or a model name to pick an instance of) to a concrete
// resource allocation spanning [start,end), ferrying the chosen instance
// to the launch tower first via a transit schedule if it isn't already
// there. isBot selects which tower bay allocator backs the destination
// bay reservation.
func (s *Scheduler) bindResource(
	id, model string,
	instances []instanceRef,
	mgr *resource.Manager,
	launchTowerID, landingTowerID string,
	start, end time.Time,
	flightPlanID, botModelForTransit string,
	t *txn, depth int,
	isBot bool,
) (string, error) {
	if id != "" {
		boundID, err := s.tryBindInstance(id, mgr, launchTowerID, landingTowerID, start, end, flightPlanID, botModelForTransit, t, depth, isBot)
		if err != nil {
			return "", fmt.Errorf("scheduler: resource %s: %w", id, err)
		}
		return boundID, nil
	}

	candidates := s.rankCandidates(model, instances, mgr, launchTowerID, start)
	var lastErr error
	for _, c := range candidates {
		boundID, err := s.tryBindInstance(c.ID, mgr, launchTowerID, landingTowerID, start, end, flightPlanID, botModelForTransit, t, depth, isBot)
		if err != nil {
			lastErr = err
			continue
		}
		return boundID, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no instance of model %q registered", model)
	}
	return "", fmt.Errorf("scheduler: no available instance of model %q: %w", model, lastErr)
}

// tryBindInstance attempts to bind exactly one candidate resource id,
// transiting it to the launch tower first if needed. It rolls back its
// own partial work on failure and only folds its allocations into the
// caller's txn on success, so a failed candidate never leaks state into
// the next one tried.
func (s *Scheduler) tryBindInstance(
	id string,
	mgr *resource.Manager,
	launchTowerID, landingTowerID string,
	start, end time.Time,
	flightPlanID, botModelForTransit string,
	t *txn, depth int,
	isBot bool,
) (string, error) {
	if !mgr.IsAllocationAvailable(id, start, end) {
		return "", fmt.Errorf("not available for [%s,%s)", start, end)
	}
	loc, err := mgr.LocationAt(id, start)
	if err != nil {
		return "", err
	}

	local := newTxn()
	if loc != launchTowerID {
		// The ferry carries the resource itself: a bot flies its own
		// transit, a payload rides a carrier bot of the parent plan's
		// model. Either way the transit's binding advances the
		// resource's tracker to the launch tower.
		transitMeta := flightplan.Meta{BotModel: botModelForTransit, PayloadID: id}
		if isBot {
			transitMeta = flightplan.Meta{BotID: id}
		}
		if _, err := s.createTransitSchedule(loc, launchTowerID, start, transitMeta, local, depth); err != nil {
			local.rollback()
			return "", fmt.Errorf("transiting from %s: %w", loc, err)
		}
	}

	allocID, err := mgr.AllocateResource(id, start, end, launchTowerID, landingTowerID, flightPlanID)
	if err != nil {
		local.rollback()
		return "", err
	}
	local.record(func() { mgr.DeallocateResource(allocID) })

	if err := s.swapBayHold(id, launchTowerID, landingTowerID, end, local, isBot); err != nil {
		local.rollback()
		return "", err
	}

	t.merge(local)
	return id, nil
}

// swapBayHold releases the bay allocation the resource held at its
// origin tower (it has just departed) and reserves a new one at its
// destination tower for the indefinite stretch starting when it lands,
// recording rollbacks that restore the prior hold exactly.
func (s *Scheduler) swapBayHold(resourceID, launchTowerID, landingTowerID string, landedAt time.Time, t *txn, isBot bool) error {
	holds := s.world.PayloadBayHolds
	allocate := (*tower.Tower).AllocatePayloadBay
	deallocate := (*tower.Tower).DeallocatePayloadBay
	if isBot {
		holds = s.world.BotBayHolds
		allocate = (*tower.Tower).AllocateBotBay
		deallocate = (*tower.Tower).DeallocateBotBay
	}

	if prior, ok := holds[resourceID]; ok && prior.TowerID == launchTowerID {
		if tw, ok := s.world.Towers[launchTowerID]; ok {
			deallocate(tw, prior.AllocationID)
			t.record(func() {
				if restoredID, err := allocate(tw, prior.From, prior.To, resourceID); err == nil {
					holds[resourceID] = BayHold{TowerID: prior.TowerID, AllocationID: restoredID, From: prior.From, To: prior.To}
				}
			})
		}
		delete(holds, resourceID)
	}

	landingTower, ok := s.world.Towers[landingTowerID]
	if !ok {
		return fmt.Errorf("unknown landing tower %q", landingTowerID)
	}
	to := landedAt.Add(bayHoldHorizon)
	allocID, err := allocate(landingTower, landedAt, to, resourceID)
	if err != nil {
		return fmt.Errorf("reserve destination bay: %w", err)
	}
	holds[resourceID] = BayHold{TowerID: landingTowerID, AllocationID: allocID, From: landedAt, To: to}
	t.record(func() {
		deallocate(landingTower, allocID)
		delete(holds, resourceID)
	})
	return nil
}

type rankedCandidate struct {
	instanceRef
	atLaunchTower bool
	distance      float64
}

// rankCandidates orders a model's instances so ones already sitting at
// the launch tower are tried first, then ones nearest to it; instances
// whose location is ambiguous at start (mid-flight) are dropped.
func (s *Scheduler) rankCandidates(model string, instances []instanceRef, mgr *resource.Manager, launchTowerID string, start time.Time) []rankedCandidate {
	launchTower, ok := s.world.Towers[launchTowerID]
	if !ok {
		return nil
	}
	var out []rankedCandidate
	for _, inst := range instances {
		if inst.Model != model {
			continue
		}
		loc, err := mgr.LocationAt(inst.ID, start)
		if err != nil {
			continue
		}
		c := rankedCandidate{instanceRef: inst, atLaunchTower: loc == launchTowerID}
		if !c.atLaunchTower {
			if tw, ok := s.world.Towers[loc]; ok {
				c.distance = geo.Distance(tw.Position(), launchTower.Position())
			}
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].atLaunchTower != out[j].atLaunchTower {
			return out[i].atLaunchTower
		}
		return out[i].distance < out[j].distance
	})
	return out
}

func botInstanceRefs(bots []model.Bot) []instanceRef {
	out := make([]instanceRef, len(bots))
	for i, b := range bots {
		out[i] = instanceRef{ID: b.ID, Model: b.Model}
	}
	return out
}

func payloadInstanceRefs(payloads []model.Payload) []instanceRef {
	out := make([]instanceRef, len(payloads))
	for i, p := range payloads {
		out[i] = instanceRef{ID: p.ID, Model: p.Model}
	}
	return out
}
