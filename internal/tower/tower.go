// Package tower models a fixed ground station: its launch/landing
// interval allocators and continuous payload/bot storage bays.
package tower

import (
	"fmt"
	"sort"
	"time"

	"github.com/edaniels/golog"

	"github.com/elektrokombinacija/aerorefuel/internal/alloc"
	"github.com/elektrokombinacija/aerorefuel/internal/geo"
)

// Config is the static configuration of a tower.
type Config struct {
	ID                string
	Position          geo.Position
	LaunchTime        time.Duration // slot width for one launch operation
	LandingTime       time.Duration // slot width for one landing operation
	ParallelLaunchers int
	ParallelLanders   int
	PayloadCapacity   int
	BotCapacity       int
}

// Tower is a fixed ground station with launch/landing slots and storage
// bays. Equality is by id.
type Tower struct {
	cfg Config

	launch  *alloc.IntervalAllocator
	landing *alloc.IntervalAllocator

	payloadBay *alloc.ResourceAllocator
	botBay     *alloc.ResourceAllocator

	logger golog.Logger
}

// New builds a tower and its four allocators, registering one resource
// id per parallel launcher/lander queue and per bay slot.
func New(cfg Config, loc *time.Location, logger golog.Logger) *Tower {
	if logger == nil {
		logger = golog.NewDevelopmentLogger("tower")
	}
	tw := &Tower{
		cfg:        cfg,
		launch:     alloc.NewIntervalAllocator(cfg.LaunchTime, loc, logger),
		landing:    alloc.NewIntervalAllocator(cfg.LandingTime, loc, logger),
		payloadBay: alloc.NewResourceAllocator(logger),
		botBay:     alloc.NewResourceAllocator(logger),
		logger:     logger,
	}
	for i := 0; i < cfg.ParallelLaunchers; i++ {
		tw.launch.AddResource(tw.launcherResourceID(i))
	}
	for i := 0; i < cfg.ParallelLanders; i++ {
		tw.landing.AddResource(tw.landerResourceID(i))
	}
	for i := 0; i < cfg.PayloadCapacity; i++ {
		tw.payloadBay.AddResource(tw.payloadBayResourceID(i))
	}
	for i := 0; i < cfg.BotCapacity; i++ {
		tw.botBay.AddResource(tw.botBayResourceID(i))
	}
	return tw
}

func (tw *Tower) launcherResourceID(i int) string { return fmt.Sprintf("%s:launcher:%d", tw.cfg.ID, i) }
func (tw *Tower) landerResourceID(i int) string   { return fmt.Sprintf("%s:lander:%d", tw.cfg.ID, i) }

func (tw *Tower) payloadBayResourceID(i int) string {
	return fmt.Sprintf("%s:payload-bay:%d", tw.cfg.ID, i)
}

func (tw *Tower) botBayResourceID(i int) string { return fmt.Sprintf("%s:bot-bay:%d", tw.cfg.ID, i) }

// ID returns the tower's stable identity.
func (tw *Tower) ID() string { return tw.cfg.ID }

// Position returns the tower's fixed location.
func (tw *Tower) Position() geo.Position { return tw.cfg.Position }

// Equal compares towers by id.
func (tw *Tower) Equal(o *Tower) bool {
	if tw == nil || o == nil {
		return tw == o
	}
	return tw.cfg.ID == o.cfg.ID
}

// Config returns the tower's static configuration.
func (tw *Tower) Config() Config { return tw.cfg }

// AllocateLaunch reserves the given date/interval on the first launcher
// queue that has room, trying each in turn; fails with an
// *alloc.AllocationError only once every launcher has been tried.
func (tw *Tower) AllocateLaunch(flightPlanID string, date time.Time, interval int) (string, error) {
	var lastErr error
	for i := 0; i < tw.cfg.ParallelLaunchers; i++ {
		id, err := tw.launch.Allocate(tw.launcherResourceID(i), date, interval, flightPlanID)
		if err == nil {
			return id, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("tower %s: no launchers configured", tw.cfg.ID)
	}
	return "", lastErr
}

// AllocateLanding is the landing-side analogue of AllocateLaunch.
func (tw *Tower) AllocateLanding(flightPlanID string, date time.Time, interval int) (string, error) {
	var lastErr error
	for i := 0; i < tw.cfg.ParallelLanders; i++ {
		id, err := tw.landing.Allocate(tw.landerResourceID(i), date, interval, flightPlanID)
		if err == nil {
			return id, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("tower %s: no landers configured", tw.cfg.ID)
	}
	return "", lastErr
}

// DeallocateLaunch releases a launch allocation. Idempotent.
func (tw *Tower) DeallocateLaunch(allocationID string) { tw.launch.Delete(allocationID) }

// DeallocateLanding releases a landing allocation. Idempotent.
func (tw *Tower) DeallocateLanding(allocationID string) { tw.landing.Delete(allocationID) }

// AllocatePayloadBay reserves a bay slot for [from,to) on the first bay
// that has room.
func (tw *Tower) AllocatePayloadBay(from, to time.Time, blob any) (string, error) {
	return allocateFirstAvailable(tw.payloadBay, tw.cfg.PayloadCapacity, tw.payloadBayResourceID, from, to, blob)
}

// AllocateBotBay reserves a bay slot for [from,to) on the first bay that
// has room.
func (tw *Tower) AllocateBotBay(from, to time.Time, blob any) (string, error) {
	return allocateFirstAvailable(tw.botBay, tw.cfg.BotCapacity, tw.botBayResourceID, from, to, blob)
}

// DeallocatePayloadBay releases a payload bay allocation. Idempotent.
func (tw *Tower) DeallocatePayloadBay(allocationID string) { tw.payloadBay.Delete(allocationID) }

// DeallocateBotBay releases a bot bay allocation. Idempotent.
func (tw *Tower) DeallocateBotBay(allocationID string) { tw.botBay.Delete(allocationID) }

func allocateFirstAvailable(ra *alloc.ResourceAllocator, capacity int, resourceID func(int) string, from, to time.Time, blob any) (string, error) {
	var lastErr error
	for i := 0; i < capacity; i++ {
		id, err := ra.Allocate(resourceID(i), from, to, blob)
		if err == nil {
			return id, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no bay slots configured")
	}
	return "", lastErr
}

// intervalCandidate pairs a slot index with its distance to the query
// instant, for cross-launcher/cross-lander merging.
type intervalCandidate struct {
	interval int
	dist     time.Duration
}

func mergeNearest(ia *alloc.IntervalAllocator, resourceIDs []string, t time.Time, useEnd bool) []int {
	seen := make(map[int]bool)
	var candidates []intervalCandidate
	for _, rid := range resourceIDs {
		var nearest []int
		if useEnd {
			nearest = ia.NearestIntervalsToWindowEnd(rid, t)
		} else {
			nearest = ia.NearestIntervalsToWindowStart(rid, t)
		}
		for _, interval := range nearest {
			if seen[interval] {
				continue
			}
			seen[interval] = true
			from, to := ia.WindowFor(t, interval)
			boundary := from
			if useEnd {
				boundary = to
			}
			d := boundary.Sub(t)
			if d < 0 {
				d = -d
			}
			candidates = append(candidates, intervalCandidate{interval: interval, dist: d})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].interval < candidates[j].interval
	})
	out := make([]int, len(candidates))
	for i, c := range candidates {
		out[i] = c.interval
	}
	return out
}

// NearestLaunchIntervalsToWindowEnd forwards to the launch allocator,
// merging across every parallel launcher queue: a slot is "available"
// for this purpose if at least one launcher queue is free at it.
func (tw *Tower) NearestLaunchIntervalsToWindowEnd(t time.Time) []int {
	ids := make([]string, tw.cfg.ParallelLaunchers)
	for i := range ids {
		ids[i] = tw.launcherResourceID(i)
	}
	return mergeNearest(tw.launch, ids, t, true)
}

// NearestLandingIntervalsToWindowStart forwards to the landing
// allocator, merged across every parallel lander queue.
func (tw *Tower) NearestLandingIntervalsToWindowStart(t time.Time) []int {
	ids := make([]string, tw.cfg.ParallelLanders)
	for i := range ids {
		ids[i] = tw.landerResourceID(i)
	}
	return mergeNearest(tw.landing, ids, t, false)
}

// NearestAvailableLaunchEndingBy finds the nearest available launch slot
// whose window end is at or before t, returning the window's end
// instant and the (date, interval) to pass to AllocateLaunch.
func (tw *Tower) NearestAvailableLaunchEndingBy(t time.Time) (windowEnd time.Time, date time.Time, interval int, ok bool) {
	for _, iv := range tw.NearestLaunchIntervalsToWindowEnd(t) {
		_, end := tw.launch.WindowFor(t, iv)
		if !end.After(t) {
			return end, t, iv, true
		}
	}
	return time.Time{}, time.Time{}, 0, false
}

// NearestAvailableLandingStartingAfter finds the nearest available
// landing slot whose window start is at or after t.
func (tw *Tower) NearestAvailableLandingStartingAfter(t time.Time) (windowStart time.Time, date time.Time, interval int, ok bool) {
	for _, iv := range tw.NearestLandingIntervalsToWindowStart(t) {
		start, _ := tw.landing.WindowFor(t, iv)
		if !start.Before(t) {
			return start, t, iv, true
		}
	}
	return time.Time{}, time.Time{}, 0, false
}
