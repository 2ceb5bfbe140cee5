package alloc

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/edaniels/golog"
)

// ErrIntervalOnly is returned by IntervalAllocator methods that would
// bypass slot discipline; the inherited free-form availability probe
// is disabled here.
var ErrIntervalOnly = errors.New("alloc: interval allocator only accepts (date, interval) reservations")

// IntervalAllocator discretizes each resource's calendar day into a
// fixed number of equal-width slots and allocates whole slots through
// the underlying ResourceAllocator.
type IntervalAllocator struct {
	logger           golog.Logger
	base             *ResourceAllocator
	intervalDuration time.Duration
	slotsPerDay      int
	location         *time.Location
}

// NewIntervalAllocator builds an allocator with the given fixed slot
// width. loc defaults to time.Local when nil.
func NewIntervalAllocator(intervalDuration time.Duration, loc *time.Location, logger golog.Logger) *IntervalAllocator {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = golog.NewDevelopmentLogger("interval-alloc")
	}
	slotsPerDay := 0
	if intervalDuration > 0 {
		slotsPerDay = int(24 * time.Hour / intervalDuration)
	}
	return &IntervalAllocator{
		logger:           logger,
		base:             NewResourceAllocator(logger),
		intervalDuration: intervalDuration,
		slotsPerDay:      slotsPerDay,
		location:         loc,
	}
}

// SlotsPerDay returns floor(86400 / interval_duration), or 0 when the
// interval duration is not positive.
func (ia *IntervalAllocator) SlotsPerDay() int { return ia.slotsPerDay }

// AddResource registers a resource id.
func (ia *IntervalAllocator) AddResource(id string) { ia.base.AddResource(id) }

func (ia *IntervalAllocator) midnight(date time.Time) time.Time {
	y, m, d := date.In(ia.location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ia.location)
}

// WindowFor returns the half-open instant pair [from,to) for the given
// date's interval-th slot.
func (ia *IntervalAllocator) WindowFor(date time.Time, interval int) (from, to time.Time) {
	from = ia.midnight(date).Add(time.Duration(interval) * ia.intervalDuration)
	return from, from.Add(ia.intervalDuration)
}

// Allocate reserves the interval-th slot of date on resourceID.
func (ia *IntervalAllocator) Allocate(resourceID string, date time.Time, interval int, blob any) (string, error) {
	if interval < 0 || interval >= ia.slotsPerDay {
		return "", fmt.Errorf("alloc: interval %d out of range [0,%d)", interval, ia.slotsPerDay)
	}
	from, to := ia.WindowFor(date, interval)
	return ia.base.Allocate(resourceID, from, to, blob)
}

// Delete removes an allocation by id. Idempotent.
func (ia *IntervalAllocator) Delete(allocationID string) { ia.base.Delete(allocationID) }

// GetByID returns the allocation with the given id, if any.
func (ia *IntervalAllocator) GetByID(allocationID string) (*Allocation, bool) {
	return ia.base.GetByID(allocationID)
}

// GetByTime returns the allocation on resourceID covering instant t.
func (ia *IntervalAllocator) GetByTime(resourceID string, t time.Time) (*Allocation, bool) {
	return ia.base.GetByTime(resourceID, t)
}

// IsAvailable is disabled: the interval allocator only reasons about
// whole slots, never free-form windows.
func (ia *IntervalAllocator) IsAvailable(resourceID string, from, to time.Time) (bool, error) {
	return false, ErrIntervalOnly
}

// AllocateWindow reserves the slot whose half-open window is exactly
// [from,to): from must fall exactly on a slot boundary and to-from must
// equal the configured interval duration. It lets callers that only deal
// in absolute instants (resource.Manager) drive either allocator
// kind through one interface.
func (ia *IntervalAllocator) AllocateWindow(resourceID string, from, to time.Time, blob any) (string, error) {
	if to.Sub(from) != ia.intervalDuration {
		return "", fmt.Errorf("alloc: window [%s,%s) is not one interval wide", from, to)
	}
	elapsed := from.Sub(ia.midnight(from))
	interval := int(elapsed / ia.intervalDuration)
	if time.Duration(interval)*ia.intervalDuration != elapsed {
		return "", fmt.Errorf("alloc: %s does not fall on a slot boundary", from)
	}
	return ia.Allocate(resourceID, from, interval, blob)
}

// slotOccupied reports whether resourceID's interval-th slot on date is
// already allocated.
func (ia *IntervalAllocator) slotOccupied(resourceID string, date time.Time, interval int) bool {
	from, _ := ia.WindowFor(date, interval)
	_, ok := ia.base.GetByTime(resourceID, from)
	return ok
}

// GetAvailableIntervals returns the unused slot indices for resourceID
// on date, in ascending order.
func (ia *IntervalAllocator) GetAvailableIntervals(resourceID string, date time.Time) []int {
	var avail []int
	for i := 0; i < ia.slotsPerDay; i++ {
		if !ia.slotOccupied(resourceID, date, i) {
			avail = append(avail, i)
		}
	}
	return avail
}

// nearestBy sorts the available slots of resourceID on t's calendar date
// by distance from t to the slot boundary given by boundaryOf, breaking
// ties by the lower slot index (earlier in the day).
func (ia *IntervalAllocator) nearestBy(resourceID string, t time.Time, boundaryOf func(from, to time.Time) time.Time) []int {
	avail := ia.GetAvailableIntervals(resourceID, t)
	type scored struct {
		interval int
		dist     time.Duration
	}
	scoredSlots := make([]scored, len(avail))
	for i, interval := range avail {
		from, to := ia.WindowFor(t, interval)
		boundary := boundaryOf(from, to)
		d := boundary.Sub(t)
		if d < 0 {
			d = -d
		}
		scoredSlots[i] = scored{interval: interval, dist: d}
	}
	sort.SliceStable(scoredSlots, func(i, j int) bool {
		if scoredSlots[i].dist != scoredSlots[j].dist {
			return scoredSlots[i].dist < scoredSlots[j].dist
		}
		return scoredSlots[i].interval < scoredSlots[j].interval
	})
	out := make([]int, len(scoredSlots))
	for i, s := range scoredSlots {
		out[i] = s.interval
	}
	return out
}

// NearestIntervalsToWindowStart returns available slot indices on t's
// calendar date, sorted by |windowStart-t| ascending.
func (ia *IntervalAllocator) NearestIntervalsToWindowStart(resourceID string, t time.Time) []int {
	return ia.nearestBy(resourceID, t, func(from, to time.Time) time.Time { return from })
}

// NearestIntervalsToWindowEnd returns available slot indices on t's
// calendar date, sorted by |windowEnd-t| ascending.
func (ia *IntervalAllocator) NearestIntervalsToWindowEnd(resourceID string, t time.Time) []int {
	return ia.nearestBy(resourceID, t, func(from, to time.Time) time.Time { return to })
}
