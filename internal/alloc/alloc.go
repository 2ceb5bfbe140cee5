// Package alloc provides per-resource interval reservation with overlap
// detection, and the day/slot discretization built atop it.
package alloc

import (
	"fmt"
	"sort"
	"time"

	"github.com/edaniels/golog"
	"github.com/google/uuid"
)

// AllocationError reports that a requested reservation overlaps an
// existing one on the same resource.
type AllocationError struct {
	ResourceID string
	From, To   time.Time
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("alloc: resource %q has no room for [%s, %s)", e.ResourceID, e.From, e.To)
}

// Allocation is a single reservation: a half-open interval on a resource,
// plus a free-form payload the caller attaches (e.g. the flight plan id
// and from/to tower).
type Allocation struct {
	ID         string
	ResourceID string
	From, To   time.Time
	Blob       any
}

// overlaps reports whether [a.From,a.To) and [from,to) intersect under
// the half-open rule: f<t' && f'<t.
func (a *Allocation) overlaps(from, to time.Time) bool {
	return a.From.Before(to) && from.Before(a.To)
}

// ResourceAllocator reserves half-open time intervals per resource,
// rejecting any reservation that overlaps an existing one on the same
// resource. It is not safe for concurrent use; the whole planner is
// single-threaded cooperative.
type ResourceAllocator struct {
	logger    golog.Logger
	resources map[string][]*Allocation // kept sorted by From ascending
	byID      map[string]*Allocation
}

// NewResourceAllocator builds an empty allocator. A nil logger gets a
// development logger.
func NewResourceAllocator(logger golog.Logger) *ResourceAllocator {
	if logger == nil {
		logger = golog.NewDevelopmentLogger("alloc")
	}
	return &ResourceAllocator{
		logger:    logger,
		resources: make(map[string][]*Allocation),
		byID:      make(map[string]*Allocation),
	}
}

// AddResource registers a resource id with an empty allocation list. It
// is idempotent.
func (a *ResourceAllocator) AddResource(id string) {
	if _, ok := a.resources[id]; !ok {
		a.resources[id] = nil
	}
}

// Allocate reserves [from,to) on resourceID, failing with
// *AllocationError if it overlaps any existing allocation on that
// resource. The overlap scan walks the resource's allocation list
// recent-first (from the latest start time backwards), so the common
// case of scheduling near "now" exits early.
func (a *ResourceAllocator) Allocate(resourceID string, from, to time.Time, blob any) (string, error) {
	list := a.resources[resourceID]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].overlaps(from, to) {
			return "", &AllocationError{ResourceID: resourceID, From: from, To: to}
		}
	}

	alloc := &Allocation{
		ID:         uuid.NewString(),
		ResourceID: resourceID,
		From:       from,
		To:         to,
		Blob:       blob,
	}
	idx := sort.Search(len(list), func(i int) bool { return list[i].From.After(from) })
	list = append(list, nil)
	copy(list[idx+1:], list[idx:])
	list[idx] = alloc
	a.resources[resourceID] = list
	a.byID[alloc.ID] = alloc

	a.logger.Debugw("allocated interval", "resource", resourceID, "from", from, "to", to, "allocation", alloc.ID)
	return alloc.ID, nil
}

// Delete removes an allocation by id. It is idempotent: deleting an
// unknown or already-deleted id is a no-op.
func (a *ResourceAllocator) Delete(allocationID string) {
	alloc, ok := a.byID[allocationID]
	if !ok {
		return
	}
	delete(a.byID, allocationID)

	list := a.resources[alloc.ResourceID]
	for i, other := range list {
		if other.ID == allocationID {
			a.resources[alloc.ResourceID] = append(list[:i], list[i+1:]...)
			break
		}
	}
}

// GetByTime returns the allocation on resourceID covering instant t, if
// any.
func (a *ResourceAllocator) GetByTime(resourceID string, t time.Time) (*Allocation, bool) {
	for _, alloc := range a.resources[resourceID] {
		if !t.Before(alloc.From) && t.Before(alloc.To) {
			return alloc, true
		}
	}
	return nil, false
}

// GetByID returns the allocation with the given id, if any.
func (a *ResourceAllocator) GetByID(allocationID string) (*Allocation, bool) {
	alloc, ok := a.byID[allocationID]
	return alloc, ok
}

// IsAvailable probes whether [from,to) could be allocated on resourceID,
// via a speculative allocate-then-delete.
func (a *ResourceAllocator) IsAvailable(resourceID string, from, to time.Time) bool {
	id, err := a.Allocate(resourceID, from, to, nil)
	if err != nil {
		return false
	}
	a.Delete(id)
	return true
}
