package resource

import (
	"time"

	"github.com/edaniels/golog"
	"github.com/google/uuid"

	"github.com/elektrokombinacija/aerorefuel/internal/alloc"
)

// reservationAllocator is the common shape of alloc.ResourceAllocator and
// the alloc.IntervalAllocator.AllocateWindow adapter, letting Manager
// wrap either allocator kind.
type reservationAllocator interface {
	Allocate(resourceID string, from, to time.Time, blob any) (string, error)
	Delete(allocationID string)
	GetByID(allocationID string) (*alloc.Allocation, bool)
	GetByTime(resourceID string, t time.Time) (*alloc.Allocation, bool)
}

// intervalWindowAdapter adapts an *alloc.IntervalAllocator's
// AllocateWindow method to the reservationAllocator shape.
type intervalWindowAdapter struct{ ia *alloc.IntervalAllocator }

func (w intervalWindowAdapter) Allocate(resourceID string, from, to time.Time, blob any) (string, error) {
	return w.ia.AllocateWindow(resourceID, from, to, blob)
}
func (w intervalWindowAdapter) Delete(allocationID string) { w.ia.Delete(allocationID) }
func (w intervalWindowAdapter) GetByID(allocationID string) (*alloc.Allocation, bool) {
	return w.ia.GetByID(allocationID)
}
func (w intervalWindowAdapter) GetByTime(resourceID string, t time.Time) (*alloc.Allocation, bool) {
	return w.ia.GetByTime(resourceID, t)
}

// Blob is the payload recorded on every allocation a ResourceManager
// makes, alongside the matching Tracker record.
type Blob struct {
	TrackerID           string
	FromTower, ToTower  string
	RelatedFlightPlanID string
}

// Manager wraps an allocator (continuous or interval-windowed) and a
// per-resource Tracker map. AllocateResource appends a tracker record
// alongside the underlying allocation, sharing one id between the two so
// deallocation keeps them consistent.
type Manager struct {
	logger    golog.Logger
	allocator reservationAllocator
	trackers  map[string]*Tracker
}

// NewManager wraps a continuous resource allocator.
func NewManager(ra *alloc.ResourceAllocator, logger golog.Logger) *Manager {
	if logger == nil {
		logger = golog.NewDevelopmentLogger("resource-manager")
	}
	return &Manager{logger: logger, allocator: ra, trackers: make(map[string]*Tracker)}
}

// NewIntervalManager wraps an interval allocator via AllocateWindow.
func NewIntervalManager(ia *alloc.IntervalAllocator, logger golog.Logger) *Manager {
	if logger == nil {
		logger = golog.NewDevelopmentLogger("resource-manager")
	}
	return &Manager{logger: logger, allocator: intervalWindowAdapter{ia}, trackers: make(map[string]*Tracker)}
}

// Track registers a resource's tracker, anchored at its starting tower.
// It must be called once before the resource's first AllocateResource
// call.
func (m *Manager) Track(resourceID, initialTowerID string) *Tracker {
	t := NewTracker(resourceID, initialTowerID)
	m.trackers[resourceID] = t
	return t
}

// Tracker returns the tracker for resourceID, if tracked.
func (m *Manager) Tracker(resourceID string) (*Tracker, bool) {
	t, ok := m.trackers[resourceID]
	return t, ok
}

// AllocateResource reserves [from,to) on resourceID and appends a
// matching tracker record recording the from/to tower and the owning
// flight plan. Both the allocation and the tracker record share a
// tracker id so DeallocateResource can undo both.
func (m *Manager) AllocateResource(resourceID string, from, to time.Time, fromTower, toTower, relatedFlightPlanID string) (string, error) {
	trackerID := uuid.NewString()
	blob := Blob{TrackerID: trackerID, FromTower: fromTower, ToTower: toTower, RelatedFlightPlanID: relatedFlightPlanID}

	allocationID, err := m.allocator.Allocate(resourceID, from, to, blob)
	if err != nil {
		return "", err
	}

	if tracker, ok := m.trackers[resourceID]; ok {
		tracker.Append(Record{TrackerID: trackerID, From: from, To: to, RelatedFlightPlanID: relatedFlightPlanID, FromTower: fromTower, ToTower: toTower})
	}

	return allocationID, nil
}

// DeallocateResource releases a previously made allocation along with
// the tracker record appended beside it (found through the shared
// tracker id in the allocation's blob). A rolled-back reservation must
// not leave a phantom movement behind, or later location queries would
// report the resource mid-flight on a flight that never happened.
func (m *Manager) DeallocateResource(allocationID string) {
	if a, ok := m.allocator.GetByID(allocationID); ok {
		if blob, ok := a.Blob.(Blob); ok {
			if tracker, ok := m.trackers[a.ResourceID]; ok {
				tracker.remove(blob.TrackerID)
			}
		}
	}
	m.allocator.Delete(allocationID)
}

// IsAllocationAvailable reports whether resourceID is free for
// [from,to) by delegating to the underlying allocator's probe.
func (m *Manager) IsAllocationAvailable(resourceID string, from, to time.Time) bool {
	id, err := m.allocator.Allocate(resourceID, from, to, nil)
	if err != nil {
		return false
	}
	m.allocator.Delete(id)
	return true
}

// LocationAt reports where resourceID is at instant t, via its tracker.
func (m *Manager) LocationAt(resourceID string, t time.Time) (string, error) {
	tracker, ok := m.trackers[resourceID]
	if !ok {
		return "", &TrackerError{ResourceID: resourceID, At: t}
	}
	return tracker.LocationAt(t)
}
