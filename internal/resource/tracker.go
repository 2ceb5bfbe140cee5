// Package resource combines an allocator with a per-resource location
// history tracker. It is used to bind concrete bot and payload
// instances to flight plans and to answer "where is this resource at
// time t" queries during scheduling.
package resource

import (
	"fmt"
	"sort"
	"time"
)

// TrackerError reports that a resource's location at an instant cannot
// be determined because the instant falls strictly inside a tracked
// movement: the resource is mid-flight, not sitting at a tower.
type TrackerError struct {
	ResourceID string
	At         time.Time
}

func (e *TrackerError) Error() string {
	return fmt.Sprintf("tracker: resource %q location at %s is ambiguous (already allocated)", e.ResourceID, e.At)
}

// Record is one entry in a resource's movement history. TrackerID ties
// the record to the allocation made alongside it, so rolling back the
// allocation removes exactly this record and nothing else.
type Record struct {
	TrackerID           string
	From, To            time.Time
	RelatedFlightPlanID string
	FromTower, ToTower  string
}

// Tracker reconstructs a resource's location at any query instant from
// its initial context (starting tower) plus a history of movements.
// Committed history is never cleared; a record is removed only when the
// reservation it was appended alongside is rolled back.
type Tracker struct {
	resourceID     string
	initialTowerID string
	history        []Record // kept sorted by From ascending
}

// NewTracker creates a tracker anchored at the resource's starting tower.
func NewTracker(resourceID, initialTowerID string) *Tracker {
	return &Tracker{resourceID: resourceID, initialTowerID: initialTowerID}
}

// ResourceID returns the tracked resource's id.
func (t *Tracker) ResourceID() string { return t.resourceID }

// History returns the tracker's records in chronological order. Callers
// must not mutate the returned slice.
func (t *Tracker) History() []Record { return t.history }

// Append records a new movement, maintaining sorted-by-From order.
func (t *Tracker) Append(rec Record) {
	idx := sort.Search(len(t.history), func(i int) bool { return t.history[i].From.After(rec.From) })
	t.history = append(t.history, Record{})
	copy(t.history[idx+1:], t.history[idx:])
	t.history[idx] = rec
}

// remove deletes the record carrying trackerID, if present.
func (t *Tracker) remove(trackerID string) {
	for i, rec := range t.history {
		if rec.TrackerID == trackerID {
			t.history = append(t.history[:i], t.history[i+1:]...)
			return
		}
	}
}

// LocationAt returns the tower id where the resource sits at instant at.
// If at falls strictly inside a recorded movement's [From,To) the
// resource is in the air, not at a tower, and this returns a
// *TrackerError.
func (t *Tracker) LocationAt(at time.Time) (string, error) {
	location := t.initialTowerID
	for _, rec := range t.history {
		if at.Before(rec.From) {
			break
		}
		if at.Before(rec.To) {
			return "", &TrackerError{ResourceID: t.resourceID, At: at}
		}
		location = rec.ToTower
	}
	return location, nil
}
