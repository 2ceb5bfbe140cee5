// Package flightplan models an ordered sequence of waypoints flown by a
// single bot, plus the metadata and snapshot machinery needed to mutate
// it in place and roll back.
package flightplan

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/elektrokombinacija/aerorefuel/internal/geo"
	"github.com/elektrokombinacija/aerorefuel/internal/waypoint"
)

// Meta carries the resource-binding intent for a flight plan: either a
// concrete bot/payload instance id, or a model name the scheduler should
// pick an instance of. At most one of BotID/BotModel and one of
// PayloadID/PayloadModel is meaningful at a time.
type Meta struct {
	BotID        string
	BotModel     string
	PayloadID    string
	PayloadModel string
}

// HasBot reports whether the meta names a bot instance or model.
func (m Meta) HasBot() bool { return m.BotID != "" || m.BotModel != "" }

// HasPayload reports whether the meta names a payload instance or model.
func (m Meta) HasPayload() bool { return m.PayloadID != "" || m.PayloadModel != "" }

// originalState is the immutable snapshot taken at construction (or at
// the last explicit Snapshot call), used to reset the plan between
// fit-to-slot attempts and to build a from-scratch clone.
type originalState struct {
	waypoints        []*waypoint.Waypoint
	startingTowerID  string
	finishingTowerID string
	meta             Meta
}

// FlightPlan is an ordered, mutable sequence of waypoints plus metadata.
// It carries an immutable original-state snapshot used by
// RestoreFromSnapshot and Clone.
type FlightPlan struct {
	id               string
	waypoints        []*waypoint.Waypoint
	startingTowerID  string
	finishingTowerID string
	meta             Meta

	original originalState
}

// New builds a flight plan and takes its original-state snapshot.
func New(id, startingTowerID, finishingTowerID string, waypoints []*waypoint.Waypoint, meta Meta) *FlightPlan {
	if id == "" {
		id = uuid.NewString()
	}
	fp := &FlightPlan{
		id:               id,
		waypoints:        waypoints,
		startingTowerID:  startingTowerID,
		finishingTowerID: finishingTowerID,
		meta:             meta,
	}
	fp.Snapshot()
	return fp
}

// ID returns the flight plan's stable identity.
func (fp *FlightPlan) ID() string { return fp.id }

// StartingTowerID returns the id of the tower this plan launches from.
func (fp *FlightPlan) StartingTowerID() string { return fp.startingTowerID }

// FinishingTowerID returns the id of the tower this plan lands at.
func (fp *FlightPlan) FinishingTowerID() string { return fp.finishingTowerID }

// Meta returns the resource-binding metadata.
func (fp *FlightPlan) Meta() Meta { return fp.meta }

// SetMeta replaces the resource-binding metadata.
func (fp *FlightPlan) SetMeta(m Meta) { fp.meta = m }

// Waypoints returns the live, mutable waypoint slice. Callers performing
// structural edits (insert/replace) should use InsertAt/ReplaceAt below
// so indices stay meaningful mid-scan.
func (fp *FlightPlan) Waypoints() []*waypoint.Waypoint { return fp.waypoints }

// Len returns the number of waypoints.
func (fp *FlightPlan) Len() int { return len(fp.waypoints) }

// At returns the waypoint at index i.
func (fp *FlightPlan) At(i int) *waypoint.Waypoint { return fp.waypoints[i] }

// IndexOf returns the index of the waypoint with the given id, or -1.
func (fp *FlightPlan) IndexOf(id string) int {
	for i, w := range fp.waypoints {
		if w.ID() == id {
			return i
		}
	}
	return -1
}

// InsertAt inserts w at index i, shifting subsequent waypoints right.
func (fp *FlightPlan) InsertAt(i int, w *waypoint.Waypoint) {
	fp.waypoints = append(fp.waypoints, nil)
	copy(fp.waypoints[i+1:], fp.waypoints[i:])
	fp.waypoints[i] = w
}

// ReplaceAt overwrites the waypoint at index i.
func (fp *FlightPlan) ReplaceAt(i int, w *waypoint.Waypoint) {
	fp.waypoints[i] = w
}

// Append adds a waypoint to the end of the plan.
func (fp *FlightPlan) Append(w *waypoint.Waypoint) {
	fp.waypoints = append(fp.waypoints, w)
}

// RemoveAt deletes the waypoint at index i, shifting subsequent waypoints
// left. Used to discard the zero-work dummy waypoint landing-time
// anchoring appends and then retires.
func (fp *FlightPlan) RemoveAt(i int) {
	fp.waypoints = append(fp.waypoints[:i], fp.waypoints[i+1:]...)
}

// Snapshot records the current waypoint sequence, towers, and meta as
// the plan's original state. It is called at construction and again
// whenever a caller wants the "current" shape to become the rebase
// point (e.g. after a successful fit-to-slots iteration).
func (fp *FlightPlan) Snapshot() {
	cloned := make([]*waypoint.Waypoint, len(fp.waypoints))
	for i, w := range fp.waypoints {
		cloned[i] = w.Clone()
	}
	fp.original = originalState{
		waypoints:        cloned,
		startingTowerID:  fp.startingTowerID,
		finishingTowerID: fp.finishingTowerID,
		meta:             fp.meta,
	}
}

// RestoreFromSnapshot discards all in-place mutations made since the
// last Snapshot, resetting the plan's waypoint sequence, towers, and
// meta back to the recorded original state.
func (fp *FlightPlan) RestoreFromSnapshot() {
	restored := make([]*waypoint.Waypoint, len(fp.original.waypoints))
	for i, w := range fp.original.waypoints {
		restored[i] = w.Clone()
	}
	fp.waypoints = restored
	fp.startingTowerID = fp.original.startingTowerID
	fp.finishingTowerID = fp.original.finishingTowerID
	fp.meta = fp.original.meta
}

// Clone returns an independent deep copy with a fresh identity and a
// fresh original-state snapshot taken from the clone's current shape
// (not the source's original state), used when the scheduler needs a
// disposable working copy, e.g. to pre-recalculate a refueler candidate
// without disturbing the candidate it was built from.
func (fp *FlightPlan) Clone() *FlightPlan {
	cloned := make([]*waypoint.Waypoint, len(fp.waypoints))
	for i, w := range fp.waypoints {
		cloned[i] = w.Clone()
	}
	return New(uuid.NewString(), fp.startingTowerID, fp.finishingTowerID, cloned, fp.meta)
}

// IsDefinite reports whether every action waypoint has a non-negative,
// fixed duration (i.e. none are indefinite placeholders). In this
// implementation every action carries an explicit duration, so
// IsDefinite is equivalent to "no negative durations", kept as a named
// invariant check because transforms rely on it before anchoring.
func (fp *FlightPlan) IsDefinite() bool {
	for _, w := range fp.waypoints {
		if w.IsAction() && w.Duration() < 0 {
			return false
		}
	}
	return true
}

// IsApproximated reports whether every waypoint has both start and end
// times set.
func (fp *FlightPlan) IsApproximated() bool {
	for _, w := range fp.waypoints {
		if !w.Approximated() {
			return false
		}
	}
	return true
}

// SetStartingTowerID overrides the starting tower, used by the partial
// flight plan orchestration once a candidate start tower has been
// chosen.
func (fp *FlightPlan) SetStartingTowerID(id string) { fp.startingTowerID = id }

// SetFinishingTowerID overrides the finishing tower.
func (fp *FlightPlan) SetFinishingTowerID(id string) { fp.finishingTowerID = id }

// Start returns the first waypoint's start time. The plan must be
// approximated.
func (fp *FlightPlan) Start() (time.Time, bool) {
	if len(fp.waypoints) == 0 {
		return time.Time{}, false
	}
	return fp.waypoints[0].StartTime()
}

// End returns the last waypoint's end time. The plan must be approximated.
func (fp *FlightPlan) End() (time.Time, bool) {
	if len(fp.waypoints) == 0 {
		return time.Time{}, false
	}
	return fp.waypoints[len(fp.waypoints)-1].EndTime()
}

// TotalDuration returns End - Start for an approximated plan.
func (fp *FlightPlan) TotalDuration() (time.Duration, bool) {
	start, ok := fp.Start()
	if !ok {
		return 0, false
	}
	end, ok := fp.End()
	if !ok {
		return 0, false
	}
	return end.Sub(start), true
}

// Validate checks the plan's structural invariants: the last waypoint
// is a leg; the first leg's origin matches the starting tower's
// position; the last leg's destination matches the finishing tower's
// position; and consecutive legs join end-to-start.
func (fp *FlightPlan) Validate(startingTowerPos, finishingTowerPos geo.Position) error {
	if len(fp.waypoints) == 0 {
		return fmt.Errorf("flightplan %s: empty plan", fp.id)
	}
	last := fp.waypoints[len(fp.waypoints)-1]
	if !last.IsLeg() {
		return fmt.Errorf("flightplan %s: last waypoint must be a leg", fp.id)
	}

	var firstLeg, prevLeg *waypoint.Waypoint
	for _, w := range fp.waypoints {
		if !w.IsLeg() {
			continue
		}
		if firstLeg == nil {
			firstLeg = w
		}
		if prevLeg != nil && !prevLeg.To().Equal(w.From()) {
			return fmt.Errorf("flightplan %s: leg %s does not join leg %s (to=%v from=%v)",
				fp.id, w.ID(), prevLeg.ID(), w.From(), prevLeg.To())
		}
		prevLeg = w
	}

	if firstLeg == nil {
		return fmt.Errorf("flightplan %s: no legs present", fp.id)
	}
	if !firstLeg.From().Equal(startingTowerPos) {
		return fmt.Errorf("flightplan %s: first leg origin %v does not match starting tower position %v",
			fp.id, firstLeg.From(), startingTowerPos)
	}
	if !last.To().Equal(finishingTowerPos) {
		return fmt.Errorf("flightplan %s: last leg destination %v does not match finishing tower position %v",
			fp.id, last.To(), finishingTowerPos)
	}
	return nil
}
