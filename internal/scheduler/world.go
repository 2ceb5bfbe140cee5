// Package scheduler ties the allocators, towers, and flight-plan
// transforms together into the one public entry point that turns a
// partially-specified flight plan into a fully scheduled Schedule.
package scheduler

import (
	"time"

	"github.com/edaniels/golog"

	"github.com/elektrokombinacija/aerorefuel/internal/model"
	"github.com/elektrokombinacija/aerorefuel/internal/resource"
	"github.com/elektrokombinacija/aerorefuel/internal/tower"
	"github.com/elektrokombinacija/aerorefuel/internal/transform"
)

// defaultMaxRecursionDepth bounds mutual refuel chains and transit
// ferries.
const defaultMaxRecursionDepth = 30

// bayHoldHorizon is the far-future end time a bay hold is allocated
// through, since a bot/payload's next departure isn't known until it's
// scheduled; the hold is deleted outright once that happens.
const bayHoldHorizon = 100 * 365 * 24 * time.Hour

// BayHold records which tower bay currently holds a bot or payload
// instance, the allocation id backing it, and the window it reserved.
type BayHold struct {
	TowerID      string
	AllocationID string
	From, To     time.Time
}

// World is the static and mutable state a Scheduler operates over: the
// fixed towers, the schema catalog, the known bot/payload instances and
// their allocators/trackers, and the scheduler-wide durations.
type World struct {
	Towers   map[string]*tower.Tower
	Schemas  *model.SchemaRegistry
	Bots     []model.Bot
	Payloads []model.Payload

	BotManager     *resource.Manager
	PayloadManager *resource.Manager

	// BotBayHolds and PayloadBayHolds track which tower bay currently
	// holds each bot/payload instance between flights. A resource
	// absent from its map isn't presently sitting in any tracked bay
	// (e.g. it hasn't flown yet).
	BotBayHolds     map[string]BayHold
	PayloadBayHolds map[string]BayHold

	Options transform.Options

	// RefuelPayloadModel names the payload model a refueler carries,
	// used to narrow the refueler-capable bot schemas considered for a
	// refuel sub-plan to those compatible with it.
	RefuelPayloadModel string

	MaxRecursionDepth int
}

// Scheduler is the single entry point for turning a flight plan into a
// Schedule. It is not safe for concurrent use by multiple goroutines.
type Scheduler struct {
	world  *World
	logger golog.Logger
}

// New builds a Scheduler over the given world.
func New(world *World, logger golog.Logger) *Scheduler {
	if logger == nil {
		logger = golog.NewDevelopmentLogger("scheduler")
	}
	if world.MaxRecursionDepth == 0 {
		world.MaxRecursionDepth = defaultMaxRecursionDepth
	}
	if world.BotBayHolds == nil {
		world.BotBayHolds = make(map[string]BayHold)
	}
	if world.PayloadBayHolds == nil {
		world.PayloadBayHolds = make(map[string]BayHold)
	}
	return &Scheduler{world: world, logger: logger}
}
