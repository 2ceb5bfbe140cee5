// Package demo builds a small, deterministic world and mission flight
// plan shared by the cmd/flightsched driver and the cmd/flightplanviz
// viewer, so both present the same scenario.
package demo

import (
	"time"

	"github.com/edaniels/golog"

	"github.com/elektrokombinacija/aerorefuel/internal/alloc"
	"github.com/elektrokombinacija/aerorefuel/internal/flightplan"
	"github.com/elektrokombinacija/aerorefuel/internal/geo"
	"github.com/elektrokombinacija/aerorefuel/internal/model"
	"github.com/elektrokombinacija/aerorefuel/internal/resource"
	"github.com/elektrokombinacija/aerorefuel/internal/scheduler"
	"github.com/elektrokombinacija/aerorefuel/internal/tower"
	"github.com/elektrokombinacija/aerorefuel/internal/transform"
	"github.com/elektrokombinacija/aerorefuel/internal/waypoint"
)

// NewWorld builds three towers (north, mid-field, south), an operator
// bot and a refueler bot, and the payload the operator carries: enough
// to exercise a mid-air refuel hand-off.
func NewWorld() *scheduler.World {
	loc := time.UTC
	logger := golog.NewDevelopmentLogger("demo")

	towers := map[string]*tower.Tower{
		"north": tower.New(tower.Config{
			ID:                "north",
			Position:          geo.NewPosition(0, 0, 0),
			LaunchTime:        2 * time.Minute,
			LandingTime:       2 * time.Minute,
			ParallelLaunchers: 2,
			ParallelLanders:   2,
			PayloadCapacity:   4,
			BotCapacity:       4,
		}, loc, logger),
		"midfield": tower.New(tower.Config{
			ID:                "midfield",
			Position:          geo.NewPosition(40000, 0, 0),
			LaunchTime:        2 * time.Minute,
			LandingTime:       2 * time.Minute,
			ParallelLaunchers: 2,
			ParallelLanders:   2,
			PayloadCapacity:   4,
			BotCapacity:       4,
		}, loc, logger),
		"south": tower.New(tower.Config{
			ID:                "south",
			Position:          geo.NewPosition(90000, 0, 0),
			LaunchTime:        2 * time.Minute,
			LandingTime:       2 * time.Minute,
			ParallelLaunchers: 2,
			ParallelLanders:   2,
			PayloadCapacity:   4,
			BotCapacity:       4,
		}, loc, logger),
	}

	schemas := model.NewSchemaRegistry(
		[]model.BotSchema{
			{Model: "survey-operator", Type: model.BotTypeOperator, FlightTime: 5400, Speed: 22, CruisingAltitude: 400},
			{Model: "tanker-refueler", Type: model.BotTypeRefueler, FlightTime: 7200, Speed: 28, CruisingAltitude: 450},
		},
		[]model.PayloadSchema{
			{Model: "survey-pod", CompatibleBots: []string{"survey-operator"}},
		},
	)

	bots := []model.Bot{
		{ID: "op-1", Model: "survey-operator"},
		{ID: "refueler-1", Model: "tanker-refueler"},
	}
	payloads := []model.Payload{
		{ID: "pod-1", Model: "survey-pod"},
	}

	botMgr := resource.NewManager(alloc.NewResourceAllocator(logger), logger)
	botMgr.Track("op-1", "north")
	botMgr.Track("refueler-1", "midfield")

	payloadMgr := resource.NewManager(alloc.NewResourceAllocator(logger), logger)
	payloadMgr.Track("pod-1", "north")

	return &scheduler.World{
		Towers:             towers,
		Schemas:            schemas,
		Bots:               bots,
		Payloads:           payloads,
		BotManager:         botMgr,
		PayloadManager:     payloadMgr,
		RefuelPayloadModel: "",
		Options: transform.Options{
			RefuelDuration:              10 * time.Minute,
			RemainingFlightTimeAtRefuel: 15 * time.Minute,
			AnticipationBuffer:          5 * time.Minute,
		},
	}
}

// ExampleFlightPlan builds a long south-bound survey mission from north
// to south, carrying the survey payload, far enough that recalculate
// inserts at least one being_recharged waypoint given the operator
// schema's endurance, exercising the refuel-scheduling path end to end.
func ExampleFlightPlan(world *scheduler.World) *flightplan.FlightPlan {
	north := world.Towers["north"].Position()
	south := world.Towers["south"].Position()
	mid := geo.Interpolate(north, south, 0.5)

	waypoints := []*waypoint.Waypoint{
		waypoint.NewLeg(north, mid),
		waypoint.NewAction(waypoint.TokenPayload, 3*time.Minute),
		waypoint.NewLeg(mid, south),
	}

	return flightplan.New("survey-mission-1", "north", "south", waypoints, flightplan.Meta{
		BotModel:     "survey-operator",
		PayloadModel: "survey-pod",
	})
}

// Schedule builds the example world and mission and runs it through the
// scheduler, launching at launchTime.
func Schedule(launchTime time.Time) (*scheduler.World, *scheduler.Schedule, error) {
	world := NewWorld()
	plan := ExampleFlightPlan(world)
	sched := scheduler.New(world, nil)
	result, err := sched.DetermineSchedule(plan, scheduler.LaunchAnchor(launchTime))
	return world, result, err
}
