package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/aerorefuel/internal/demo"
	"github.com/elektrokombinacija/aerorefuel/internal/geo"
	"github.com/elektrokombinacija/aerorefuel/internal/scheduler"
	"github.com/elektrokombinacija/aerorefuel/internal/waypoint"
)

// TestDetermineScheduleEndToEnd exercises the full orchestration path
// against the demo world's long survey mission, which is far enough to
// force at least one refuel: structural closure, time monotonicity,
// and that every refuel waypoint in the root plan got a scheduled
// refueler sub-schedule.
func TestDetermineScheduleEndToEnd(t *testing.T) {
	launch := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)
	world, sched, err := demo.Schedule(launch)
	require.NoError(t, err)
	require.NotNil(t, sched)
	require.NotNil(t, sched.FlightPlan)

	plan := sched.FlightPlan
	start, ok := plan.Start()
	require.True(t, ok)
	end, ok := plan.End()
	require.True(t, ok)
	require.True(t, end.After(start))

	// Structural closure: first leg departs "north", last leg arrives
	// "south".
	startingTower := world.Towers[plan.StartingTowerID()]
	finishingTower := world.Towers[plan.FinishingTowerID()]
	require.Equal(t, "north", startingTower.ID())
	require.Equal(t, "south", finishingTower.ID())

	var refuelCount int
	var prevEnd time.Time
	for i := 0; i < plan.Len(); i++ {
		w := plan.At(i)
		wStart, wOK := w.StartTime()
		wEnd, wEndOK := w.EndTime()
		require.True(t, wOK)
		require.True(t, wEndOK)
		require.False(t, wEnd.Before(wStart))
		if i > 0 {
			require.True(t, wStart.Equal(prevEnd))
		}
		prevEnd = wEnd

		if w.IsAction() && w.IsBeingRecharged() {
			refuelCount++
			sub, ok := sched.Refuelers[w.ID()]
			require.True(t, ok, "expected a refueler sub-schedule for waypoint %s", w.ID())
			require.NotNil(t, sub.FlightPlan)
		}
	}
	require.Greater(t, refuelCount, 0, "the long survey mission should have required at least one refuel")
	require.Equal(t, refuelCount, len(sched.Refuelers))
}

// TestDetermineScheduleRollsBackOnInfeasibleRequest checks rollback
// atomicity: binding an unknown payload instance fails only once launch
// and landing slots are already reserved, so a correct implementation
// must release them. If it didn't, a second, satisfiable request for
// the exact same launch time would find its slot already taken and fail
// too.
func TestDetermineScheduleRollsBackOnInfeasibleRequest(t *testing.T) {
	launch := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)
	world := demo.NewWorld()
	plan := demo.ExampleFlightPlan(world)
	meta := plan.Meta()
	meta.PayloadModel = ""
	meta.PayloadID = "no-such-payload"
	plan.SetMeta(meta)

	sched := scheduler.New(world, nil)
	_, err := sched.DetermineSchedule(plan, scheduler.LaunchAnchor(launch))
	require.Error(t, err)

	goodPlan := demo.ExampleFlightPlan(world)
	goodSched, err := sched.DetermineSchedule(goodPlan, scheduler.LaunchAnchor(launch))
	require.NoError(t, err)
	require.NotNil(t, goodSched)
}

// TestDetermineScheduleForPartialFlightPlansPicksNearestTowers checks
// that a partial plan naming no towers gets completed by pairing it
// with its nearest start and finish towers, and the completion is
// schedulable end to end.
func TestDetermineScheduleForPartialFlightPlansPicksNearestTowers(t *testing.T) {
	world := demo.NewWorld()
	north := world.Towers["north"].Position()
	south := world.Towers["south"].Position()

	near := waypoint.NewLeg(geo.Interpolate(north, south, 0.05), geo.Interpolate(north, south, 0.95))

	partial := scheduler.PartialPlan{
		ID:        "ferry-1",
		BotModel:  "survey-operator",
		Waypoints: []*waypoint.Waypoint{near},
	}

	critical := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)
	sched := scheduler.New(world, nil)
	root, err := sched.DetermineScheduleForPartialFlightPlans([]scheduler.PartialPlan{partial}, critical)
	require.NoError(t, err)
	require.Len(t, root.Refuelers, 1)

	for _, sub := range root.Refuelers {
		require.Equal(t, "north", sub.FlightPlan.StartingTowerID())
		require.Equal(t, "south", sub.FlightPlan.FinishingTowerID())
	}
}
