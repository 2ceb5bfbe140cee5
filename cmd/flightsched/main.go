// Command flightsched runs a demo flight-plan scheduling request and
// prints the resulting schedule, including every refuel sub-plan it
// needed.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/elektrokombinacija/aerorefuel/internal/demo"
	"github.com/elektrokombinacija/aerorefuel/internal/flightplan"
	"github.com/elektrokombinacija/aerorefuel/internal/scheduler"
)

func main() {
	launch := flag.String("launch", time.Now().UTC().Format(time.RFC3339), "launch time (RFC3339)")
	flag.Parse()

	launchTime, err := time.Parse(time.RFC3339, *launch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flightsched: invalid -launch: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	_, sched, err := demo.Schedule(launchTime)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flightsched: schedule failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Aerial Refuel Flight Scheduler ===\n")
	fmt.Printf("scheduled in %v\n\n", elapsed)
	printSchedule(sched, 0)
}

func printSchedule(sched *scheduler.Schedule, indent int) {
	if sched == nil {
		return
	}
	pad := ""
	for i := 0; i < indent; i++ {
		pad += "  "
	}
	if sched.FlightPlan != nil {
		printPlan(sched.FlightPlan, pad)
	}
	for id, sub := range sched.Refuelers {
		fmt.Printf("%srefuel for waypoint %s:\n", pad, id)
		printSchedule(sub, indent+1)
	}
}

func printPlan(plan *flightplan.FlightPlan, pad string) {
	start, hasStart := plan.Start()
	end, hasEnd := plan.End()
	fmt.Printf("%sflight %s: %s -> %s\n", pad, plan.ID(), plan.StartingTowerID(), plan.FinishingTowerID())
	if hasStart && hasEnd {
		fmt.Printf("%s  launch %s, land %s (%v)\n", pad, start.Format(time.RFC3339), end.Format(time.RFC3339), end.Sub(start))
	}
	for i := 0; i < plan.Len(); i++ {
		w := plan.At(i)
		wStart, _ := w.StartTime()
		wEnd, _ := w.EndTime()
		if w.IsLeg() {
			fmt.Printf("%s  [%s-%s] leg\n", pad, wStart.Format("15:04:05"), wEnd.Format("15:04:05"))
			continue
		}
		fmt.Printf("%s  [%s-%s] action %q\n", pad, wStart.Format("15:04:05"), wEnd.Format("15:04:05"), w.Action())
	}
}
