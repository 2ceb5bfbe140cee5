// Command flightplanviz provides a GUI visualization of a scheduled
// flight plan: route rendering plus time-scrubbed playback of every
// flight in the schedule tree.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gioui.org/app"
	"gioui.org/unit"

	"github.com/elektrokombinacija/aerorefuel/internal/demo"
	"github.com/elektrokombinacija/aerorefuel/internal/vis"
)

func main() {
	launch := flag.String("launch", time.Now().UTC().Format(time.RFC3339), "launch time (RFC3339)")
	flag.Parse()

	launchTime, err := time.Parse(time.RFC3339, *launch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flightplanviz: invalid -launch: %v\n", err)
		os.Exit(1)
	}

	_, sched, err := demo.Schedule(launchTime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flightplanviz: schedule failed: %v\n", err)
		os.Exit(1)
	}

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("Flight Plan Viewer"),
			app.Size(unit.Dp(1400), unit.Dp(900)),
		)

		application := vis.NewApp(sched)
		if err := application.Run(window); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}
