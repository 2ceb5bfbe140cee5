// Command genscenario generates deterministic flight-scheduling
// scenarios to JSON, for replay through tools/runbench.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

// Vec3Scenario is the [x,y,z] position wire shape.
type Vec3Scenario [3]float64

// PositionsScenario is a leg waypoint's from/to pair.
type PositionsScenario struct {
	From Vec3Scenario `json:"from"`
	To   Vec3Scenario `json:"to"`
}

// WaypointScenario is the waypoint wire shape, discriminated by Type:
// legs carry Positions, actions carry Action/Duration and optionally a
// Position.
type WaypointScenario struct {
	Type      string             `json:"type"`
	Positions *PositionsScenario `json:"positions,omitempty"`
	Action    string             `json:"action,omitempty"`
	Duration  string             `json:"duration,omitempty"`
	ID        string             `json:"id,omitempty"`
	Position  *Vec3Scenario      `json:"position,omitempty"`
	Generated bool               `json:"generated,omitempty"`
}

// FlightPlanScenario is the flight plan wire shape.
type FlightPlanScenario struct {
	ID             string             `json:"id,omitempty"`
	StartingTower  string             `json:"starting_tower"`
	FinishingTower string             `json:"finishing_tower"`
	BotModel       string             `json:"bot_model,omitempty"`
	PayloadModel   string             `json:"payload_model,omitempty"`
	Waypoints      []WaypointScenario `json:"waypoints"`
}

// BotSchemaScenario is the bot schema wire shape.
type BotSchemaScenario struct {
	Model            string `json:"model"`
	Type             string `json:"type"`
	FlightTime       int    `json:"flight_time"`
	Speed            int    `json:"speed"`
	CruisingAltitude int    `json:"cruising_altitude"`
}

// PayloadSchemaScenario is the payload schema wire shape.
type PayloadSchemaScenario struct {
	Model          string   `json:"model"`
	CompatableBots []string `json:"compatable_bots"`
}

// BotScenario is an identified bot instance; towers reference these ids
// in initial_bots.
type BotScenario struct {
	ID    string `json:"id"`
	Model string `json:"model"`
}

// PayloadScenario is an identified payload instance; towers reference
// these ids in initial_payloads.
type PayloadScenario struct {
	ID    string `json:"id"`
	Model string `json:"model"`
}

// TowerScenario is the tower wire shape.
type TowerScenario struct {
	ID                string       `json:"id"`
	Position          Vec3Scenario `json:"position"`
	ParallelLaunchers int          `json:"parallel_launchers"`
	ParallelLanders   int          `json:"parallel_landers"`
	LaunchTime        int          `json:"launch_time"`
	LandingTime       int          `json:"landing_time"`
	PayloadCapacity   int          `json:"payload_capacity"`
	BotCapacity       int          `json:"bot_capacity"`
	InitialBots       []string     `json:"initial_bots,omitempty"`
	InitialPayloads   []string     `json:"initial_payloads,omitempty"`
}

// SchedulerConfigScenario is the scheduler-configuration wire shape.
type SchedulerConfigScenario struct {
	RefuelDuration              string `json:"refuel_duration"`
	RemainingFlightTimeAtRefuel string `json:"remaining_flight_time_at_refuel"`
	RefuelAnticipationBuffer    string `json:"refuel_anticipation_buffer"`
}

// Scenario bundles every input a determine_schedule request needs.
type Scenario struct {
	Name             string                  `json:"name"`
	Seed             int64                   `json:"seed"`
	Generated        string                  `json:"generated"`
	Towers           []TowerScenario         `json:"towers"`
	Bots             []BotSchemaScenario     `json:"bot_schemas"`
	Payloads         []PayloadSchemaScenario `json:"payload_schemas"`
	BotInstances     []BotScenario           `json:"bots"`
	PayloadInstances []PayloadScenario       `json:"payloads"`
	Config           SchedulerConfigScenario `json:"scheduler_config"`
	Plan             FlightPlanScenario      `json:"flight_plan"`
}

func durationString(d time.Duration) string {
	total := int(d.Seconds())
	h, m, s := total/3600, (total/60)%60, total%60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// generateScenario builds one random but deterministic (given seed)
// three-tower survey-and-refuel scenario.
func generateScenario(seed int64, legLength float64) *Scenario {
	rng := rand.New(rand.NewSource(seed))

	span := legLength * (0.8 + 0.4*rng.Float64())
	towers := []TowerScenario{
		{ID: "north", Position: Vec3Scenario{0, 0, 0}, ParallelLaunchers: 2, ParallelLanders: 2,
			LaunchTime: 120, LandingTime: 120, PayloadCapacity: 4, BotCapacity: 4,
			InitialBots: []string{"op-1"}, InitialPayloads: []string{"pod-1"}},
		{ID: "midfield", Position: Vec3Scenario{span / 2, 0, 0}, ParallelLaunchers: 2, ParallelLanders: 2,
			LaunchTime: 120, LandingTime: 120, PayloadCapacity: 4, BotCapacity: 4,
			InitialBots: []string{"refueler-1"}},
		{ID: "south", Position: Vec3Scenario{span, 0, 0}, ParallelLaunchers: 2, ParallelLanders: 2,
			LaunchTime: 120, LandingTime: 120, PayloadCapacity: 4, BotCapacity: 4},
	}

	bots := []BotSchemaScenario{
		{Model: "survey-operator", Type: "operator", FlightTime: 5400, Speed: 22, CruisingAltitude: 400},
		{Model: "tanker-refueler", Type: "refueler", FlightTime: 7200, Speed: 28, CruisingAltitude: 450},
	}
	payloads := []PayloadSchemaScenario{
		{Model: "survey-pod", CompatableBots: []string{"survey-operator"}},
	}

	mid := Vec3Scenario{span / 2, 0, 0}
	plan := FlightPlanScenario{
		ID:             fmt.Sprintf("survey-mission-%d", seed),
		StartingTower:  "north",
		FinishingTower: "south",
		BotModel:       "survey-operator",
		PayloadModel:   "survey-pod",
		Waypoints: []WaypointScenario{
			legScenario(Vec3Scenario{0, 0, 0}, mid),
			{Type: "action", Action: "payload", Duration: "00:03:00"},
			legScenario(mid, Vec3Scenario{span, 0, 0}),
		},
	}

	return &Scenario{
		Name:      fmt.Sprintf("survey_%d_%.0fm", seed, span),
		Seed:      seed,
		Generated: time.Now().UTC().Format(time.RFC3339),
		Towers:    towers,
		Bots:      bots,
		Payloads:  payloads,
		BotInstances: []BotScenario{
			{ID: "op-1", Model: "survey-operator"},
			{ID: "refueler-1", Model: "tanker-refueler"},
		},
		PayloadInstances: []PayloadScenario{
			{ID: "pod-1", Model: "survey-pod"},
		},
		Config: SchedulerConfigScenario{
			RefuelDuration:              durationString(10 * time.Minute),
			RemainingFlightTimeAtRefuel: durationString(15 * time.Minute),
			RefuelAnticipationBuffer:    durationString(5 * time.Minute),
		},
		Plan: plan,
	}
}

func legScenario(from, to Vec3Scenario) WaypointScenario {
	return WaypointScenario{Type: "leg", Positions: &PositionsScenario{From: from, To: to}}
}

func main() {
	seed := flag.Int64("seed", 42, "random seed for deterministic generation")
	count := flag.Int("count", 1, "number of scenarios to generate")
	legLength := flag.Float64("leg-length", 90000, "approximate north-to-south distance (unit-less)")
	outputDir := flag.String("output", "testdata", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "genscenario: creating output directory: %v\n", err)
		os.Exit(1)
	}

	for i := 0; i < *count; i++ {
		scenario := generateScenario(*seed+int64(i), *legLength)
		filename := filepath.Join(*outputDir, scenario.Name+".json")

		data, err := json.MarshalIndent(scenario, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "genscenario: marshaling %s: %v\n", scenario.Name, err)
			continue
		}
		if err := os.WriteFile(filename, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "genscenario: writing %s: %v\n", filename, err)
			continue
		}
		fmt.Printf("generated: %s (%d towers)\n", filename, len(scenario.Towers))
	}
}
