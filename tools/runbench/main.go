// Command runbench loads genscenario-generated scenario files, runs each
// through the scheduler, and reports wall-clock and schedule-shape
// metrics to CSV.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
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

// the wire shapes below mirror tools/genscenario's output; runbench is
// the only other binary that decodes this JSON.

type vec3 [3]float64

type wirePositions struct {
	From vec3 `json:"from"`
	To   vec3 `json:"to"`
}

type wireWaypoint struct {
	Type      string         `json:"type"`
	Positions *wirePositions `json:"positions,omitempty"`
	Action    string         `json:"action,omitempty"`
	Duration  string         `json:"duration,omitempty"`
	ID        string         `json:"id,omitempty"`
}

type wireFlightPlan struct {
	ID             string         `json:"id,omitempty"`
	StartingTower  string         `json:"starting_tower"`
	FinishingTower string         `json:"finishing_tower"`
	BotModel       string         `json:"bot_model,omitempty"`
	PayloadModel   string         `json:"payload_model,omitempty"`
	Waypoints      []wireWaypoint `json:"waypoints"`
}

type wireBotSchema struct {
	Model            string `json:"model"`
	Type             string `json:"type"`
	FlightTime       int    `json:"flight_time"`
	Speed            int    `json:"speed"`
	CruisingAltitude int    `json:"cruising_altitude"`
}

type wirePayloadSchema struct {
	Model          string   `json:"model"`
	CompatableBots []string `json:"compatable_bots"`
}

type wireTower struct {
	ID                string   `json:"id"`
	Position          vec3     `json:"position"`
	ParallelLaunchers int      `json:"parallel_launchers"`
	ParallelLanders   int      `json:"parallel_landers"`
	LaunchTime        int      `json:"launch_time"`
	LandingTime       int      `json:"landing_time"`
	PayloadCapacity   int      `json:"payload_capacity"`
	BotCapacity       int      `json:"bot_capacity"`
	InitialBots       []string `json:"initial_bots,omitempty"`
	InitialPayloads   []string `json:"initial_payloads,omitempty"`
}

type wireSchedulerConfig struct {
	RefuelDuration              string `json:"refuel_duration"`
	RemainingFlightTimeAtRefuel string `json:"remaining_flight_time_at_refuel"`
	RefuelAnticipationBuffer    string `json:"refuel_anticipation_buffer"`
}

type wireInstance struct {
	ID    string `json:"id"`
	Model string `json:"model"`
}

type wireScenario struct {
	Name             string              `json:"name"`
	Towers           []wireTower         `json:"towers"`
	Bots             []wireBotSchema     `json:"bot_schemas"`
	Payloads         []wirePayloadSchema `json:"payload_schemas"`
	BotInstances     []wireInstance      `json:"bots"`
	PayloadInstances []wireInstance      `json:"payloads"`
	Config           wireSchedulerConfig `json:"scheduler_config"`
	Plan             wireFlightPlan      `json:"flight_plan"`
}

// BenchResult is one CSV row: the outcome of scheduling a single scenario.
type BenchResult struct {
	Timestamp      string
	CommitHash     string
	GoVersion      string
	OS             string
	Arch           string
	Scenario       string
	NumTowers      int
	NumWaypoints   int
	RuntimeMS      float64
	Success        bool
	RefuelCount    int
	MissionSeconds float64
	Error          string
}

func parseDuration(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid duration %q, expected HH:MM:SS", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	sec, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, err
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}

func loadScenario(path string) (*wireScenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s wireScenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// buildWorld adapts a wireScenario's towers/schemas into the internal
// scheduler.World, the one encoding/json-to-domain-type boundary also
// exercised by tools/genscenario's producer side.
func buildWorld(s *wireScenario, logger golog.Logger) (*scheduler.World, error) {
	refuelDur, err := parseDuration(s.Config.RefuelDuration)
	if err != nil {
		return nil, fmt.Errorf("refuel_duration: %w", err)
	}
	remaining, err := parseDuration(s.Config.RemainingFlightTimeAtRefuel)
	if err != nil {
		return nil, fmt.Errorf("remaining_flight_time_at_refuel: %w", err)
	}
	buffer, err := parseDuration(s.Config.RefuelAnticipationBuffer)
	if err != nil {
		return nil, fmt.Errorf("refuel_anticipation_buffer: %w", err)
	}

	towers := make(map[string]*tower.Tower, len(s.Towers))
	for _, wt := range s.Towers {
		towers[wt.ID] = tower.New(tower.Config{
			ID:                wt.ID,
			Position:          geo.NewPosition(wt.Position[0], wt.Position[1], wt.Position[2]),
			LaunchTime:        time.Duration(wt.LaunchTime) * time.Second,
			LandingTime:       time.Duration(wt.LandingTime) * time.Second,
			ParallelLaunchers: wt.ParallelLaunchers,
			ParallelLanders:   wt.ParallelLanders,
			PayloadCapacity:   wt.PayloadCapacity,
			BotCapacity:       wt.BotCapacity,
		}, time.UTC, logger)
	}

	var botSchemas []model.BotSchema
	for _, b := range s.Bots {
		botType := model.BotTypeOperator
		if b.Type == "refueler" {
			botType = model.BotTypeRefueler
		}
		botSchemas = append(botSchemas, model.BotSchema{
			Model: b.Model, Type: botType,
			FlightTime:       float64(b.FlightTime),
			Speed:            float64(b.Speed),
			CruisingAltitude: float64(b.CruisingAltitude),
		})
	}
	var payloadSchemas []model.PayloadSchema
	for _, p := range s.Payloads {
		payloadSchemas = append(payloadSchemas, model.PayloadSchema{Model: p.Model, CompatibleBots: p.CompatableBots})
	}

	botModels := make(map[string]string, len(s.BotInstances))
	for _, inst := range s.BotInstances {
		botModels[inst.ID] = inst.Model
	}
	payloadModels := make(map[string]string, len(s.PayloadInstances))
	for _, inst := range s.PayloadInstances {
		payloadModels[inst.ID] = inst.Model
	}

	var bots []model.Bot
	var payloads []model.Payload
	botMgr := resource.NewManager(alloc.NewResourceAllocator(logger), logger)
	payloadMgr := resource.NewManager(alloc.NewResourceAllocator(logger), logger)
	for _, wt := range s.Towers {
		for _, id := range wt.InitialBots {
			m, ok := botModels[id]
			if !ok {
				return nil, fmt.Errorf("tower %s: initial bot %q has no entry in bots", wt.ID, id)
			}
			bots = append(bots, model.Bot{ID: id, Model: m})
			botMgr.Track(id, wt.ID)
		}
		for _, id := range wt.InitialPayloads {
			m, ok := payloadModels[id]
			if !ok {
				return nil, fmt.Errorf("tower %s: initial payload %q has no entry in payloads", wt.ID, id)
			}
			payloads = append(payloads, model.Payload{ID: id, Model: m})
			payloadMgr.Track(id, wt.ID)
		}
	}

	return &scheduler.World{
		Towers:         towers,
		Schemas:        model.NewSchemaRegistry(botSchemas, payloadSchemas),
		Bots:           bots,
		Payloads:       payloads,
		BotManager:     botMgr,
		PayloadManager: payloadMgr,
		Options: transform.Options{
			RefuelDuration:              refuelDur,
			RemainingFlightTimeAtRefuel: remaining,
			AnticipationBuffer:          buffer,
		},
	}, nil
}

func buildFlightPlan(wp wireFlightPlan) *flightplan.FlightPlan {
	waypoints := make([]*waypoint.Waypoint, 0, len(wp.Waypoints))
	for _, w := range wp.Waypoints {
		switch w.Type {
		case "leg":
			if w.Positions == nil {
				continue
			}
			from := geo.NewPosition(w.Positions.From[0], w.Positions.From[1], w.Positions.From[2])
			to := geo.NewPosition(w.Positions.To[0], w.Positions.To[1], w.Positions.To[2])
			leg := waypoint.NewLeg(from, to)
			if w.ID != "" {
				leg.SetID(w.ID)
			}
			waypoints = append(waypoints, leg)
		case "action":
			dur, err := parseDuration(w.Duration)
			if err != nil {
				dur = 0
			}
			action := waypoint.NewAction(w.Action, dur)
			if w.ID != "" {
				action.SetID(w.ID)
			}
			waypoints = append(waypoints, action)
		}
	}
	return flightplan.New(wp.ID, wp.StartingTower, wp.FinishingTower, waypoints, flightplan.Meta{
		BotModel:     wp.BotModel,
		PayloadModel: wp.PayloadModel,
	})
}

func countRefuelers(sched *scheduler.Schedule) int {
	if sched == nil {
		return 0
	}
	n := len(sched.Refuelers)
	for _, sub := range sched.Refuelers {
		n += countRefuelers(sub)
	}
	return n
}

func runScenario(path string, launch time.Time) BenchResult {
	result := BenchResult{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		CommitHash: gitCommit(),
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		Scenario:   filepath.Base(path),
	}

	scn, err := loadScenario(path)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.NumTowers = len(scn.Towers)
	result.NumWaypoints = len(scn.Plan.Waypoints)

	logger := golog.NewDevelopmentLogger("runbench")
	world, err := buildWorld(scn, logger)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	plan := buildFlightPlan(scn.Plan)
	sched := scheduler.New(world, logger)

	start := time.Now()
	outcome, err := sched.DetermineSchedule(plan, scheduler.LaunchAnchor(launch))
	result.RuntimeMS = float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Success = true
	result.RefuelCount = countRefuelers(outcome)
	if start, ok := outcome.FlightPlan.Start(); ok {
		if end, ok := outcome.FlightPlan.End(); ok {
			result.MissionSeconds = end.Sub(start).Seconds()
		}
	}
	return result
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func writeCSV(results []BenchResult, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"timestamp", "commit_hash", "go_version", "os", "arch", "scenario",
		"num_towers", "num_waypoints", "runtime_ms", "success",
		"refuel_count", "mission_seconds", "error",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Timestamp, r.CommitHash, r.GoVersion, r.OS, r.Arch, r.Scenario,
			strconv.Itoa(r.NumTowers), strconv.Itoa(r.NumWaypoints),
			strconv.FormatFloat(r.RuntimeMS, 'f', 3, 64),
			strconv.FormatBool(r.Success),
			strconv.Itoa(r.RefuelCount),
			strconv.FormatFloat(r.MissionSeconds, 'f', 1, 64),
			r.Error,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(results []BenchResult) {
	var ok, failed int
	var totalMS float64
	for _, r := range results {
		if r.Success {
			ok++
		} else {
			failed++
		}
		totalMS += r.RuntimeMS
	}
	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("scenarios: %d  succeeded: %d  failed: %d\n", len(results), ok, failed)
	if len(results) > 0 {
		fmt.Printf("avg runtime: %.3fms\n", totalMS/float64(len(results)))
	}
	for _, r := range results {
		status := "ok"
		if !r.Success {
			status = "FAIL: " + r.Error
		}
		fmt.Printf("  %-40s %8.3fms  refuels=%-3d %s\n", r.Scenario, r.RuntimeMS, r.RefuelCount, status)
	}
}

func main() {
	input := flag.String("input", "testdata", "directory of scenario JSON files")
	output := flag.String("output", "benchmark_results.csv", "CSV output path")
	launchFlag := flag.String("launch", time.Now().UTC().Format(time.RFC3339), "launch time (RFC3339) used for every scenario")
	flag.Parse()

	launch, err := time.Parse(time.RFC3339, *launchFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runbench: invalid -launch: %v\n", err)
		os.Exit(1)
	}

	paths, err := filepath.Glob(filepath.Join(*input, "*.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "runbench: globbing %s: %v\n", *input, err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "runbench: no scenario files found in %s\n", *input)
		os.Exit(1)
	}
	sort.Strings(paths)

	results := make([]BenchResult, 0, len(paths))
	for _, p := range paths {
		fmt.Printf("running %s...\n", filepath.Base(p))
		results = append(results, runScenario(p, launch))
	}

	if err := writeCSV(results, *output); err != nil {
		fmt.Fprintf(os.Stderr, "runbench: writing CSV: %v\n", err)
		os.Exit(1)
	}
	printSummary(results)
	fmt.Printf("\nresults written to %s\n", *output)
}
