package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/aerorefuel/internal/flightplan"
	"github.com/elektrokombinacija/aerorefuel/internal/geo"
	"github.com/elektrokombinacija/aerorefuel/internal/model"
	"github.com/elektrokombinacija/aerorefuel/internal/waypoint"
)

func operatorSchema(speed, flightTimeSeconds float64) model.BotSchema {
	return model.BotSchema{Model: "operator-1", Type: model.BotTypeOperator, Speed: speed, FlightTime: flightTimeSeconds}
}

// requireEnduranceSafe walks a recalculated plan and asserts the
// accumulated flight time between consecutive being_recharged actions
// (and before the first one) never exceeds the refuel threshold.
func requireEnduranceSafe(t *testing.T, fp *flightplan.FlightPlan, schema model.BotSchema, opts Options) {
	t.Helper()
	threshold := opts.Threshold(schema)
	var accum time.Duration
	for i := 0; i < fp.Len(); i++ {
		w := fp.At(i)
		if w.IsAction() && w.IsBeingRecharged() {
			accum = 0
			continue
		}
		accum += w.ExpectedDuration(schema.Speed)
		require.LessOrEqual(t, accum, threshold, "waypoint %d pushes flight time past the refuel threshold", i)
	}
}

// Scenario 1: a single 1000m leg at 1 m/s, endurance 500s, refuel 100s,
// remaining 200s -> threshold 200s -> five 200m legs separated by four
// 100s being_recharged actions.
func TestRecalculateSingleLongLeg(t *testing.T) {
	leg := waypoint.NewLeg(geo.NewPosition(0, 0, 0), geo.NewPosition(0, 0, 1000))
	fp := flightplan.New("", "tower-a", "tower-b", []*waypoint.Waypoint{leg}, flightplan.Meta{BotModel: "operator-1"})

	schema := operatorSchema(1, 500)
	opts := Options{RefuelDuration: 100 * time.Second, RemainingFlightTimeAtRefuel: 200 * time.Second}

	require.NoError(t, Recalculate(fp, schema, opts))

	var legs []*waypoint.Waypoint
	var refuels []*waypoint.Waypoint
	for i := 0; i < fp.Len(); i++ {
		w := fp.At(i)
		if w.IsLeg() {
			legs = append(legs, w)
		} else {
			refuels = append(refuels, w)
		}
	}

	require.Len(t, legs, 5)
	require.Len(t, refuels, 4)
	for _, r := range refuels {
		require.True(t, r.IsBeingRecharged())
		require.Equal(t, 100*time.Second, r.Duration())
	}

	require.Equal(t, geo.NewPosition(0, 0, 0), legs[0].From())
	require.Equal(t, geo.NewPosition(0, 0, 200), legs[0].To())
	require.Equal(t, geo.NewPosition(0, 0, 200), legs[1].From())
	require.Equal(t, geo.NewPosition(0, 0, 400), legs[1].To())
	require.Equal(t, geo.NewPosition(0, 0, 800), legs[4].From())
	require.Equal(t, geo.NewPosition(0, 0, 1000), legs[4].To())

	requireEnduranceSafe(t, fp, schema, opts)
}

// Scenario 2: a round trip with a mid-mission payload action, endurance
// 500s, refuel 10s, remaining 20s -> threshold 470s.
func TestRecalculateRoundTripWithPayloadAction(t *testing.T) {
	out := waypoint.NewLeg(geo.NewPosition(0, 0, 0), geo.NewPosition(0, 0, 1000))
	payload := waypoint.NewAction(waypoint.TokenPayload, 500*time.Second)
	back := waypoint.NewLeg(geo.NewPosition(0, 0, 1000), geo.NewPosition(0, 0, 0))
	fp := flightplan.New("", "tower-a", "tower-a", []*waypoint.Waypoint{out, payload, back}, flightplan.Meta{BotModel: "operator-1"})

	schema := operatorSchema(1, 500)
	opts := Options{RefuelDuration: 10 * time.Second, RemainingFlightTimeAtRefuel: 20 * time.Second}

	require.NoError(t, Recalculate(fp, schema, opts))

	var refuelCount, payloadPieces int
	var outboundLegs, returnLegs int
	seenPayload := false
	for i := 0; i < fp.Len(); i++ {
		w := fp.At(i)
		switch {
		case w.IsAction() && w.IsBeingRecharged():
			refuelCount++
		case w.IsAction() && w.IsPayloadAction():
			payloadPieces++
			seenPayload = true
		case w.IsLeg():
			if !seenPayload {
				outboundLegs++
			} else {
				returnLegs++
			}
		}
	}

	require.Equal(t, 5, refuelCount)
	require.Equal(t, 2, payloadPieces)
	require.Equal(t, 3, outboundLegs)
	require.Equal(t, 3, returnLegs)

	requireEnduranceSafe(t, fp, schema, opts)
}

// Scenario 3: a giving_recharge action cannot be interrupted, so when
// the threshold is crossed during it, the refuel is inserted before the
// anticipation buffer that precedes it, not between the buffer and the
// recharge.
func TestRecalculateDoesNotInterruptGivingRecharge(t *testing.T) {
	out := waypoint.NewLeg(geo.NewPosition(0, 0, 0), geo.NewPosition(0, 0, 1000))
	buffer := waypoint.NewAction(waypoint.TokenAnticipationBuffer, 100*time.Second)
	giving := waypoint.NewAction(waypoint.TokenGivingRecharge, 100*time.Second)
	back := waypoint.NewLeg(geo.NewPosition(0, 0, 1000), geo.NewPosition(0, 0, 100))
	fp := flightplan.New("", "tower-a", "tower-b", []*waypoint.Waypoint{out, buffer, giving, back}, flightplan.Meta{BotModel: "operator-1"})

	// threshold = 1300 - 100 - 50 = 1150s: crossed only once the
	// giving_recharge action is reached (1000 + 100 + 100 = 1200).
	schema := operatorSchema(1, 1300)
	opts := Options{RefuelDuration: 50 * time.Second, RemainingFlightTimeAtRefuel: 100 * time.Second}

	require.NoError(t, Recalculate(fp, schema, opts))

	require.Equal(t, 5, fp.Len())
	refuel := fp.At(1)
	require.True(t, refuel.IsAction())
	require.True(t, refuel.IsBeingRecharged())
	require.True(t, refuel.Generated())
	require.True(t, fp.At(2).IsAnticipationBuffer())
	require.True(t, fp.At(3).IsGivingRecharge())
	require.True(t, fp.At(4).IsLeg())
}

func TestRecalculateNonPositiveThresholdErrors(t *testing.T) {
	leg := waypoint.NewLeg(geo.NewPosition(0, 0, 0), geo.NewPosition(0, 0, 10))
	fp := flightplan.New("", "tower-a", "tower-b", []*waypoint.Waypoint{leg}, flightplan.Meta{BotModel: "operator-1"})
	schema := operatorSchema(1, 100)
	opts := Options{RefuelDuration: 60 * time.Second, RemainingFlightTimeAtRefuel: 50 * time.Second}
	require.Error(t, Recalculate(fp, schema, opts))
}
