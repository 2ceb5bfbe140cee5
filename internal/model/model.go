// Package model defines the static schemas and resource instances the
// planner schedules: bot models/instances and payload models/instances.
package model

// BotType distinguishes mission bots from dedicated refuelers.
type BotType int

const (
	// BotTypeOperator flies the primary mission.
	BotTypeOperator BotType = iota
	// BotTypeRefueler services other bots' being_recharged waypoints.
	BotTypeRefueler
)

func (t BotType) String() string {
	switch t {
	case BotTypeOperator:
		return "operator"
	case BotTypeRefueler:
		return "refueler"
	default:
		return "unknown"
	}
}

// BotSchema describes a bot model's flight characteristics, shared by
// every instance of that model.
type BotSchema struct {
	Model            string
	Type             BotType
	FlightTime       float64 // endurance, seconds
	Speed            float64 // meters/second
	CruisingAltitude float64
}

// IsRefueler reports whether this schema is refueler-capable.
func (s BotSchema) IsRefueler() bool { return s.Type == BotTypeRefueler }

// Bot is an identified instance of a BotSchema.
type Bot struct {
	ID    string
	Model string
}

// PayloadSchema describes a payload model and the bot models it may be
// carried by.
type PayloadSchema struct {
	Model          string
	CompatibleBots []string
}

// IsCompatible reports whether the given bot model may carry this payload.
func (s PayloadSchema) IsCompatible(botModel string) bool {
	for _, m := range s.CompatibleBots {
		if m == botModel {
			return true
		}
	}
	return false
}

// Payload is an identified instance of a PayloadSchema.
type Payload struct {
	ID    string
	Model string
}

// SchemaRegistry resolves model names to schemas and instances to their
// owning models. The scheduler receives one of these per request; it is
// read-only from the scheduler's perspective.
type SchemaRegistry struct {
	bots     map[string]BotSchema
	payloads map[string]PayloadSchema
}

// NewSchemaRegistry builds a registry from schema slices.
func NewSchemaRegistry(bots []BotSchema, payloads []PayloadSchema) *SchemaRegistry {
	r := &SchemaRegistry{
		bots:     make(map[string]BotSchema, len(bots)),
		payloads: make(map[string]PayloadSchema, len(payloads)),
	}
	for _, b := range bots {
		r.bots[b.Model] = b
	}
	for _, p := range payloads {
		r.payloads[p.Model] = p
	}
	return r
}

// BotSchema looks up a bot schema by model name.
func (r *SchemaRegistry) BotSchema(model string) (BotSchema, bool) {
	s, ok := r.bots[model]
	return s, ok
}

// PayloadSchema looks up a payload schema by model name.
func (r *SchemaRegistry) PayloadSchema(model string) (PayloadSchema, bool) {
	s, ok := r.payloads[model]
	return s, ok
}

// RefuelerSchemas returns every registered refueler-capable bot schema,
// sorted by model name for deterministic iteration.
func (r *SchemaRegistry) RefuelerSchemas() []BotSchema {
	var out []BotSchema
	for _, s := range r.bots {
		if s.IsRefueler() {
			out = append(out, s)
		}
	}
	sortSchemasByModel(out)
	return out
}

func sortSchemasByModel(s []BotSchema) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].Model < s[j-1].Model; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
