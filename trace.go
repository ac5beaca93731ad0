package settings

import (
	"encoding/json"
	"time"
)

// Trace captures provenance information for a migration, hop by hop along
// the route that produced the final value.
type Trace struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Hops []HopProvenance `json:"hops,omitempty"`
}

// HopProvenance details a single migration hop between adjacent versions.
type HopProvenance struct {
	From      string        `json:"from"`
	To        string        `json:"to"`
	Direction string        `json:"direction"`
	Duration  time.Duration `json:"duration_ns"`
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
