package settings

import (
	"encoding/json"
	"sort"
	"time"
)

// MigrationResult pairs a version with the serialized value migrated to it.
type MigrationResult struct {
	Version string          `json:"version"`
	Value   json.RawMessage `json:"value"`
}

// LinearMigrator executes migrations by walking a validated linear chain.
// It assumes the registry has passed validateChain; violations it detects at
// execution time are reported as internal invariant errors.
type LinearMigrator struct{}

// Migrate transforms startValue from its version to the target version by
// folding the model transforms along the route, then serializes the result
// with the target model.
func (m LinearMigrator) Migrate(registry *Registry, startValue any, startVersion, targetVersion string) (json.RawMessage, error) {
	return m.migrate(registry, startValue, startVersion, targetVersion, nil)
}

// MigrateTraced behaves like Migrate and additionally records per-hop
// provenance.
func (m LinearMigrator) MigrateTraced(registry *Registry, startValue any, startVersion, targetVersion string) (json.RawMessage, Trace, error) {
	trace := Trace{From: startVersion, To: targetVersion}
	result, err := m.migrate(registry, startValue, startVersion, targetVersion, &trace)
	return result, trace, err
}

func (LinearMigrator) migrate(registry *Registry, startValue any, startVersion, targetVersion string, trace *Trace) (json.RawMessage, error) {
	model, ok := registry.Get(startVersion)
	if !ok {
		return nil, &NoSuchModelError{Version: startVersion}
	}
	route, ok := findRoute(registry, startVersion, targetVersion)
	if !ok {
		return nil, &NoMigrationRouteError{From: startVersion, To: targetVersion}
	}

	value := startValue
	for _, direction := range route.Directions() {
		nextVersion, ok := model.MigratesTo(direction)
		if !ok {
			// The route guaranteed this hop; its absence is a routing bug.
			return nil, &NoDefinedMigrationError{Version: model.Version(), Direction: direction}
		}
		nextModel, ok := registry.Get(nextVersion)
		if !ok {
			// Same invariant: routing never crosses unregistered versions.
			return nil, &NoDefinedMigrationError{Version: model.Version(), Direction: direction}
		}

		hopStart := time.Now()
		next, err := model.Migrate(value, direction)
		if err != nil {
			return nil, err
		}
		if trace != nil {
			trace.Hops = append(trace.Hops, HopProvenance{
				From:      model.Version(),
				To:        nextVersion,
				Direction: direction.String(),
				Duration:  time.Since(hopStart),
			})
		}
		value, model = next, nextModel
	}

	return model.Serialize(value)
}

// Flood migrates startValue to every other registered version, walking
// forward and backward independently from the original value. Results
// include the starting version and are sorted ascending by version.
func (LinearMigrator) Flood(registry *Registry, startValue any, startVersion string) ([]MigrationResult, error) {
	start, ok := registry.Get(startVersion)
	if !ok {
		return nil, &NoSuchModelError{Version: startVersion}
	}

	serialized, err := start.Serialize(startValue)
	if err != nil {
		return nil, err
	}
	results := make([]MigrationResult, 0, registry.Len())
	results = append(results, MigrationResult{Version: start.Version(), Value: serialized})

	// Both walks begin at the original value so transform error never
	// compounds across a full round trip of the chain.
	for _, direction := range []Direction{Forward, Backward} {
		model, value := start, startValue
		for {
			nextVersion, ok := model.MigratesTo(direction)
			if !ok {
				break
			}
			nextModel, ok := registry.Get(nextVersion)
			if !ok {
				break
			}
			next, err := model.Migrate(value, direction)
			if err != nil {
				return nil, err
			}
			serialized, err := nextModel.Serialize(next)
			if err != nil {
				return nil, err
			}
			results = append(results, MigrationResult{Version: nextModel.Version(), Value: serialized})
			value, model = next, nextModel
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Version < results[j].Version
	})
	return results, nil
}
