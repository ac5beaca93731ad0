package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-settings/pkg/activity"
)

// Extension is a named settings extension: a validated registry of versioned
// models plus the migrator and the configured ambient services. Extensions
// are immutable once built and safe for concurrent use.
type Extension struct {
	name     string
	registry *Registry
	migrator LinearMigrator
	cfg      extensionConfig
}

// Name reports the extension name.
func (x *Extension) Name() string {
	return x.name
}

// Versions lists registered versions in ascending order.
func (x *Extension) Versions() []string {
	return x.registry.Versions()
}

// Model returns the registered model for version.
func (x *Extension) Model(version string) (Model, error) {
	model, ok := x.registry.Get(version)
	if !ok {
		return nil, &NoSuchModelError{Version: version}
	}
	return model, nil
}

func (x *Extension) wireModel(version string) (WireModel, error) {
	model, ok := x.registry.Get(version)
	if !ok {
		return nil, &NoSuchModelError{Version: version}
	}
	wire, ok := model.(WireModel)
	if !ok {
		return nil, &InvalidModelError{Reason: fmt.Sprintf("model for version %q does not support wire operations", version)}
	}
	return wire, nil
}

// Set applies the model's set semantics for version: target is the incoming
// value, current the existing one (nil when absent). The result is the value
// that should be stored.
func (x *Extension) Set(version string, target, current json.RawMessage) (json.RawMessage, error) {
	model, err := x.wireModel(version)
	if err != nil {
		return nil, err
	}
	result, err := model.SetWire(target, current)
	if err != nil {
		return nil, err
	}
	x.emitActivity(activity.BuildSettingSetEvent(activity.SettingEventInput{
		Extension: x.name,
		Version:   version,
		Metadata:  x.requestMetadata(),
	}))
	return result, nil
}

// Generate produces a value for version from an optional existing partial and
// the dependent settings the model requested. The result reports whether the
// value is complete or still needs data.
func (x *Extension) Generate(version string, partial, dependent json.RawMessage) (json.RawMessage, error) {
	model, err := x.wireModel(version)
	if err != nil {
		return nil, err
	}
	result, err := model.GenerateWire(partial, dependent)
	if err != nil {
		return nil, err
	}
	x.emitActivity(activity.BuildSettingGeneratedEvent(activity.SettingEventInput{
		Extension: x.name,
		Version:   version,
		Metadata:  x.requestMetadata(),
	}))
	return result, nil
}

// Validate checks a candidate value against the model's own validation and
// any expression rules the model declares. It returns true only when both
// layers accept the value.
func (x *Extension) Validate(version string, value, validated json.RawMessage) (bool, error) {
	model, err := x.wireModel(version)
	if err != nil {
		return false, err
	}
	ok, err := model.ValidateWire(value, validated)
	if err != nil || !ok {
		return ok, err
	}

	var decoded any
	if err := json.Unmarshal(value, &decoded); err != nil {
		return false, &ParseError{Version: version, Err: err}
	}
	if err := x.checkRules(version, model, decoded); err != nil {
		return false, err
	}
	x.emitActivity(activity.BuildSettingValidatedEvent(activity.SettingEventInput{
		Extension: x.name,
		Version:   version,
		Metadata:  x.requestMetadata(),
	}))
	return true, nil
}

// Migrate transforms value from one version to another along the chain.
func (x *Extension) Migrate(value json.RawMessage, fromVersion, targetVersion string) (json.RawMessage, error) {
	start := time.Now()
	result, err := x.runMigration(value, fromVersion, targetVersion, nil)
	x.migrationLogger().LogMigration(MigrationLogEvent{
		Extension: x.name,
		From:      fromVersion,
		To:        targetVersion,
		Duration:  time.Since(start),
		Err:       err,
	})
	if err != nil {
		return nil, err
	}
	x.emitActivity(activity.BuildSettingMigratedEvent(activity.SettingEventInput{
		Extension: x.name,
		Migration: activity.MigrationContext{FromVersion: fromVersion, ToVersion: targetVersion},
		Metadata:  x.requestMetadata(),
	}))
	return result, nil
}

// MigrateTraced behaves like Migrate and additionally returns per-hop
// provenance for the executed route.
func (x *Extension) MigrateTraced(value json.RawMessage, fromVersion, targetVersion string) (json.RawMessage, Trace, error) {
	start := time.Now()
	trace := Trace{From: fromVersion, To: targetVersion}
	result, err := x.runMigration(value, fromVersion, targetVersion, &trace)
	x.migrationLogger().LogMigration(MigrationLogEvent{
		Extension: x.name,
		From:      fromVersion,
		To:        targetVersion,
		Duration:  time.Since(start),
		Err:       err,
	})
	if err != nil {
		return nil, trace, err
	}
	x.emitActivity(activity.BuildSettingMigratedEvent(activity.SettingEventInput{
		Extension: x.name,
		Migration: activity.MigrationContext{
			FromVersion: fromVersion,
			ToVersion:   targetVersion,
			Hops:        len(trace.Hops),
		},
		Metadata: x.requestMetadata(),
	}))
	return result, trace, nil
}

func (x *Extension) runMigration(value json.RawMessage, fromVersion, targetVersion string, trace *Trace) (json.RawMessage, error) {
	model, err := x.wireModel(fromVersion)
	if err != nil {
		return nil, err
	}
	parsed, err := model.ParseWire(value)
	if err != nil {
		return nil, err
	}
	if trace != nil {
		result, traced, err := x.migrator.MigrateTraced(x.registry, parsed, fromVersion, targetVersion)
		*trace = traced
		return result, err
	}
	return x.migrator.Migrate(x.registry, parsed, fromVersion, targetVersion)
}

// FloodMigrate migrates value from its version to every other registered
// version. Results are sorted ascending by version and include the starting
// version.
func (x *Extension) FloodMigrate(value json.RawMessage, fromVersion string) ([]MigrationResult, error) {
	start := time.Now()
	results, err := x.runFlood(value, fromVersion)
	x.migrationLogger().LogMigration(MigrationLogEvent{
		Extension: x.name,
		From:      fromVersion,
		Flood:     true,
		Duration:  time.Since(start),
		Err:       err,
	})
	if err != nil {
		return nil, err
	}
	x.emitActivity(activity.BuildSettingFloodMigratedEvent(activity.SettingEventInput{
		Extension: x.name,
		Migration: activity.MigrationContext{FromVersion: fromVersion, Flood: true},
		Metadata:  x.requestMetadata(),
	}))
	return results, nil
}

func (x *Extension) runFlood(value json.RawMessage, fromVersion string) ([]MigrationResult, error) {
	model, err := x.wireModel(fromVersion)
	if err != nil {
		return nil, err
	}
	parsed, err := model.ParseWire(value)
	if err != nil {
		return nil, err
	}
	return x.migrator.Flood(x.registry, parsed, fromVersion)
}

// Helper invokes a named helper registered on the extension. A non-empty
// version must name a registered model.
func (x *Extension) Helper(version, name string, args ...any) (any, error) {
	if version != "" {
		if _, ok := x.registry.Get(version); !ok {
			return nil, &NoSuchModelError{Version: version}
		}
	}
	if x.cfg.helpers == nil {
		return nil, fmt.Errorf("settings: helper %q not registered", name)
	}
	return x.cfg.helpers.Call(name, args...)
}

// Schema reports a JSON schema document for the given version, derived from
// the model's concrete value type.
func (x *Extension) Schema(version string) (SchemaDocument, error) {
	model, ok := x.registry.Get(version)
	if !ok {
		return SchemaDocument{}, &NoSuchModelError{Version: version}
	}
	zeroer, ok := model.(interface{ Zero() any })
	if !ok {
		return SchemaDocument{}, &InvalidModelError{Reason: fmt.Sprintf("model for version %q does not expose a value type", version)}
	}
	return GenerateSchema(x.name, version, zeroer.Zero())
}

func (x *Extension) ruleLogger() RuleLogger {
	if x.cfg.ruleLogger != nil {
		return x.cfg.ruleLogger
	}
	return noopRuleLogger{}
}

func (x *Extension) migrationLogger() MigrationLogger {
	if x.cfg.migrationLogger != nil {
		return x.cfg.migrationLogger
	}
	return noopMigrationLogger{}
}

// emitActivity notifies configured hooks. Hook failures never fail the
// operation that triggered them.
func (x *Extension) emitActivity(event activity.Event) {
	if !x.cfg.activityHooks.Enabled() {
		return
	}
	_ = x.cfg.activityHooks.Notify(context.Background(), event)
}

func (x *Extension) requestMetadata() map[string]any {
	return map[string]any{"request_id": uuid.NewString()}
}
