package activity

import "time"

// MigrationContext captures route metadata associated with a migration event.
type MigrationContext struct {
	FromVersion string
	ToVersion   string
	Flood       bool
	Hops        int
}

// SettingEventInput describes the common fields for setting lifecycle events.
type SettingEventInput struct {
	Extension  string
	Version    string
	ActorID    string
	TenantID   string
	Channel    string
	Metadata   map[string]any
	OldValue   any
	NewValue   any
	Migration  MigrationContext
	OccurredAt time.Time
}

// BuildSettingSetEvent constructs an activity event for a set operation.
func BuildSettingSetEvent(input SettingEventInput) Event {
	return buildSettingEvent("settings.set", input)
}

// BuildSettingGeneratedEvent constructs an activity event for value generation.
func BuildSettingGeneratedEvent(input SettingEventInput) Event {
	return buildSettingEvent("settings.generated", input)
}

// BuildSettingValidatedEvent constructs an activity event for validation.
func BuildSettingValidatedEvent(input SettingEventInput) Event {
	return buildSettingEvent("settings.validated", input)
}

// BuildSettingMigratedEvent constructs an activity event for a migration.
func BuildSettingMigratedEvent(input SettingEventInput) Event {
	return buildSettingEvent("settings.migrated", input)
}

// BuildSettingFloodMigratedEvent constructs an activity event describing a flood migration.
func BuildSettingFloodMigratedEvent(input SettingEventInput) Event {
	input.Migration.Flood = true
	return buildSettingEvent("settings.flood_migrated", input)
}

func buildSettingEvent(verb string, input SettingEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.Migration.FromVersion != "" || input.Migration.ToVersion != "" {
		metadata = ensureMetadata(metadata)
		metadata["from_version"] = input.Migration.FromVersion
		metadata["to_version"] = input.Migration.ToVersion
		metadata["flood"] = input.Migration.Flood
		if input.Migration.Hops > 0 {
			metadata["hops"] = input.Migration.Hops
		}
	}
	if input.OldValue != nil {
		metadata = ensureMetadata(metadata)
		metadata["old_value"] = input.OldValue
	}
	if input.NewValue != nil {
		metadata = ensureMetadata(metadata)
		metadata["new_value"] = input.NewValue
	}

	return Event{
		Verb:       verb,
		Extension:  input.Extension,
		Version:    input.Version,
		ActorID:    input.ActorID,
		TenantID:   input.TenantID,
		Channel:    input.Channel,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
