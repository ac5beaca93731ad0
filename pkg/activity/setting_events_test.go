package activity

import (
	"context"
	"testing"
)

func TestBuildSettingMigratedEventIncludesRouteMetadata(t *testing.T) {
	meta := map[string]any{"custom": "value"}
	input := SettingEventInput{
		Extension: "motd",
		ActorID:   "actor",
		TenantID:  "tenant",
		Channel:   "settings",
		Metadata:  meta,
		Migration: MigrationContext{FromVersion: "v1", ToVersion: "v2", Hops: 1},
		OldValue:  "hello",
		NewValue:  []string{"hello"},
	}

	event := BuildSettingMigratedEvent(input)

	if event.Verb != "settings.migrated" {
		t.Fatalf("expected verb settings.migrated got %s", event.Verb)
	}
	if event.Extension != "motd" {
		t.Fatalf("expected extension motd, got %q", event.Extension)
	}
	if event.ActorID != "actor" || event.TenantID != "tenant" || event.Channel != "settings" {
		t.Fatalf("unexpected identity fields: %+v", event)
	}
	if event.Metadata["from_version"] != "v1" || event.Metadata["to_version"] != "v2" {
		t.Fatalf("expected route metadata, got %+v", event.Metadata)
	}
	if event.Metadata["flood"] != false {
		t.Fatalf("expected flood false, got %v", event.Metadata["flood"])
	}
	if event.Metadata["hops"] != 1 {
		t.Fatalf("expected hops metadata, got %v", event.Metadata["hops"])
	}
	if event.Metadata["old_value"] == nil || event.Metadata["new_value"] == nil {
		t.Fatalf("expected old/new values, got %+v", event.Metadata)
	}
	if event.Metadata["custom"] != "value" {
		t.Fatalf("expected custom metadata preserved, got %+v", event.Metadata)
	}
	event.Metadata["custom"] = "changed"
	if meta["custom"] != "value" {
		t.Fatalf("expected input metadata untouched")
	}
}

func TestBuildSettingSetEventCarriesVersion(t *testing.T) {
	event := BuildSettingSetEvent(SettingEventInput{Extension: "motd", Version: "v2"})
	if event.Verb != "settings.set" {
		t.Fatalf("expected verb settings.set, got %q", event.Verb)
	}
	if event.Extension != "motd" || event.Version != "v2" {
		t.Fatalf("unexpected event fields: %+v", event)
	}
}

func TestBuildSettingFloodMigratedEventMarksFlood(t *testing.T) {
	event := BuildSettingFloodMigratedEvent(SettingEventInput{
		Extension: "motd",
		Migration: MigrationContext{FromVersion: "v1"},
	})
	if event.Verb != "settings.flood_migrated" {
		t.Fatalf("expected verb settings.flood_migrated got %s", event.Verb)
	}
	if event.Metadata["flood"] != true {
		t.Fatalf("expected flood metadata, got %v", event.Metadata["flood"])
	}
}

func TestBuildSettingEventsWorkWithHooks(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}

	event := BuildSettingValidatedEvent(SettingEventInput{
		Extension: "motd",
		Version:   "v1",
	})
	err := hooks.Notify(context.Background(), event)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected capture to record event, got %d", len(capture.Events))
	}
	if capture.Events[0].Verb != "settings.validated" {
		t.Fatalf("expected verb settings.validated, got %s", capture.Events[0].Verb)
	}
	if capture.Events[0].Version != "v1" {
		t.Fatalf("expected version v1, got %q", capture.Events[0].Version)
	}
}
