package datastore_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	settings "github.com/goliatone/go-settings"
	"github.com/goliatone/go-settings/pkg/datastore"
)

type motdV1 struct {
	Motd string `json:"motd"`
}

type motdV2 struct {
	Motd []string `json:"motd"`
}

type motdV1Model struct{}

func (motdV1Model) Version() string { return "v1" }

func (motdV1Model) Set(_ *motdV1, target motdV1) (motdV1, error) { return target, nil }

func (motdV1Model) Generate(partial *motdV1, _ json.RawMessage) (settings.GenerateResult[motdV1], error) {
	if partial != nil {
		return settings.Completed(*partial), nil
	}
	return settings.Completed(motdV1{Motd: "hello"}), nil
}

func (motdV1Model) Validate(value motdV1, _ json.RawMessage) (bool, error) {
	return value.Motd != "", nil
}

func (motdV1Model) MigratesForwardTo() string { return "v2" }

func (motdV1Model) MigrateForward(value motdV1) (any, error) {
	return motdV2{Motd: strings.Fields(value.Motd)}, nil
}

func (motdV1Model) MigratesBackwardTo() string { return "" }

func (motdV1Model) MigrateBackward(motdV1) (any, error) {
	return nil, fmt.Errorf("v1 is the start of the chain")
}

type motdV2Model struct{}

func (motdV2Model) Version() string { return "v2" }

func (motdV2Model) Set(_ *motdV2, target motdV2) (motdV2, error) { return target, nil }

func (motdV2Model) Generate(partial *motdV2, _ json.RawMessage) (settings.GenerateResult[motdV2], error) {
	if partial != nil {
		return settings.Completed(*partial), nil
	}
	return settings.Completed(motdV2{Motd: []string{"hello"}}), nil
}

func (motdV2Model) Validate(value motdV2, _ json.RawMessage) (bool, error) {
	return len(value.Motd) > 0, nil
}

func (motdV2Model) MigratesForwardTo() string { return "" }

func (motdV2Model) MigrateForward(motdV2) (any, error) {
	return nil, fmt.Errorf("v2 is the end of the chain")
}

func (motdV2Model) MigratesBackwardTo() string { return "v1" }

func (motdV2Model) MigrateBackward(value motdV2) (any, error) {
	return motdV1{Motd: strings.Join(value.Motd, " ")}, nil
}

func buildExtension(t *testing.T) *settings.Extension {
	t.Helper()
	ext, err := settings.NewExtensionBuilder("motd").
		WithModels(
			settings.NewSetting[motdV1](motdV1Model{}),
			settings.NewSetting[motdV2](motdV2Model{}),
		).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return ext
}

func seed(t *testing.T, store datastore.Store, ext *settings.Extension, key string, value string, meta datastore.Meta) {
	t.Helper()
	ref := datastore.Ref{Extension: ext.Name(), Key: key}
	if _, err := store.Save(context.Background(), ref, json.RawMessage(value), meta); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestResolveReturnsStoredVersionUnchanged(t *testing.T) {
	ext := buildExtension(t)
	store := datastore.NewMemoryStore()
	seed(t, store, ext, "default", `{"motd":"hi"}`, datastore.Meta{Version: "v1"})

	resolver := datastore.Resolver{Store: store, Extension: ext}
	value, meta, err := resolver.Resolve(context.Background(), "default", "v1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if meta.Version != "v1" {
		t.Fatalf("expected version v1, got %q", meta.Version)
	}
	var decoded motdV1
	if err := json.Unmarshal(value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Motd != "hi" {
		t.Fatalf("unexpected value: %q", decoded.Motd)
	}
}

func TestResolveMigratesOnRead(t *testing.T) {
	ext := buildExtension(t)
	store := datastore.NewMemoryStore()
	seed(t, store, ext, "default", `{"motd":"hello world"}`, datastore.Meta{Version: "v1"})

	resolver := datastore.Resolver{Store: store, Extension: ext}
	value, meta, err := resolver.Resolve(context.Background(), "default", "v2")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if meta.Version != "v2" {
		t.Fatalf("expected version v2, got %q", meta.Version)
	}
	var decoded motdV2
	if err := json.Unmarshal(value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Motd) != 2 {
		t.Fatalf("expected split motd, got %v", decoded.Motd)
	}

	// Without Persist the stored copy keeps its original version.
	_, stored, ok, err := store.Load(context.Background(), datastore.Ref{Extension: "motd", Key: "default"})
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if stored.Version != "v1" {
		t.Fatalf("expected stored version v1, got %q", stored.Version)
	}
}

func TestResolvePersistsMigratedValue(t *testing.T) {
	ext := buildExtension(t)
	store := datastore.NewMemoryStore()
	seed(t, store, ext, "default", `{"motd":"hello world"}`, datastore.Meta{Version: "v1"})

	resolver := datastore.Resolver{Store: store, Extension: ext, Persist: true}
	_, meta, err := resolver.Resolve(context.Background(), "default", "v2")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if meta.Version != "v2" {
		t.Fatalf("expected version v2, got %q", meta.Version)
	}
	if meta.SnapshotID == "" {
		t.Fatalf("expected snapshot ID on persisted migration")
	}

	_, stored, ok, err := store.Load(context.Background(), datastore.Ref{Extension: "motd", Key: "default"})
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if stored.Version != "v2" {
		t.Fatalf("expected stored version v2, got %q", stored.Version)
	}
}

func TestResolveMissingKey(t *testing.T) {
	ext := buildExtension(t)
	resolver := datastore.Resolver{Store: datastore.NewMemoryStore(), Extension: ext}

	if _, _, err := resolver.Resolve(context.Background(), "missing", "v1"); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestMutateValidatesAndSaves(t *testing.T) {
	ext := buildExtension(t)
	store := datastore.NewMemoryStore()
	seed(t, store, ext, "default", `{"motd":"hi"}`, datastore.Meta{Version: "v1"})

	resolver := datastore.Resolver{Store: store, Extension: ext}
	value, meta, err := resolver.Mutate(context.Background(), "default", "v1", datastore.Meta{}, func(value map[string]any) error {
		value["motd"] = "updated"
		return nil
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if meta.SnapshotID == "" {
		t.Fatalf("expected snapshot ID after mutate")
	}
	var decoded motdV1
	if err := json.Unmarshal(value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Motd != "updated" {
		t.Fatalf("expected updated, got %q", decoded.Motd)
	}
}

func TestMutateRejectsInvalidResult(t *testing.T) {
	ext := buildExtension(t)
	store := datastore.NewMemoryStore()
	seed(t, store, ext, "default", `{"motd":"hi"}`, datastore.Meta{Version: "v1"})

	resolver := datastore.Resolver{Store: store, Extension: ext}
	_, _, err := resolver.Mutate(context.Background(), "default", "v1", datastore.Meta{}, func(value map[string]any) error {
		value["motd"] = ""
		return nil
	})
	if err == nil {
		t.Fatalf("expected validation failure")
	}
}

func TestMutateETagMismatch(t *testing.T) {
	ext := buildExtension(t)
	store := datastore.NewMemoryStore()
	seed(t, store, ext, "default", `{"motd":"hi"}`, datastore.Meta{Version: "v1", ETag: "a"})

	resolver := datastore.Resolver{Store: store, Extension: ext}
	_, _, err := resolver.Mutate(context.Background(), "default", "v1", datastore.Meta{ETag: "b"}, func(value map[string]any) error {
		return nil
	})
	if !errors.Is(err, datastore.ErrETagMismatch) {
		t.Fatalf("expected ErrETagMismatch, got %v", err)
	}
}
