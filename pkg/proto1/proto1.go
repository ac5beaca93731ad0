// Package proto1 implements the first version of the line protocol a
// settings extension binary speaks. Each command arrives as a single JSON
// document and produces a single JSON document on success.
package proto1

import (
	"encoding/json"
	"fmt"

	settings "github.com/goliatone/go-settings"
)

// Command is a parsed protocol request ready to run against an extension.
type Command interface {
	Run(ext *settings.Extension) (json.RawMessage, error)
}

// Set applies an incoming value at a specific setting version.
type Set struct {
	SettingVersion string          `json:"setting-version"`
	Value          json.RawMessage `json:"value"`
	CurrentValue   json.RawMessage `json:"current-value,omitempty"`
}

func (c Set) Run(ext *settings.Extension) (json.RawMessage, error) {
	return ext.Set(c.SettingVersion, c.Value, c.CurrentValue)
}

// Generate produces a value from an optional partial plus dependent settings.
type Generate struct {
	SettingVersion   string          `json:"setting-version"`
	ExistingPartial  json.RawMessage `json:"existing-partial,omitempty"`
	RequiredSettings json.RawMessage `json:"required-settings,omitempty"`
}

func (c Generate) Run(ext *settings.Extension) (json.RawMessage, error) {
	return ext.Generate(c.SettingVersion, c.ExistingPartial, c.RequiredSettings)
}

// Validate checks a candidate value at a specific setting version.
type Validate struct {
	SettingVersion   string          `json:"setting-version"`
	Value            json.RawMessage `json:"value"`
	RequiredSettings json.RawMessage `json:"required-settings,omitempty"`
}

func (c Validate) Run(ext *settings.Extension) (json.RawMessage, error) {
	ok, err := ext.Validate(c.SettingVersion, c.Value, c.RequiredSettings)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]bool{"valid": ok})
}

// Migrate transforms a value from one version to another.
type Migrate struct {
	Value         json.RawMessage `json:"value"`
	FromVersion   string          `json:"from-version"`
	TargetVersion string          `json:"target-version"`
}

func (c Migrate) Run(ext *settings.Extension) (json.RawMessage, error) {
	return ext.Migrate(c.Value, c.FromVersion, c.TargetVersion)
}

// FloodMigrate transforms a value to every registered version.
type FloodMigrate struct {
	Value       json.RawMessage `json:"value"`
	FromVersion string          `json:"from-version"`
}

func (c FloodMigrate) Run(ext *settings.Extension) (json.RawMessage, error) {
	results, err := ext.FloodMigrate(c.Value, c.FromVersion)
	if err != nil {
		return nil, err
	}
	return json.Marshal(results)
}

// Helper invokes a named helper exposed by the extension.
type Helper struct {
	SettingVersion string `json:"setting-version"`
	HelperName     string `json:"helper-name"`
	Args           []any  `json:"args,omitempty"`
}

func (c Helper) Run(ext *settings.Extension) (json.RawMessage, error) {
	result, err := ext.Helper(c.SettingVersion, c.HelperName, c.Args...)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{"result": result})
}

// Parse decodes a protocol request of the form {"<command>": {...}} into a
// runnable Command.
func Parse(payload json.RawMessage) (Command, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("proto1: decode request: %w", err)
	}
	if len(envelope) != 1 {
		return nil, fmt.Errorf("proto1: request must contain exactly one command, got %d", len(envelope))
	}

	for name, body := range envelope {
		command, err := newCommand(name)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(body, command); err != nil {
			return nil, fmt.Errorf("proto1: decode %s command: %w", name, err)
		}
		return deref(command), nil
	}
	return nil, fmt.Errorf("proto1: empty request")
}

func newCommand(name string) (any, error) {
	switch name {
	case "set":
		return &Set{}, nil
	case "generate":
		return &Generate{}, nil
	case "validate":
		return &Validate{}, nil
	case "migrate":
		return &Migrate{}, nil
	case "flood-migrate":
		return &FloodMigrate{}, nil
	case "helper":
		return &Helper{}, nil
	default:
		return nil, fmt.Errorf("proto1: unknown command %q", name)
	}
}

func deref(command any) Command {
	switch c := command.(type) {
	case *Set:
		return *c
	case *Generate:
		return *c
	case *Validate:
		return *c
	case *Migrate:
		return *c
	case *FloodMigrate:
		return *c
	case *Helper:
		return *c
	default:
		return nil
	}
}
