package proto1_test

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"testing"

	settings "github.com/goliatone/go-settings"
	"github.com/goliatone/go-settings/pkg/proto1"
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
		WithOptions(settings.WithHelper("shout", func(args ...any) (any, error) {
			input, _ := args[0].(string)
			return strings.ToUpper(input), nil
		})).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return ext
}

func run(t *testing.T, ext *settings.Extension, request string) json.RawMessage {
	t.Helper()
	command, err := proto1.Parse(json.RawMessage(request))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	result, err := command.Run(ext)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return result
}

func TestParseRejectsMalformedRequests(t *testing.T) {
	if _, err := proto1.Parse(json.RawMessage(`not json`)); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := proto1.Parse(json.RawMessage(`{}`)); err == nil {
		t.Fatalf("expected error for empty envelope")
	}
	if _, err := proto1.Parse(json.RawMessage(`{"set":{},"migrate":{}}`)); err == nil {
		t.Fatalf("expected error for multiple commands")
	}
	if _, err := proto1.Parse(json.RawMessage(`{"rollback":{}}`)); err == nil {
		t.Fatalf("expected error for unknown command")
	}
}

func TestSetCommand(t *testing.T) {
	ext := buildExtension(t)
	result := run(t, ext, `{"set":{"setting-version":"v1","value":{"motd":"hi"}}}`)

	var value motdV1
	if err := json.Unmarshal(result, &value); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if value.Motd != "hi" {
		t.Fatalf("unexpected value: %q", value.Motd)
	}
}

func TestGenerateCommand(t *testing.T) {
	ext := buildExtension(t)
	result := run(t, ext, `{"generate":{"setting-version":"v1"}}`)

	var generated struct {
		Complete bool            `json:"complete"`
		Value    json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(result, &generated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !generated.Complete {
		t.Fatalf("expected complete result")
	}
}

func TestValidateCommand(t *testing.T) {
	ext := buildExtension(t)
	result := run(t, ext, `{"validate":{"setting-version":"v1","value":{"motd":"hi"}}}`)

	var verdict map[string]bool
	if err := json.Unmarshal(result, &verdict); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !verdict["valid"] {
		t.Fatalf("expected valid verdict, got %v", verdict)
	}
}

func TestMigrateCommand(t *testing.T) {
	ext := buildExtension(t)
	result := run(t, ext, `{"migrate":{"value":{"motd":"hello world"},"from-version":"v1","target-version":"v2"}}`)

	var value motdV2
	if err := json.Unmarshal(result, &value); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(value.Motd, []string{"hello", "world"}) {
		t.Fatalf("unexpected value: %v", value.Motd)
	}
}

func TestFloodMigrateCommand(t *testing.T) {
	ext := buildExtension(t)
	result := run(t, ext, `{"flood-migrate":{"value":{"motd":["hi","there"]},"from-version":"v2"}}`)

	var results []settings.MigrationResult
	if err := json.Unmarshal(result, &results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results) != 2 || results[0].Version != "v1" || results[1].Version != "v2" {
		t.Fatalf("unexpected flood results: %+v", results)
	}
}

func TestHelperCommand(t *testing.T) {
	ext := buildExtension(t)
	result := run(t, ext, `{"helper":{"setting-version":"v1","helper-name":"shout","args":["motd"]}}`)

	var response map[string]any
	if err := json.Unmarshal(result, &response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if response["result"] != "MOTD" {
		t.Fatalf("unexpected helper result: %v", response)
	}
}
