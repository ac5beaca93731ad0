package settings

import (
	"testing"
	"time"
)

type schemaFixture struct {
	Name     string            `json:"name" minLength:"1" maxLength:"64"`
	Mode     string            `json:"mode" enum:"on,off" default:"off"`
	Retries  int               `json:"retries" minimum:"0" maximum:"10"`
	Ratio    float64           `json:"ratio,omitempty"`
	Internal string            `json:"-"`
	Tags     []string          `json:"tags,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
	Deadline time.Time         `json:"deadline"`
	Fallback *string           `json:"fallback,omitempty"`
}

func TestGenerateSchemaFromStructTags(t *testing.T) {
	doc, err := GenerateSchema("demo", "v1", schemaFixture{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if doc.Extension != "demo" || doc.Version != "v1" || doc.Format != SchemaFormatJSONSchema {
		t.Fatalf("unexpected document identity: %+v", doc)
	}
	if doc.Document["type"] != "object" {
		t.Fatalf("expected object type, got %v", doc.Document["type"])
	}

	properties := doc.Document["properties"].(map[string]any)
	if _, ok := properties["Internal"]; ok {
		t.Fatalf("expected json:\"-\" field skipped")
	}

	name := properties["name"].(map[string]any)
	if name["type"] != "string" || name["minLength"] != 1 || name["maxLength"] != 64 {
		t.Fatalf("unexpected name schema: %v", name)
	}

	mode := properties["mode"].(map[string]any)
	if mode["default"] != "off" {
		t.Fatalf("expected default off, got %v", mode["default"])
	}
	enum, ok := mode["enum"].([]any)
	if !ok || len(enum) != 2 {
		t.Fatalf("unexpected enum: %v", mode["enum"])
	}

	retries := properties["retries"].(map[string]any)
	if retries["type"] != "integer" || retries["minimum"] != float64(0) || retries["maximum"] != float64(10) {
		t.Fatalf("unexpected retries schema: %v", retries)
	}

	deadline := properties["deadline"].(map[string]any)
	if deadline["type"] != "string" || deadline["format"] != "date-time" {
		t.Fatalf("unexpected deadline schema: %v", deadline)
	}

	tags := properties["tags"].(map[string]any)
	if tags["type"] != "array" {
		t.Fatalf("unexpected tags schema: %v", tags)
	}

	required, ok := doc.Document["required"].([]string)
	if !ok {
		t.Fatalf("expected required list, got %T", doc.Document["required"])
	}
	for _, name := range required {
		if name == "ratio" || name == "tags" || name == "fallback" {
			t.Fatalf("omitempty/pointer field %q should not be required", name)
		}
	}

	if doc.Digest == "" {
		t.Fatalf("expected digest")
	}
}

func TestGenerateSchemaDigestIsStable(t *testing.T) {
	first, err := GenerateSchema("demo", "v1", schemaFixture{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := GenerateSchema("demo", "v1", schemaFixture{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if first.Digest != second.Digest {
		t.Fatalf("expected stable digest, got %q vs %q", first.Digest, second.Digest)
	}
}
