package settings

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// SchemaFormat identifies the representation a schema document encodes.
type SchemaFormat string

const (
	// SchemaFormatJSONSchema represents JSON Schema compatible documents.
	SchemaFormatJSONSchema SchemaFormat = "jsonschema"
)

// SchemaDocument describes the value shape of one setting version.
type SchemaDocument struct {
	Extension string         `json:"extension"`
	Version   string         `json:"version"`
	Format    SchemaFormat   `json:"format"`
	Document  map[string]any `json:"document"`
	Digest    string         `json:"digest"`
}

// GenerateSchema derives a JSON schema document from the zero value of a
// setting's concrete type. Struct tags refine the output: json controls
// naming, and format, default, enum, minimum, maximum, minLength, maxLength
// and pattern map to the matching schema keywords.
func GenerateSchema(extension, version string, zero any) (SchemaDocument, error) {
	node, err := buildSchemaGraph(zero)
	if err != nil {
		return SchemaDocument{}, err
	}
	document := node.inlineSchema()
	return SchemaDocument{
		Extension: extension,
		Version:   version,
		Format:    SchemaFormatJSONSchema,
		Document:  document,
		Digest:    digestSchema(document),
	}, nil
}

func digestSchema(document map[string]any) string {
	data, err := json.Marshal(document)
	if err != nil {
		// json.Marshal should never fail for the constructed payload; fall
		// back to an empty digest to avoid panics.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
