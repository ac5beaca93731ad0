package settings

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

type schemaNode struct {
	Type       string
	Format     string
	Properties map[string]*schemaNode
	Required   []string
	Items      *schemaNode
	Enum       []any
	Default    any
	Minimum    *float64
	Maximum    *float64
	MinLength  *int
	MaxLength  *int
	Pattern    string
}

func newObjectNode() *schemaNode {
	return &schemaNode{
		Type:       "object",
		Properties: map[string]*schemaNode{},
	}
}

func (n *schemaNode) inlineSchema() map[string]any {
	result := map[string]any{}
	if n.Type != "" {
		result["type"] = n.Type
	}
	if n.Format != "" {
		result["format"] = n.Format
	}
	if n.Default != nil {
		result["default"] = n.Default
	}
	if len(n.Enum) > 0 {
		result["enum"] = n.Enum
	}
	if n.Minimum != nil {
		result["minimum"] = *n.Minimum
	}
	if n.Maximum != nil {
		result["maximum"] = *n.Maximum
	}
	if n.MinLength != nil {
		result["minLength"] = *n.MinLength
	}
	if n.MaxLength != nil {
		result["maxLength"] = *n.MaxLength
	}
	if n.Pattern != "" {
		result["pattern"] = n.Pattern
	}

	if len(n.Properties) > 0 || n.Type == "object" {
		props := make(map[string]any, len(n.Properties))
		names := make([]string, 0, len(n.Properties))
		for name := range n.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			props[name] = n.Properties[name].inlineSchema()
		}
		result["properties"] = props
	}

	if len(n.Required) > 0 {
		names := append([]string{}, n.Required...)
		sort.Strings(names)
		result["required"] = names
	}

	if n.Items != nil {
		result["items"] = n.Items.inlineSchema()
	}

	return result
}

type schemaBuilder struct {
	visited map[reflect.Type]bool
}

func buildSchemaGraph(value any) (*schemaNode, error) {
	builder := &schemaBuilder{visited: map[reflect.Type]bool{}}
	rv := reflect.ValueOf(value)
	var rt reflect.Type
	if rv.IsValid() {
		rt = rv.Type()
	}
	node, err := builder.build(rv, rt)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return newObjectNode(), nil
	}
	return node, nil
}

func (b *schemaBuilder) build(rv reflect.Value, rt reflect.Type) (*schemaNode, error) {
	if rt == nil {
		if rv.IsValid() {
			rt = rv.Type()
		} else {
			return newObjectNode(), nil
		}
	}

	for rt.Kind() == reflect.Pointer {
		if rv.IsValid() {
			if rv.IsNil() {
				rv = reflect.Value{}
			} else {
				rv = rv.Elem()
			}
		}
		rt = rt.Elem()
	}

	if rt.Kind() == reflect.Interface {
		if rv.IsValid() && !rv.IsNil() {
			return b.build(rv.Elem(), rv.Elem().Type())
		}
		return newObjectNode(), nil
	}

	if rt == reflect.TypeOf(time.Time{}) {
		return &schemaNode{
			Type:   "string",
			Format: "date-time",
		}, nil
	}

	switch rt.Kind() {
	case reflect.Bool:
		return &schemaNode{Type: "boolean"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return &schemaNode{Type: "integer"}, nil
	case reflect.Float32, reflect.Float64:
		return &schemaNode{Type: "number"}, nil
	case reflect.String:
		return &schemaNode{Type: "string"}, nil
	case reflect.Struct:
		return b.buildStruct(rv, rt)
	case reflect.Map:
		return b.buildMap(rv, rt)
	case reflect.Slice, reflect.Array:
		if rt.Kind() == reflect.Slice && rt.Elem().Kind() == reflect.Uint8 {
			return &schemaNode{
				Type:   "string",
				Format: "byte",
			}, nil
		}
		return b.buildSlice(rv, rt)
	default:
		return &schemaNode{
			Type:   "string",
			Format: fmt.Sprintf("go:%s", rt.String()),
		}, nil
	}
}

func (b *schemaBuilder) buildStruct(rv reflect.Value, rt reflect.Type) (*schemaNode, error) {
	if b.visited[rt] {
		return newObjectNode(), nil
	}
	b.visited[rt] = true
	defer delete(b.visited, rt)

	if !rv.IsValid() {
		rv = reflect.Zero(rt)
	}

	node := newObjectNode()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name, omitEmpty, skip := parseJSONName(field)
		if skip {
			continue
		}
		fieldValue := reflect.Value{}
		if rv.IsValid() {
			fieldValue = rv.Field(i)
		}

		child, err := b.build(fieldValue, field.Type)
		if err != nil {
			return nil, err
		}

		if err := applyFieldMetadata(child, field); err != nil {
			return nil, err
		}

		node.Properties[name] = child

		if isFieldRequired(field, omitEmpty) {
			node.Required = append(node.Required, name)
		}
	}

	return node, nil
}

func (b *schemaBuilder) buildMap(rv reflect.Value, rt reflect.Type) (*schemaNode, error) {
	if rt.Key().Kind() != reflect.String {
		return nil, fmt.Errorf("settings: map key type %s unsupported in schema", rt.Key())
	}

	node := newObjectNode()
	if !rv.IsValid() || rv.Len() == 0 {
		return node, nil
	}

	keys := rv.MapKeys()
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, key.String())
	}
	sort.Strings(names)

	for _, name := range names {
		value := rv.MapIndex(reflect.ValueOf(name))
		child, err := b.build(value, value.Type())
		if err != nil {
			return nil, err
		}
		node.Properties[name] = child
	}

	return node, nil
}

func (b *schemaBuilder) buildSlice(rv reflect.Value, rt reflect.Type) (*schemaNode, error) {
	node := &schemaNode{
		Type: "array",
	}
	elemType := rt.Elem()
	var elemValue reflect.Value
	if rv.IsValid() && rv.Len() > 0 {
		elemValue = rv.Index(0)
	} else {
		elemValue = reflect.Zero(elemType)
	}

	child, err := b.build(elemValue, elemType)
	if err != nil {
		return nil, err
	}
	node.Items = child
	return node, nil
}

func parseJSONName(field reflect.StructField) (name string, omitEmpty bool, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name, false, false
	}

	segments := strings.Split(tag, ",")
	if segments[0] == "-" {
		return "", false, true
	}

	name = segments[0]
	if name == "" {
		name = field.Name
	}
	for _, segment := range segments[1:] {
		if segment == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

func isFieldRequired(field reflect.StructField, omitEmpty bool) bool {
	if omitEmpty {
		return false
	}
	return field.Type.Kind() != reflect.Pointer
}

func applyFieldMetadata(node *schemaNode, field reflect.StructField) error {
	baseType := field.Type
	for baseType.Kind() == reflect.Pointer {
		baseType = baseType.Elem()
	}

	if format := field.Tag.Get("format"); format != "" {
		node.Format = format
	}

	if def := field.Tag.Get("default"); def != "" {
		value, err := parseScalar(baseType, def)
		if err != nil {
			return fmt.Errorf("settings: parse default for field %s: %w", field.Name, err)
		}
		node.Default = value
	}

	if enum := field.Tag.Get("enum"); enum != "" {
		values, err := parseEnum(baseType, enum)
		if err != nil {
			return fmt.Errorf("settings: parse enum for field %s: %w", field.Name, err)
		}
		node.Enum = values
	}

	if err := applyNumericConstraints(node, baseType, field); err != nil {
		return err
	}

	return applyStringConstraints(node, baseType, field)
}

func applyNumericConstraints(node *schemaNode, baseType reflect.Type, field reflect.StructField) error {
	if !isNumericKind(baseType.Kind()) {
		return nil
	}

	assign := func(target **float64, raw string) error {
		if raw == "" {
			return nil
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		*target = &value
		return nil
	}

	if err := assign(&node.Minimum, field.Tag.Get("minimum")); err != nil {
		return fmt.Errorf("settings: parse minimum for field %s: %w", field.Name, err)
	}
	if err := assign(&node.Maximum, field.Tag.Get("maximum")); err != nil {
		return fmt.Errorf("settings: parse maximum for field %s: %w", field.Name, err)
	}

	return nil
}

func applyStringConstraints(node *schemaNode, baseType reflect.Type, field reflect.StructField) error {
	if baseType.Kind() != reflect.String {
		return nil
	}

	assign := func(target **int, raw string) error {
		if raw == "" {
			return nil
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		*target = &value
		return nil
	}

	if err := assign(&node.MinLength, field.Tag.Get("minLength")); err != nil {
		return fmt.Errorf("settings: parse minLength for field %s: %w", field.Name, err)
	}
	if err := assign(&node.MaxLength, field.Tag.Get("maxLength")); err != nil {
		return fmt.Errorf("settings: parse maxLength for field %s: %w", field.Name, err)
	}
	if pattern := field.Tag.Get("pattern"); pattern != "" {
		node.Pattern = pattern
	}

	return nil
}

func parseScalar(t reflect.Type, raw string) (any, error) {
	switch t.Kind() {
	case reflect.Bool:
		return strconv.ParseBool(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.ParseInt(raw, 10, t.Bits())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.ParseUint(raw, 10, t.Bits())
	case reflect.Float32, reflect.Float64:
		return strconv.ParseFloat(raw, t.Bits())
	default:
		return raw, nil
	}
}

func parseEnum(t reflect.Type, raw string) ([]any, error) {
	parts := strings.Split(raw, ",")
	values := make([]any, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value, err := parseScalar(t, part)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

func isNumericKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
