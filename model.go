package settings

import (
	"encoding/json"

	"github.com/goliatone/go-settings/internal/hydrate"
	"github.com/goliatone/go-settings/internal/merge"
)

// GenerateResult is the outcome of generating a settings value: either a
// complete value ready for use, or a partial one that needs more dependent
// settings before it can be completed.
type GenerateResult[T any] struct {
	Complete bool `json:"complete"`
	Value    T    `json:"value"`
}

// Completed wraps a fully generated value.
func Completed[T any](value T) GenerateResult[T] {
	return GenerateResult[T]{Complete: true, Value: value}
}

// NeedsData wraps a partially generated value awaiting dependent settings.
func NeedsData[T any](partial T) GenerateResult[T] {
	return GenerateResult[T]{Value: partial}
}

// SettingsModel describes one version of a setting: how incoming values are
// set, how defaults are generated, and how candidate values are validated.
type SettingsModel[T any] interface {
	Version() string
	Set(current *T, target T) (T, error)
	Generate(partial *T, dependent json.RawMessage) (GenerateResult[T], error)
	Validate(value T, validated json.RawMessage) (bool, error)
}

// LinearlyMigrateable extends SettingsModel with links to the neighboring
// versions in a linear migration chain. An empty target version marks the
// end of the chain in that direction. MigrateForward and MigrateBackward
// return the neighbor's concrete value; the result is typed any because the
// neighbor's type is erased at this boundary.
type LinearlyMigrateable[T any] interface {
	SettingsModel[T]

	MigratesForwardTo() string
	MigrateForward(value T) (any, error)

	MigratesBackwardTo() string
	MigrateBackward(value T) (any, error)
}

// RuleCarrier is implemented by models that declare expression-based
// validation rules in addition to their own Validate method.
type RuleCarrier interface {
	ValidationRules() []string
}

// Model is the type-erased capability the migration engine consumes for each
// registered version.
type Model interface {
	Version() string
	// MigratesTo reports the neighboring version in the given direction.
	// ok is false at a chain end.
	MigratesTo(d Direction) (version string, ok bool)
	// Migrate applies the model's transform for the given direction to a
	// value of this model's concrete type, producing the neighbor's value.
	Migrate(current any, d Direction) (any, error)
	// Serialize encodes a value of this model's concrete type as wire JSON.
	Serialize(current any) (json.RawMessage, error)
}

// WireModel extends Model with the wire-facing operations the extension
// surface needs: parsing incoming JSON and running set/generate/validate
// against it.
type WireModel interface {
	Model

	ParseWire(value json.RawMessage) (any, error)
	SetWire(target, current json.RawMessage) (json.RawMessage, error)
	GenerateWire(partial, dependent json.RawMessage) (json.RawMessage, error)
	ValidateWire(value, validated json.RawMessage) (bool, error)
}

// Setting adapts a LinearlyMigrateable implementation to the erased WireModel
// interface used by the registry and the migrator. Downcasts happen only at
// the transform/serialize boundaries; a downcast failure indicates a bug in
// routing, not bad input.
type Setting[T any] struct {
	impl    LinearlyMigrateable[T]
	decoder *hydrate.Decoder[T]
}

// NewSetting wraps impl for registration with an extension builder.
func NewSetting[T any](impl LinearlyMigrateable[T], opts ...hydrate.DecoderOption[T]) *Setting[T] {
	return &Setting[T]{
		impl:    impl,
		decoder: hydrate.NewDecoder(opts...),
	}
}

// Version reports the version this setting models.
func (s *Setting[T]) Version() string {
	return s.impl.Version()
}

// MigratesTo reports the neighbor version in the given direction.
func (s *Setting[T]) MigratesTo(d Direction) (string, bool) {
	var target string
	if d == Forward {
		target = s.impl.MigratesForwardTo()
	} else {
		target = s.impl.MigratesBackwardTo()
	}
	return target, target != ""
}

// Migrate transforms current one hop in the given direction.
func (s *Setting[T]) Migrate(current any, d Direction) (any, error) {
	value, err := s.downcast(current)
	if err != nil {
		return nil, err
	}
	to, ok := s.MigratesTo(d)
	if !ok {
		return nil, &NoDefinedMigrationError{Version: s.Version(), Direction: d}
	}

	var next any
	if d == Forward {
		next, err = s.impl.MigrateForward(value)
	} else {
		next, err = s.impl.MigrateBackward(value)
	}
	if err != nil {
		return nil, &SubMigrationError{From: s.Version(), To: to, Direction: d, Err: err}
	}
	return next, nil
}

// Serialize encodes current as wire JSON.
func (s *Setting[T]) Serialize(current any) (json.RawMessage, error) {
	value, err := s.downcast(current)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, &SerializeError{Version: s.Version(), Err: err}
	}
	return data, nil
}

// ParseWire decodes wire JSON into this setting's concrete value type.
func (s *Setting[T]) ParseWire(value json.RawMessage) (any, error) {
	decoded, err := s.decode(value)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

// SetWire runs the model's Set operation against wire JSON inputs. current
// may be nil when there is no existing value.
func (s *Setting[T]) SetWire(target, current json.RawMessage) (json.RawMessage, error) {
	targetValue, err := s.decode(target)
	if err != nil {
		return nil, err
	}
	var currentValue *T
	if len(current) > 0 {
		decoded, err := s.decode(current)
		if err != nil {
			return nil, err
		}
		currentValue = &decoded
	}
	result, err := s.impl.Set(currentValue, targetValue)
	if err != nil {
		return nil, err
	}
	return s.Serialize(result)
}

// GenerateWire runs the model's Generate operation. When the model produces a
// complete value and an existing partial was supplied, the partial's explicit
// data wins over generated defaults.
func (s *Setting[T]) GenerateWire(partial, dependent json.RawMessage) (json.RawMessage, error) {
	var partialValue *T
	if len(partial) > 0 {
		decoded, err := s.decode(partial)
		if err != nil {
			return nil, err
		}
		partialValue = &decoded
	}
	result, err := s.impl.Generate(partialValue, dependent)
	if err != nil {
		return nil, err
	}
	if result.Complete && partialValue != nil {
		result.Value = merge.Merge(*partialValue, result.Value)
	}
	value, err := json.Marshal(result.Value)
	if err != nil {
		return nil, &SerializeError{Version: s.Version(), Err: err}
	}
	return json.Marshal(wireGenerateResult{Complete: result.Complete, Value: value})
}

// ValidateWire runs the model's Validate operation against wire JSON.
func (s *Setting[T]) ValidateWire(value, validated json.RawMessage) (bool, error) {
	decoded, err := s.decode(value)
	if err != nil {
		return false, err
	}
	return s.impl.Validate(decoded, validated)
}

// ValidationRules surfaces rules declared by the wrapped implementation.
func (s *Setting[T]) ValidationRules() []string {
	if carrier, ok := any(s.impl).(RuleCarrier); ok {
		return carrier.ValidationRules()
	}
	return nil
}

// Zero returns the zero value of this setting's concrete type, used by
// schema generation.
func (s *Setting[T]) Zero() any {
	var zero T
	return zero
}

func (s *Setting[T]) decode(value json.RawMessage) (T, error) {
	return s.decoder.Decode(hydrate.Context{Version: s.Version()}, value)
}

func (s *Setting[T]) downcast(current any) (T, error) {
	value, ok := current.(T)
	if !ok {
		var zero T
		return zero, &DowncastError{Version: s.Version()}
	}
	return value, nil
}

type wireGenerateResult struct {
	Complete bool            `json:"complete"`
	Value    json.RawMessage `json:"value"`
}
