package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context carries identifiers tied to a wire payload.
type Context struct {
	Extension string
	Version   string
}

// PreHook lets callers mutate or normalise the decoded payload before it is
// bound to the target type.
type PreHook func(Context, any) (any, error)

// PostHook lets callers adjust or validate the hydrated value after decoding.
type PostHook[T any] func(Context, *T) error

// CustomDecoder replaces the default JSON decoding when provided.
type CustomDecoder[T any] func(Context, json.RawMessage) (T, error)

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts wire payloads into strongly typed setting values.
type Decoder[T any] struct {
	preHooks     []PreHook
	postHooks    []PostHook[T]
	configureDec []func(*json.Decoder)
	custom       CustomDecoder[T]
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithUseNumber enables json.Decoder.UseNumber during decoding.
func WithUseNumber[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.UseNumber()
		})
	}
}

// WithDisallowUnknownFields invokes json.Decoder.DisallowUnknownFields.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.DisallowUnknownFields()
		})
	}
}

// WithDecoderConfig allows callers to configure the json.Decoder directly.
func WithDecoderConfig[T any](configure func(*json.Decoder)) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if configure != nil {
			d.configureDec = append(d.configureDec, configure)
		}
	}
}

// WithCustomDecoder replaces the default JSON decoding path.
func WithCustomDecoder[T any](decoder CustomDecoder[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.custom = decoder
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into the target type T applying configured hooks.
func (d *Decoder[T]) Decode(ctx Context, payload json.RawMessage) (T, error) {
	var zero T

	if len(payload) == 0 {
		return zero, fmt.Errorf("hydrate: payload is empty for version %q", ctx.Version)
	}

	current := payload
	if len(d.preHooks) > 0 {
		var decoded any
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return zero, fmt.Errorf("hydrate: parse payload for version %q: %w", ctx.Version, err)
		}
		for _, hook := range d.preHooks {
			if hook == nil {
				continue
			}
			next, err := hook(ctx, decoded)
			if err != nil {
				return zero, fmt.Errorf("hydrate: pre-hook for version %q failed: %w", ctx.Version, err)
			}
			if next != nil {
				decoded = next
			}
		}
		buffer, err := json.Marshal(decoded)
		if err != nil {
			return zero, fmt.Errorf("hydrate: marshal payload for version %q: %w", ctx.Version, err)
		}
		current = buffer
	}

	var result T
	if d.custom != nil {
		decoded, err := d.custom(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: custom decoder for version %q failed: %w", ctx.Version, err)
		}
		result = decoded
	} else {
		decoder := json.NewDecoder(bytes.NewReader(current))
		for _, configure := range d.configureDec {
			if configure != nil {
				configure(decoder)
			}
		}
		if err := decoder.Decode(&result); err != nil {
			return zero, fmt.Errorf("hydrate: decode version %q: %w", ctx.Version, err)
		}
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for version %q failed: %w", ctx.Version, err)
		}
	}

	return result, nil
}
