package settings

import "fmt"

// ExtensionBuilder assembles an Extension from versioned models and options.
// Build validates the whole migration chain up front so a malformed chain is
// rejected before any migration runs.
type ExtensionBuilder struct {
	name   string
	models []Model
	opts   []Option
}

// NewExtensionBuilder starts building an extension with the given name.
func NewExtensionBuilder(name string) *ExtensionBuilder {
	return &ExtensionBuilder{name: name}
}

// WithModels registers model capabilities, one per version.
func (b *ExtensionBuilder) WithModels(models ...Model) *ExtensionBuilder {
	b.models = append(b.models, models...)
	return b
}

// WithOptions appends configuration options applied at Build time.
func (b *ExtensionBuilder) WithOptions(opts ...Option) *ExtensionBuilder {
	b.opts = append(b.opts, opts...)
	return b
}

// Build validates the registered models and their migration chain, returning
// a ready extension. Any structural failure is wrapped in a BuildError.
func (b *ExtensionBuilder) Build() (*Extension, error) {
	if b.name == "" {
		return nil, &BuildError{Extension: b.name, Err: fmt.Errorf("extension name must not be empty")}
	}
	registry, err := newRegistry(b.models)
	if err != nil {
		return nil, &BuildError{Extension: b.name, Err: err}
	}
	if err := validateChain(registry); err != nil {
		return nil, &BuildError{Extension: b.name, Err: err}
	}
	cfg := applyOptions(b.opts)
	if cfg.evaluator == nil {
		cfg.evaluator = defaultEvaluator(cfg)
	}
	return &Extension{
		name:     b.name,
		registry: registry,
		cfg:      cfg,
	}, nil
}
