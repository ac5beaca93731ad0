package settings

import "sort"

// Registry is an immutable mapping from version to its model capability.
// It is built once by the extension builder and never mutated afterwards, so
// it is safe for concurrent readers.
type Registry struct {
	models map[string]Model
}

func newRegistry(models []Model) (*Registry, error) {
	index := make(map[string]Model, len(models))
	for _, model := range models {
		if model == nil {
			return nil, &InvalidModelError{Reason: "nil model"}
		}
		version := model.Version()
		if version == "" {
			return nil, &InvalidModelError{Reason: "empty version"}
		}
		if _, exists := index[version]; exists {
			return nil, &DuplicateVersionError{Version: version}
		}
		index[version] = model
	}
	return &Registry{models: index}, nil
}

// Get retrieves the model for a given version.
func (r *Registry) Get(version string) (Model, bool) {
	model, ok := r.models[version]
	return model, ok
}

// Len reports the number of registered versions.
func (r *Registry) Len() int {
	return len(r.models)
}

// Range calls fn for every registered (version, model) pair in unspecified
// order, stopping early when fn returns false.
func (r *Registry) Range(fn func(version string, model Model) bool) {
	for version, model := range r.models {
		if !fn(version, model) {
			return
		}
	}
}

// Versions returns all registered versions sorted ascending.
func (r *Registry) Versions() []string {
	versions := make([]string, 0, len(r.models))
	for version := range r.models {
		versions = append(versions, version)
	}
	sort.Strings(versions)
	return versions
}
