package settings

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Helper is a callable exposed to the template-helper operation and to rule
// evaluators.
type Helper func(args ...any) (any, error)

// HelperRegistry stores helpers keyed by name. Lookups are case-insensitive.
type HelperRegistry struct {
	mu      sync.RWMutex
	helpers map[string]Helper
}

// NewHelperRegistry constructs an empty registry.
func NewHelperRegistry() *HelperRegistry {
	return &HelperRegistry{
		helpers: make(map[string]Helper),
	}
}

// Register stores fn under name guarding against duplicates.
func (r *HelperRegistry) Register(name string, fn Helper) error {
	if fn == nil {
		return fmt.Errorf("settings: helper %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("settings: helper name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.helpers == nil {
		r.helpers = make(map[string]Helper)
	}
	key := strings.ToLower(name)
	if _, exists := r.helpers[key]; exists {
		return fmt.Errorf("settings: helper %q already registered", name)
	}
	r.helpers[key] = fn
	return nil
}

// Clone returns a shallow copy of the registry.
func (r *HelperRegistry) Clone() *HelperRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &HelperRegistry{
		helpers: make(map[string]Helper, len(r.helpers)),
	}
	for name, fn := range r.helpers {
		clone.helpers[name] = fn
	}
	return clone
}

// Call executes the helper registered for name.
func (r *HelperRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("settings: helper registry is nil")
	}
	r.mu.RLock()
	fn := r.helpers[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("settings: helper %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered helper names sorted alphabetically.
func (r *HelperRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.helpers))
	for name := range r.helpers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithHelperRegistry configures an extension to use registry.
func WithHelperRegistry(registry *HelperRegistry) Option {
	return func(cfg *extensionConfig) {
		if registry == nil {
			return
		}
		cfg.helpers = registry.Clone()
	}
}

// WithHelper registers fn under name for the extension.
func WithHelper(name string, fn Helper) Option {
	return func(cfg *extensionConfig) {
		if cfg.helpers == nil {
			cfg.helpers = NewHelperRegistry()
		}
		_ = cfg.helpers.Register(name, fn)
	}
}
