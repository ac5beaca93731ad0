package settings

// ProgramCache stores compiled rule programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache registers a program cache used by rule evaluators.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *extensionConfig) {
		cfg.programCache = cache
	}
}
