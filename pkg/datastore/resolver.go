package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	settings "github.com/goliatone/go-settings"
)

// Resolver loads stored values and migrates them to the version callers
// expect. When Persist is set, the migrated value is written back so the
// next load skips the migration.
type Resolver struct {
	Store     Store
	Extension *settings.Extension
	Persist   bool
}

// Mutator applies an in-place change to a decoded value.
type Mutator func(value map[string]any) error

// Resolve loads the value for key and returns it at targetVersion, migrating
// when the stored version differs.
func (r Resolver) Resolve(ctx context.Context, key, targetVersion string) (json.RawMessage, Meta, error) {
	if r.Store == nil {
		return nil, Meta{}, fmt.Errorf("datastore: store is required")
	}
	if r.Extension == nil {
		return nil, Meta{}, fmt.Errorf("datastore: extension is required")
	}

	ref := Ref{Extension: r.Extension.Name(), Key: key}
	value, meta, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("datastore: load %q: %w", key, err)
	}
	if !ok {
		return nil, Meta{}, fmt.Errorf("datastore: no value stored for %q", key)
	}
	if meta.Version == "" {
		return nil, meta, fmt.Errorf("datastore: stored value for %q has no version", key)
	}
	if meta.Version == targetVersion {
		return value, meta, nil
	}

	migrated, err := r.Extension.Migrate(value, meta.Version, targetVersion)
	if err != nil {
		return nil, meta, err
	}
	if !r.Persist {
		meta.Version = targetVersion
		return migrated, meta, nil
	}

	saved := meta
	saved.Version = targetVersion
	saved.SnapshotID = uuid.NewString()
	saved.UpdatedAt = time.Now()
	savedMeta, err := r.Store.Save(ctx, ref, migrated, saved)
	if err != nil {
		return nil, meta, fmt.Errorf("datastore: persist migrated %q: %w", key, err)
	}
	return migrated, savedMeta, nil
}

// Mutate loads the value for key at version, applies fn, validates the
// result with the extension, then saves. meta.ETag enforces optimistic
// concurrency when both sides carry one.
func (r Resolver) Mutate(ctx context.Context, key, version string, meta Meta, fn Mutator) (json.RawMessage, Meta, error) {
	if r.Store == nil {
		return nil, Meta{}, fmt.Errorf("datastore: store is required")
	}
	if r.Extension == nil {
		return nil, Meta{}, fmt.Errorf("datastore: extension is required")
	}
	if fn == nil {
		return nil, Meta{}, fmt.Errorf("datastore: mutator is required")
	}

	value, loadedMeta, err := r.Resolve(ctx, key, version)
	if err != nil {
		return nil, Meta{}, err
	}
	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return nil, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	decoded := map[string]any{}
	if err := json.Unmarshal(value, &decoded); err != nil {
		return nil, loadedMeta, fmt.Errorf("datastore: decode %q: %w", key, err)
	}
	if err := fn(decoded); err != nil {
		return nil, loadedMeta, err
	}
	mutated, err := json.Marshal(decoded)
	if err != nil {
		return nil, loadedMeta, fmt.Errorf("datastore: encode %q: %w", key, err)
	}

	ok, err := r.Extension.Validate(version, mutated, nil)
	if err != nil {
		return nil, loadedMeta, err
	}
	if !ok {
		return nil, loadedMeta, fmt.Errorf("datastore: mutated value for %q failed validation", key)
	}

	saveMeta := mergeMeta(loadedMeta, meta)
	saveMeta.Version = version
	saveMeta.SnapshotID = uuid.NewString()
	saveMeta.UpdatedAt = time.Now()

	ref := Ref{Extension: r.Extension.Name(), Key: key}
	savedMeta, err := r.Store.Save(ctx, ref, mutated, saveMeta)
	if err != nil {
		return nil, loadedMeta, fmt.Errorf("datastore: save %q: %w", key, err)
	}
	return mutated, savedMeta, nil
}

func mergeMeta(loaded, supplied Meta) Meta {
	out := loaded
	if supplied.ETag != "" {
		out.ETag = supplied.ETag
	}
	if len(supplied.Extra) > 0 {
		if out.Extra == nil {
			out.Extra = map[string]string{}
		} else {
			merged := make(map[string]string, len(out.Extra)+len(supplied.Extra))
			for k, v := range out.Extra {
				merged[k] = v
			}
			out.Extra = merged
		}
		for k, v := range supplied.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
