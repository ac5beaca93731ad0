// Package datastore defines persistence-facing contracts for loading and
// saving serialized setting values, plus a small resolver that orchestrates
// loads and delegates migration to the core go-settings primitives.
//
// Responsibilities:
//   - Store only loads/saves a single value for a single Ref.
//   - Resolver loads a stored value and migrates it to the version the
//     caller wants by delegating to settings.Extension.
//   - The core settings package remains persistence-agnostic; all
//     persistence logic stays behind Store implementations supplied by
//     consumers.
package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrETagMismatch = errors.New("datastore: etag mismatch")

// Ref identifies one persisted value for one settings extension.
type Ref struct {
	Extension string
	Key       string
}

// Identifier provides a canonical storage key for the reference.
func (r Ref) Identifier() (string, error) {
	if r.Extension == "" {
		return "", fmt.Errorf("datastore: extension is required")
	}
	if r.Key == "" {
		return "", fmt.Errorf("datastore: key is required")
	}
	return fmt.Sprintf("%s/%s", r.Extension, r.Key), nil
}

// Meta is storage-owned metadata used for trace/audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	Version    string            `json:"version,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one serialized value for a single reference.
type Store interface {
	Load(ctx context.Context, ref Ref) (value json.RawMessage, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, value json.RawMessage, meta Meta) (Meta, error)
}
