package settings

import (
	"fmt"
	"strings"
)

// MigrationLoopError reports that a version is the migration target of more
// than one model. Raised during chain validation; fatal to the extension.
type MigrationLoopError struct {
	Version string
}

func (e *MigrationLoopError) Error() string {
	return fmt.Sprintf("settings: migration loop detected: multiple models use version %q as a migration target", e.Version)
}

// DisjointChainError reports that not every registered version is reachable
// from the validation starting point. Raised during chain validation.
type DisjointChainError struct {
	Unreachable []string
	Visited     []string
}

func (e *DisjointChainError) Error() string {
	return fmt.Sprintf("settings: disjoint migration chains: versions '%s' are not reachable from versions '%s'",
		strings.Join(e.Unreachable, ", "), strings.Join(e.Visited, ", "))
}

// IrreversibleChainError reports an edge whose reverse edge does not point
// back. Lhs points Direction to Fulcrum, but Fulcrum points the opposite way
// to Rhs (empty when it has no migration in that direction).
type IrreversibleChainError struct {
	Lhs       string
	Fulcrum   string
	Rhs       string
	Direction Direction
}

func (e *IrreversibleChainError) Error() string {
	rhs := e.Rhs
	if rhs == "" {
		rhs = "no migration"
	}
	return fmt.Sprintf("settings: irreversible migration chain: %s points %s to %s, which points %s to %s",
		e.Lhs, e.Direction, e.Fulcrum, e.Direction.Opposite(), rhs)
}

// NoSuchModelError reports a version with no registered model.
type NoSuchModelError struct {
	Version string
}

func (e *NoSuchModelError) Error() string {
	return fmt.Sprintf("settings: no model registered for version %q", e.Version)
}

// NoMigrationRouteError reports that no chain walk connects two versions.
type NoMigrationRouteError struct {
	From string
	To   string
}

func (e *NoMigrationRouteError) Error() string {
	return fmt.Sprintf("settings: no migration route from %q to %q", e.From, e.To)
}

// NoDefinedMigrationError reports a hop requested in a direction the model
// does not migrate. Unreachable when validation passed and the route came
// from the router; it indicates an engine bug, not bad input.
type NoDefinedMigrationError struct {
	Version   string
	Direction Direction
}

func (e *NoDefinedMigrationError) Error() string {
	return fmt.Sprintf("settings: no %s migration defined for version %q", e.Direction, e.Version)
}

// DowncastError reports a type mismatch between a migrated value and the
// model asked to operate on it. Like NoDefinedMigrationError this is an
// internal invariant violation.
type DowncastError struct {
	Version string
}

func (e *DowncastError) Error() string {
	return fmt.Sprintf("settings: failed to downcast migrated value as setting version %q", e.Version)
}

// SubMigrationError wraps a failure inside a user-supplied transform.
type SubMigrationError struct {
	From      string
	To        string
	Direction Direction
	Err       error
}

func (e *SubMigrationError) Error() string {
	return fmt.Sprintf("settings: %s migration of setting from %q to %q failed: %v",
		e.Direction, e.From, e.To, e.Err)
}

func (e *SubMigrationError) Unwrap() error {
	return e.Err
}

// ParseError wraps a failure decoding a wire JSON value.
type ParseError struct {
	Version string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("settings: failed to parse value for version %q: %v", e.Version, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SerializeError wraps a failure encoding a migration result as wire JSON.
type SerializeError struct {
	Version string
	Err     error
}

func (e *SerializeError) Error() string {
	return fmt.Sprintf("settings: failed to serialize value for version %q: %v", e.Version, e.Err)
}

func (e *SerializeError) Unwrap() error {
	return e.Err
}

// DuplicateVersionError reports two models registered under one version.
type DuplicateVersionError struct {
	Version string
}

func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("settings: multiple models registered for version %q", e.Version)
}

// InvalidModelError reports a model that cannot be registered at all.
type InvalidModelError struct {
	Reason string
}

func (e *InvalidModelError) Error() string {
	return fmt.Sprintf("settings: invalid model: %s", e.Reason)
}

// BuildError wraps any failure constructing an extension, including chain
// validation failures. An extension that fails to build never serves
// requests.
type BuildError struct {
	Extension string
	Err       error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("settings: building extension %q: %v", e.Extension, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
