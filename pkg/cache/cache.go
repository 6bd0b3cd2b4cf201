// Package cache stores the results of layout runs.
//
// A layout run is deterministic for a given configuration and seed, so its
// final snapshot can be reused. Keys come from a [Keyer]; values are opaque
// bytes (the pipeline stores JSON).
//
// Two implementations exist:
//
//   - [FileCache]: one file per entry below a directory, with optional TTL
//   - [NullCache]: stores nothing, used with --no-cache
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with expiring entries.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// SnapshotKey identifies the final snapshot of a run.
	SnapshotKey(configHash string, opts SnapshotKeyOpts) string
	// ArtifactKey identifies one rendered output of a snapshot.
	ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string
}

// SnapshotKeyOpts are the run options that change the final snapshot.
type SnapshotKeyOpts struct {
	Seed          uint64 `json:"seed"`
	Placement     string `json:"placement"`
	Steps         int    `json:"steps"`
	UntilFinished bool   `json:"until_finished"`
}

// ArtifactKeyOpts are the drawing options that change a rendered output.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Forces bool   `json:"forces,omitempty"`
	Labels bool   `json:"labels,omitempty"`
}

// DefaultKeyer hashes the key options with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) SnapshotKey(configHash string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", configHash, opts)
}

func (DefaultKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", snapshotHash, opts)
}
