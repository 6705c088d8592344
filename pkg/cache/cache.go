// Package cache stores rendered artifacts and render plans.
//
// Rendering is deterministic, so any artifact is fully identified by the
// normalized parameters, the seed, the surface size and the engine policy.
// Keys are derived from those inputs by a [Keyer]; the [Cache] backends
// only move bytes.
//
// Backends:
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// TTLs per entry type. Artifacts never change for a given key, so the TTLs
// only bound disk and memory use.
const (
	TTLPlan     = 7 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// PlanKeyOpts identifies a render plan for one set of normalized params.
type PlanKeyOpts struct {
	Seed   float64 `json:"seed"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Policy string  `json:"policy"` // hash of the engine policy
}

// ArtifactKeyOpts identifies one encoded output.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Seed   float64 `json:"seed"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
	Policy string  `json:"policy"`
}

// Keyer derives cache keys. paramsHash is the hash of the normalized
// parameters, so raw records that normalize alike share entries.
type Keyer interface {
	PlanKey(paramsHash string, opts PlanKeyOpts) string
	ArtifactKey(paramsHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PlanKey returns the key for a render plan.
func (DefaultKeyer) PlanKey(paramsHash string, opts PlanKeyOpts) string {
	return hashKey("plan", paramsHash, opts)
}

// ArtifactKey returns the key for an encoded artifact.
func (DefaultKeyer) ArtifactKey(paramsHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", paramsHash, opts)
}
