package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments (or the
// CLI and the server) can share one Redis without colliding.
//
// Example usage:
//
//	// Server keys live under their own namespace
//	serverKeyer := NewScopedKeyer(NewDefaultKeyer(), "tapestry:server:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PlanKey generates a prefixed key for render plan caching.
func (k *ScopedKeyer) PlanKey(paramsHash string, opts PlanKeyOpts) string {
	return k.prefix + k.inner.PlanKey(paramsHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(paramsHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(paramsHash, opts)
}
