package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, e.g.
// separate API deployments sharing one Redis.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// RenderKey generates a prefixed render key.
func (k *ScopedKeyer) RenderKey(imageHash, layoutHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(imageHash, layoutHash, opts)
}
