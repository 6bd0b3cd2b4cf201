package cache

// ScopedKeyer prefixes every key of another Keyer. The CLI scopes keys by
// program version, so a new release never reads snapshots an older
// simulation produced:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.2.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner; a nil inner means [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) SnapshotKey(configHash string, opts SnapshotKeyOpts) string {
	return k.prefix + k.inner.SnapshotKey(configHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(snapshotHash, opts)
}
