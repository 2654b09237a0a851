package cache

// NamespacedKeyer keeps the entries of one deployment apart from others that
// share a Redis or Mongo backend. Keys read "<namespace>/<key>".
//
//	keyer := WithNamespace(nil, "staging")
type NamespacedKeyer struct {
	inner     Keyer
	namespace string
}

// WithNamespace places the keys of inner under namespace. A nil inner uses
// [DefaultKeyer]; an empty namespace returns inner unchanged.
func WithNamespace(inner Keyer, namespace string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if namespace == "" {
		return inner
	}
	return &NamespacedKeyer{inner: inner, namespace: namespace}
}

// Namespace returns the namespace of every key.
func (k *NamespacedKeyer) Namespace() string { return k.namespace }

func (k *NamespacedKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return k.namespace + "/" + k.inner.LayoutKey(docHash, opts)
}

func (k *NamespacedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.namespace + "/" + k.inner.ArtifactKey(layoutHash, opts)
}
