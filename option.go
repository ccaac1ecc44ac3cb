package memdex

// TreeOptions configures optional tree behavior.
type TreeOptions[K comparable, V any] struct {
	logger        Logger
	cacheCapacity uint32         // Number of find-cache slots. 0 disables the cache.
	cacheHash     func(K) uint32 // Key hasher for the find cache.
}

// DefaultTreeOptions returns the default configuration: diagnostics discarded,
// no find cache.
func DefaultTreeOptions[K comparable, V any]() TreeOptions[K, V] {
	return TreeOptions[K, V]{
		logger: DiscardLogger{},
	}
}

// Option configures tree options using the functional options pattern.
type Option[K comparable, V any] func(*TreeOptions[K, V])

// WithLogger routes structural diagnostics to log. A *slog.Logger satisfies
// Logger directly; the default discards everything.
//
//goland:noinspection GoUnusedExportedFunction
func WithLogger[K comparable, V any](log Logger) Option[K, V] {
	return func(opts *TreeOptions[K, V]) {
		opts.logger = log
	}
}

// WithFindCache memoizes Find results in an LRU with the given number of
// slots. hash must hash keys uniformly; see HashString, HashInt, and friends
// for the common key types. The cache is kept fresh by Insert, Erase, and
// Clear, and is bypassed by Range and cursors.
//
// A cached tree mutates internal state on Find, so the external-locking
// contract tightens: Find counts as a write.
//
//goland:noinspection GoUnusedExportedFunction
func WithFindCache[K comparable, V any](capacity uint32, hash func(K) uint32) Option[K, V] {
	return func(opts *TreeOptions[K, V]) {
		opts.cacheCapacity = capacity
		opts.cacheHash = hash
	}
}
