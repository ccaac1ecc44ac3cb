package memdex

import (
	"cmp"
	"fmt"

	"memdex/internal/slot"
)

// MinOrder is the smallest fan-out bound a tree can be built with. Below it
// a node could not be split into two halves that both satisfy the minimum
// occupancy.
const MinOrder = 3

// Tree is an in-memory ordered key/value index backed by a B+Tree of the
// given order. All entries live in the leaves, which are chained in key
// order; internal nodes carry routing separators only. See the package
// documentation for the concurrency contract.
type Tree[K comparable, V any] struct {
	root *node[K, V]
	cmp  func(a, b K) int

	order   int
	maxKeys int
	minKeys int

	length int
	epoch  uint64 // bumped on every mutation, invalidates outstanding cursors

	logger Logger
	cache  *findCache[K, V]
}

// New creates an empty tree of the given order using the natural ordering
// of K. The order bounds node fan-out: at most order children per internal
// node and order-1 keys per node.
func New[K cmp.Ordered, V any](order int, opts ...Option[K, V]) (*Tree[K, V], error) {
	return NewFunc[K, V](order, cmp.Compare[K], opts...)
}

// NewFunc creates an empty tree of the given order using an explicit
// three-way comparator: negative when a sorts before b, zero when they are
// equal, positive when a sorts after b. Keys the comparator reports equal
// are the same key to the tree, regardless of ==.
func NewFunc[K comparable, V any](order int, compare func(a, b K) int, opts ...Option[K, V]) (*Tree[K, V], error) {
	if order < MinOrder {
		return nil, ErrInvalidOrder
	}
	if compare == nil {
		return nil, ErrNilCompare
	}

	options := DefaultTreeOptions[K, V]()
	for _, opt := range opts {
		opt(&options)
	}

	t := &Tree[K, V]{
		cmp:     compare,
		order:   order,
		maxKeys: order - 1,
		minKeys: (order+1)/2 - 1, // ceil(order/2) - 1
		logger:  options.logger,
	}
	t.root = t.newLeaf()

	if options.cacheCapacity > 0 {
		if options.cacheHash == nil {
			return nil, ErrNoCacheHasher
		}
		cache, err := newFindCache[K, V](options.cacheCapacity, options.cacheHash)
		if err != nil {
			return nil, err
		}
		t.cache = cache
	}

	return t, nil
}

// Find returns the value stored under key.
func (t *Tree[K, V]) Find(key K) (V, bool) {
	if v, ok := t.cache.get(key); ok {
		return v, true
	}

	leaf := t.findLeaf(key)
	pos, found := slot.Search(leaf.keys, key, t.cmp)
	if !found {
		var zero V
		return zero, false
	}
	t.cache.put(leaf.keys[pos], leaf.values[pos])
	return leaf.values[pos], true
}

// Insert stores value under key, overwriting the value of an existing key in
// place. Inserting into a full leaf splits it; splits can cascade to the
// root and grow the tree by one level.
func (t *Tree[K, V]) Insert(key K, value V) {
	t.epoch++

	leaf := t.findLeaf(key)
	pos, found := slot.Search(leaf.keys, key, t.cmp)
	if found {
		leaf.values[pos] = value
		t.cache.put(leaf.keys[pos], value)
		return
	}

	leaf.keys = slot.Insert(leaf.keys, pos, key)
	leaf.values = slot.Insert(leaf.values, pos, value)
	t.length++
	t.cache.put(key, value)

	if len(leaf.keys) > t.maxKeys {
		t.splitLeaf(leaf)
	} else if pos == 0 {
		// The leaf's minimum changed without a split; the separator that
		// routes into it must follow.
		t.syncSeparator(leaf)
	}
}

// Erase removes key and rebalances the tree. It reports whether the key was
// present. Removing from a minimally filled leaf borrows from a sibling or
// merges; merges can cascade to the root and shrink the tree by one level.
func (t *Tree[K, V]) Erase(key K) bool {
	leaf := t.findLeaf(key)
	pos, found := slot.Search(leaf.keys, key, t.cmp)
	if !found {
		return false
	}

	t.epoch++
	t.cache.evict(leaf.keys[pos])
	leaf.keys = slot.Remove(leaf.keys, pos)
	leaf.values = slot.Remove(leaf.values, pos)
	t.length--

	if leaf == t.root {
		// A root leaf has no minimum occupancy and no separator above it.
		// Zero keys here is the valid empty tree.
		return true
	}

	if len(leaf.keys) < t.minKeys {
		leaf = t.rebalance(leaf)
	}
	if pos == 0 {
		t.syncSeparator(leaf)
	}
	return true
}

// Range returns the values for all keys in [start, end], ascending. Both
// bounds are inclusive; a start greater than end yields nil. The scan
// descends once and then follows the leaf chain.
func (t *Tree[K, V]) Range(start, end K) []V {
	if t.cmp(start, end) > 0 {
		return nil
	}

	var out []V
	leaf := t.findLeaf(start)
	pos, _ := slot.Search(leaf.keys, start, t.cmp)
	for leaf != nil {
		for ; pos < len(leaf.keys); pos++ {
			if t.cmp(leaf.keys[pos], end) > 0 {
				return out
			}
			out = append(out, leaf.values[pos])
		}
		leaf = leaf.next
		pos = 0
	}
	return out
}

// Clear discards every entry and resets the tree to a single empty leaf
// root. The old nodes are left to the garbage collector.
func (t *Tree[K, V]) Clear() {
	t.epoch++
	t.root = t.newLeaf()
	t.length = 0
	t.cache.purge()
}

// Empty reports whether the tree holds no entries.
func (t *Tree[K, V]) Empty() bool {
	return t.root.leaf && len(t.root.keys) == 0
}

// Len returns the number of stored entries.
func (t *Tree[K, V]) Len() int {
	return t.length
}

// Order returns the fan-out bound the tree was built with.
func (t *Tree[K, V]) Order() int {
	return t.order
}

// Min returns the smallest key and its value.
func (t *Tree[K, V]) Min() (K, V, bool) {
	n := t.root
	for !n.leaf {
		n = n.children[0]
	}
	if len(n.keys) == 0 {
		var k K
		var v V
		return k, v, false
	}
	return n.keys[0], n.values[0], true
}

// Max returns the largest key and its value.
func (t *Tree[K, V]) Max() (K, V, bool) {
	n := t.root
	for !n.leaf {
		n = n.children[len(n.children)-1]
	}
	if len(n.keys) == 0 {
		var k K
		var v V
		return k, v, false
	}
	last := len(n.keys) - 1
	return n.keys[last], n.values[last], true
}

// Height returns the number of levels from the root to the leaves,
// inclusive. An empty tree has height 1.
func (t *Tree[K, V]) Height() int {
	h := 1
	for n := t.root; !n.leaf; n = n.children[0] {
		h++
	}
	return h
}

// Stats is a point-in-time snapshot of tree shape and cache counters.
type Stats struct {
	Entries  int
	Leaves   int
	Internal int
	Height   int
	Cache    CacheStats
}

// Stats walks the whole tree counting nodes by shape. O(N); meant for
// diagnostics, not hot paths.
func (t *Tree[K, V]) Stats() Stats {
	s := Stats{
		Entries: t.length,
		Height:  t.Height(),
		Cache:   t.cache.stats(),
	}
	queue := []*node[K, V]{t.root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.leaf {
			s.Leaves++
			continue
		}
		s.Internal++
		queue = append(queue, n.children...)
	}
	return s
}

// findLeaf descends from the root to the leaf whose key range contains key.
// At each internal node the child to follow is the first one whose
// separator exceeds key.
func (t *Tree[K, V]) findLeaf(key K) *node[K, V] {
	n := t.root
	for !n.leaf {
		n = n.children[slot.UpperBound(n.keys, key, t.cmp)]
	}
	return n
}

// splitLeaf moves the upper half of an overflowing leaf into a new right
// sibling and splices it into the chain. The right leaf's first key doubles
// as the separator pushed into the parent; unlike internal separators it
// stays present in the data level.
func (t *Tree[K, V]) splitLeaf(leaf *node[K, V]) {
	mid := len(leaf.keys) / 2

	right := t.newLeaf()
	right.keys = append(right.keys, leaf.keys[mid:]...)
	right.values = append(right.values, leaf.values[mid:]...)
	leaf.keys = slot.Shrink(leaf.keys, mid)
	leaf.values = slot.Shrink(leaf.values, mid)

	right.prev = leaf
	right.next = leaf.next
	if right.next != nil {
		right.next.prev = right
	}
	leaf.next = right

	t.insertIntoParent(leaf, right.keys[0], right)
}

// insertIntoParent links right as the child immediately after left under
// left's parent, separated by sep. Overflowing parents split and push their
// middle key further up; the climb ends when a parent absorbs the separator
// or a new root is created.
func (t *Tree[K, V]) insertIntoParent(left *node[K, V], sep K, right *node[K, V]) {
	for {
		parent := left.parent
		if parent == nil {
			root := t.newInternal()
			root.keys = append(root.keys, sep)
			root.children = append(root.children, left, right)
			left.parent = root
			right.parent = root
			t.root = root
			return
		}

		idx := t.childIndex(parent, left)
		parent.keys = slot.Insert(parent.keys, idx, sep)
		parent.children = slot.Insert(parent.children, idx+1, right)
		right.parent = parent

		if len(parent.keys) <= t.maxKeys {
			return
		}
		left, sep, right = t.splitInternal(parent)
	}
}

// splitInternal splits an overflowing internal node around its middle key.
// The middle key moves up a level rather than staying in either half:
// internal separators are routing state, not data, so nothing is duplicated.
func (t *Tree[K, V]) splitInternal(n *node[K, V]) (*node[K, V], K, *node[K, V]) {
	mid := len(n.keys) / 2
	sep := n.keys[mid]

	right := t.newInternal()
	right.keys = append(right.keys, n.keys[mid+1:]...)
	right.children = append(right.children, n.children[mid+1:]...)
	for _, c := range right.children {
		c.parent = right
	}
	n.keys = slot.Shrink(n.keys, mid)
	n.children = slot.Shrink(n.children, mid+1)

	return n, sep, right
}

// syncSeparator repairs the separator that routes into n after n's minimum
// key changed. That separator lives on the nearest ancestor for which n's
// subtree is not the leftmost child; the minimum of the tree-wide leftmost
// subtree is referenced by no separator at all.
func (t *Tree[K, V]) syncSeparator(n *node[K, V]) {
	if len(n.keys) == 0 {
		return
	}
	min := n.keys[0]
	child := n
	for parent := child.parent; parent != nil; parent = child.parent {
		idx := t.childIndex(parent, child)
		if idx > 0 {
			parent.keys[idx-1] = min
			return
		}
		child = parent
	}
}

// rebalance restores minimum occupancy after a removal left n underfull.
// Borrowing from a sibling is tried first, left then right; otherwise n is
// merged with a sibling, preferring the left. A merge removes a separator
// from the parent, which may underflow in turn, so the loop climbs until a
// level absorbs the deficit or the root collapses. It returns the node now
// covering n's key range (n itself unless n was merged into its left
// sibling).
func (t *Tree[K, V]) rebalance(n *node[K, V]) *node[K, V] {
	survivor := n

	for n != t.root && len(n.keys) < t.minKeys {
		parent := n.parent
		idx := t.childIndex(parent, n)

		var left, right *node[K, V]
		if idx > 0 {
			left = parent.children[idx-1]
		}
		if idx < len(parent.children)-1 {
			right = parent.children[idx+1]
		}

		switch {
		case left != nil && len(left.keys) > t.minKeys:
			t.borrowFromLeft(parent, idx, left, n)
			return survivor
		case right != nil && len(right.keys) > t.minKeys:
			t.borrowFromRight(parent, idx, n, right)
			return survivor
		case left != nil:
			t.merge(parent, idx-1, left, n)
			if n == survivor {
				survivor = left
			}
			n = parent
		case right != nil:
			t.merge(parent, idx, n, right)
			n = parent
		default:
			t.fatalf("non-root node has no siblings")
		}
	}

	if n == t.root && !n.leaf && len(n.keys) == 0 {
		// The last separator left the root; its sole child is the new root.
		t.root = n.children[0]
		t.root.parent = nil
	}
	return survivor
}

// borrowFromLeft rotates the left sibling's last entry into n. For leaves
// the entry moves directly and the separator between the siblings becomes
// n's new minimum; for internal nodes the separator is pulled down into n
// and the left sibling's last key replaces it in the parent, with the
// matching child changing sides.
func (t *Tree[K, V]) borrowFromLeft(parent *node[K, V], idx int, left, n *node[K, V]) {
	last := len(left.keys) - 1

	if n.leaf {
		n.keys = slot.Insert(n.keys, 0, left.keys[last])
		n.values = slot.Insert(n.values, 0, left.values[last])
		left.keys = slot.Remove(left.keys, last)
		left.values = slot.Remove(left.values, last)
		parent.keys[idx-1] = n.keys[0]
		return
	}

	moved := left.children[len(left.children)-1]
	n.keys = slot.Insert(n.keys, 0, parent.keys[idx-1])
	n.children = slot.Insert(n.children, 0, moved)
	moved.parent = n
	parent.keys[idx-1] = left.keys[last]
	left.keys = slot.Remove(left.keys, last)
	left.children = slot.Remove(left.children, len(left.children)-1)
}

// borrowFromRight rotates the right sibling's first entry into n, the
// mirror image of borrowFromLeft.
func (t *Tree[K, V]) borrowFromRight(parent *node[K, V], idx int, n, right *node[K, V]) {
	if n.leaf {
		n.keys = append(n.keys, right.keys[0])
		n.values = append(n.values, right.values[0])
		right.keys = slot.Remove(right.keys, 0)
		right.values = slot.Remove(right.values, 0)
		parent.keys[idx] = right.keys[0]
		return
	}

	moved := right.children[0]
	n.keys = append(n.keys, parent.keys[idx])
	n.children = append(n.children, moved)
	moved.parent = n
	parent.keys[idx] = right.keys[0]
	right.keys = slot.Remove(right.keys, 0)
	right.children = slot.Remove(right.children, 0)
}

// merge folds right into left and drops right from the parent. Sibling
// leaves concatenate their entries and close the chain over the absorbed
// leaf; internal siblings pull the parent separator down between their key
// runs, since it is the minimum of right's subtree and would otherwise be
// lost. parent.keys[sepIdx] is the separator between the two.
func (t *Tree[K, V]) merge(parent *node[K, V], sepIdx int, left, right *node[K, V]) {
	if left.leaf {
		left.keys = append(left.keys, right.keys...)
		left.values = append(left.values, right.values...)
		left.next = right.next
		if right.next != nil {
			right.next.prev = left
		}
	} else {
		left.keys = append(left.keys, parent.keys[sepIdx])
		left.keys = append(left.keys, right.keys...)
		left.children = append(left.children, right.children...)
		for _, c := range right.children {
			c.parent = left
		}
	}

	parent.keys = slot.Remove(parent.keys, sepIdx)
	parent.children = slot.Remove(parent.children, sepIdx+1)

	// Unlink the absorbed node so nothing dangles off it.
	right.parent = nil
	right.prev = nil
	right.next = nil
}

// fatalf reports a broken structural invariant. That is a bug in the tree,
// not a caller error: log it and stop rather than keep running on a
// corrupted structure.
func (t *Tree[K, V]) fatalf(format string, args ...any) {
	msg := "memdex: " + fmt.Sprintf(format, args...)
	t.logger.Error(msg)
	panic(msg)
}
