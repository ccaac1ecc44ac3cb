package memdex

// node is the single node shape for both levels of the tree. The leaf tag
// selects which payload is live: leaves carry values and chain links, internal
// nodes carry children. Parent and chain references are non-owning; the tree
// alone decides node lifetime.
type node[K comparable, V any] struct {
	leaf bool

	keys     []K
	values   []V           // leaf only
	children []*node[K, V] // internal only; len(keys)+1 when populated

	parent *node[K, V]
	prev   *node[K, V] // leaf chain, leaf only
	next   *node[K, V]
}

// newLeaf allocates an empty leaf with room for one transient overflow key
// beyond the order-1 maximum.
func (t *Tree[K, V]) newLeaf() *node[K, V] {
	return &node[K, V]{
		leaf:   true,
		keys:   make([]K, 0, t.order),
		values: make([]V, 0, t.order),
	}
}

// newInternal allocates an empty internal node sized like newLeaf.
func (t *Tree[K, V]) newInternal() *node[K, V] {
	return &node[K, V]{
		keys:     make([]K, 0, t.order),
		children: make([]*node[K, V], 0, t.order+1),
	}
}

// childIndex returns child's position among parent's children. The links are
// maintained in lockstep by every mutation, so a miss means the structure is
// corrupted.
func (t *Tree[K, V]) childIndex(parent, child *node[K, V]) int {
	for i, c := range parent.children {
		if c == child {
			return i
		}
	}
	t.fatalf("child not found among parent's children")
	return -1
}
