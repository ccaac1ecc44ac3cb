package memdex

import "memdex/internal/slot"

// Cursor provides ordered iteration over the tree by walking the leaf
// chain. Positioning methods (First, Last, Seek) report whether they landed
// on an entry; Key and Value read the current entry.
//
// A cursor observes the tree as of its last positioning: any Insert, Erase,
// or Clear invalidates it, and every later call reports invalid instead of
// walking a mutated structure. Reposition to resume.
type Cursor[K comparable, V any] struct {
	tree  *Tree[K, V]
	leaf  *node[K, V]
	idx   int
	epoch uint64 // tree epoch captured at positioning
	valid bool
}

// Cursor returns an unpositioned cursor. Call First, Last, or Seek to
// position it.
func (t *Tree[K, V]) Cursor() *Cursor[K, V] {
	return &Cursor[K, V]{tree: t, epoch: t.epoch}
}

// First positions the cursor at the smallest key.
func (c *Cursor[K, V]) First() bool {
	c.epoch = c.tree.epoch

	n := c.tree.root
	for !n.leaf {
		n = n.children[0]
	}

	c.leaf = n
	c.idx = 0
	c.valid = len(n.keys) > 0
	return c.valid
}

// Last positions the cursor at the largest key.
func (c *Cursor[K, V]) Last() bool {
	c.epoch = c.tree.epoch

	n := c.tree.root
	for !n.leaf {
		n = n.children[len(n.children)-1]
	}

	c.leaf = n
	c.idx = len(n.keys) - 1
	c.valid = len(n.keys) > 0
	return c.valid
}

// Seek positions the cursor at the first key greater than or equal to key.
func (c *Cursor[K, V]) Seek(key K) bool {
	c.epoch = c.tree.epoch

	leaf := c.tree.findLeaf(key)
	pos, _ := slot.Search(leaf.keys, key, c.tree.cmp)
	if pos == len(leaf.keys) {
		// Key sorts past this leaf; the next leaf's first entry is the
		// successor.
		leaf = leaf.next
		pos = 0
	}

	c.leaf = leaf
	c.idx = pos
	c.valid = leaf != nil && pos < len(leaf.keys)
	return c.valid
}

// Next advances to the following key.
func (c *Cursor[K, V]) Next() bool {
	if !c.active() {
		c.valid = false
		return false
	}

	c.idx++
	if c.idx >= len(c.leaf.keys) {
		c.leaf = c.leaf.next
		c.idx = 0
	}
	c.valid = c.leaf != nil && c.idx < len(c.leaf.keys)
	return c.valid
}

// Prev steps back to the preceding key.
func (c *Cursor[K, V]) Prev() bool {
	if !c.active() {
		c.valid = false
		return false
	}

	c.idx--
	if c.idx < 0 {
		c.leaf = c.leaf.prev
		if c.leaf != nil {
			c.idx = len(c.leaf.keys) - 1
		}
	}
	c.valid = c.leaf != nil && c.idx >= 0
	return c.valid
}

// Key returns the current key (only meaningful when Valid() is true).
func (c *Cursor[K, V]) Key() K {
	if !c.active() {
		var zero K
		return zero
	}
	return c.leaf.keys[c.idx]
}

// Value returns the current value (only meaningful when Valid() is true).
func (c *Cursor[K, V]) Value() V {
	if !c.active() {
		var zero V
		return zero
	}
	return c.leaf.values[c.idx]
}

// Valid reports whether the cursor is positioned on an entry of the
// unmutated tree.
func (c *Cursor[K, V]) Valid() bool {
	return c.active()
}

// active reports whether the cursor is positioned and the tree has not
// mutated since positioning.
func (c *Cursor[K, V]) active() bool {
	return c.valid && c.leaf != nil && c.epoch == c.tree.epoch
}
