package memdex

import (
	"errors"
	"fmt"
)

// Check verifies the structural invariants of the whole tree: uniform leaf
// depth, strict key ordering within nodes, occupancy bounds, separator keys
// equal to their right subtree's minimum, parent back-references, leaf-chain
// consistency in both directions, and the tracked entry count. It returns
// nil on a healthy tree or a descriptive error for the first violation.
//
// The walk is O(N); it is meant for tests, debugging, and tooling, not for
// hot paths.
func (t *Tree[K, V]) Check() error {
	if t.root == nil {
		return errors.New("nil root")
	}
	if t.root.parent != nil {
		return errors.New("root has a parent reference")
	}
	if !t.root.leaf && len(t.root.keys) == 0 {
		return errors.New("internal root with zero separators")
	}

	var (
		leaves    []*node[K, V]
		leafDepth = -1
		entries   int
	)

	var walk func(n, parent *node[K, V], depth int) (K, error)
	walk = func(n, parent *node[K, V], depth int) (K, error) {
		var zero K

		if n.parent != parent {
			return zero, fmt.Errorf("bad parent reference at depth %d", depth)
		}
		if n != t.root && len(n.keys) < t.minKeys {
			return zero, fmt.Errorf("underfull node at depth %d: %d keys, minimum %d", depth, len(n.keys), t.minKeys)
		}
		if len(n.keys) > t.maxKeys {
			return zero, fmt.Errorf("overfull node at depth %d: %d keys, maximum %d", depth, len(n.keys), t.maxKeys)
		}
		for i := 1; i < len(n.keys); i++ {
			if t.cmp(n.keys[i-1], n.keys[i]) >= 0 {
				return zero, fmt.Errorf("keys out of order at depth %d, index %d", depth, i)
			}
		}

		if n.leaf {
			if len(n.values) != len(n.keys) {
				return zero, fmt.Errorf("leaf with %d keys but %d values", len(n.keys), len(n.values))
			}
			if n.children != nil {
				return zero, errors.New("leaf with children")
			}
			if leafDepth == -1 {
				leafDepth = depth
			} else if depth != leafDepth {
				return zero, fmt.Errorf("leaf at depth %d, expected %d", depth, leafDepth)
			}
			entries += len(n.keys)
			leaves = append(leaves, n)
			if len(n.keys) == 0 {
				// Only the root may be an empty leaf; nothing above it reads
				// the minimum.
				return zero, nil
			}
			return n.keys[0], nil
		}

		if n.prev != nil || n.next != nil {
			return zero, errors.New("internal node on the leaf chain")
		}
		if n.values != nil {
			return zero, errors.New("internal node with values")
		}
		if len(n.children) != len(n.keys)+1 {
			return zero, fmt.Errorf("internal node with %d keys and %d children", len(n.keys), len(n.children))
		}

		var min K
		for i, child := range n.children {
			childMin, err := walk(child, n, depth+1)
			if err != nil {
				return zero, err
			}
			if i == 0 {
				min = childMin
			} else if t.cmp(n.keys[i-1], childMin) != 0 {
				return zero, fmt.Errorf("separator %d at depth %d differs from its subtree minimum", i-1, depth)
			}
		}
		return min, nil
	}

	if _, err := walk(t.root, nil, 0); err != nil {
		return err
	}

	// The chain must thread the exact leaf sequence of the in-order walk.
	for i, leaf := range leaves {
		if i == 0 && leaf.prev != nil {
			return errors.New("leftmost leaf has a prev link")
		}
		if i == len(leaves)-1 && leaf.next != nil {
			return errors.New("rightmost leaf has a next link")
		}
		if i > 0 {
			if leaves[i-1].next != leaf {
				return fmt.Errorf("broken next link into leaf %d", i)
			}
			if leaf.prev != leaves[i-1] {
				return fmt.Errorf("broken prev link out of leaf %d", i)
			}
			prevLast := leaves[i-1].keys[len(leaves[i-1].keys)-1]
			if t.cmp(prevLast, leaf.keys[0]) >= 0 {
				return fmt.Errorf("chain order violation entering leaf %d", i)
			}
		}
	}

	if entries != t.length {
		return fmt.Errorf("tree holds %d entries but tracked length is %d", entries, t.length)
	}
	return nil
}
