// Package slot contains ordered-slot editing and search primitives shared by
// the tree's node code.
package slot

import "sort"

// Below this length a linear scan beats binary search on modern hardware.
const searchThreshold = 32

// Insert places v at index i, shifting the tail right by one.
func Insert[E any](s []E, i int, v E) []E {
	var zero E
	s = append(s, zero)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// Remove deletes the element at index i, shifting the tail left by one. The
// vacated slot is zeroed so the backing array does not pin references.
func Remove[E any](s []E, i int) []E {
	copy(s[i:], s[i+1:])
	var zero E
	s[len(s)-1] = zero
	return s[:len(s)-1]
}

// Shrink truncates s to length n, zeroing the abandoned slots.
func Shrink[E any](s []E, n int) []E {
	var zero E
	for i := n; i < len(s); i++ {
		s[i] = zero
	}
	return s[:n]
}

// Search returns the lower-bound position of key in keys and whether an
// exact match is present there.
func Search[K any](keys []K, key K, cmp func(a, b K) int) (int, bool) {
	if len(keys) < searchThreshold {
		for i := range keys {
			c := cmp(key, keys[i])
			if c == 0 {
				return i, true
			}
			if c < 0 {
				return i, false
			}
		}
		return len(keys), false
	}

	i := sort.Search(len(keys), func(i int) bool {
		return cmp(key, keys[i]) <= 0
	})
	if i < len(keys) && cmp(key, keys[i]) == 0 {
		return i, true
	}
	return i, false
}

// UpperBound returns the index of the first key strictly greater than key,
// which doubles as the child index to follow when descending past separator
// keys.
func UpperBound[K any](keys []K, key K, cmp func(a, b K) int) int {
	if len(keys) < searchThreshold {
		i := 0
		for i < len(keys) && cmp(key, keys[i]) >= 0 {
			i++
		}
		return i
	}

	return sort.Search(len(keys), func(i int) bool {
		return cmp(key, keys[i]) < 0
	})
}
