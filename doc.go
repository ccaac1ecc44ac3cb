// Package memdex provides an in-memory ordered key/value index backed by a
// B+Tree.
//
// All entries live in leaf nodes, which are doubly chained in key order so
// range scans and cursors never re-descend from the root. Internal nodes
// carry routing separators only. Inserting into a full node splits it and
// pushes a separator upward; erasing from a minimally filled node borrows
// from a sibling or merges, which can shrink the tree's height. Every
// operation leaves the tree balanced: all leaves stay at the same depth.
//
// Ordering comes from the key type's natural order (New) or from an
// explicit comparator (NewFunc). Values are opaque payloads and are never
// compared.
//
// # Concurrency
//
// A Tree performs no locking and is not safe for concurrent use with any
// writer. Concurrent readers (Find, Range, cursors, the introspection
// methods) are safe only while no Insert, Erase, or Clear runs. Callers
// sharing a tree across goroutines must serialize access externally, for
// example with a sync.RWMutex: write lock around mutations, read locks
// around lookups. Two caveats tighten the contract:
//
//   - Mutating the tree invalidates outstanding cursors; they report
//     invalid until repositioned.
//   - A tree built with WithFindCache updates the cache inside Find, so
//     Find counts as a write for locking purposes on such trees.
package memdex
