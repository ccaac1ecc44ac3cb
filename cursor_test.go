package memdex

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorSequentialScan(t *testing.T) {
	t.Parallel()

	tree, err := New[string, string](4)
	require.NoError(t, err)

	for i := 1; i <= 100; i++ {
		tree.Insert(fmt.Sprintf("key%03d", i), fmt.Sprintf("value%d", i))
	}

	cursor := tree.Cursor()
	require.True(t, cursor.Seek("key000"))

	count := 0
	for cursor.Valid() {
		count++
		assert.Equal(t, fmt.Sprintf("key%03d", count), cursor.Key(), "key mismatch at position %d", count)
		assert.Equal(t, fmt.Sprintf("value%d", count), cursor.Value(), "value mismatch at position %d", count)

		if !cursor.Next() {
			break
		}
	}

	assert.Equal(t, 100, count)
}

func TestCursorReverseScan(t *testing.T) {
	t.Parallel()

	tree, err := New[string, string](4)
	require.NoError(t, err)

	for i := 1; i <= 50; i++ {
		tree.Insert(fmt.Sprintf("key%03d", i), fmt.Sprintf("value%d", i))
	}

	cursor := tree.Cursor()

	// No key sorts at or after key999.
	assert.False(t, cursor.Seek("key999"))
	assert.False(t, cursor.Valid())

	require.True(t, cursor.Last())

	count := 50
	for cursor.Valid() {
		assert.Equal(t, fmt.Sprintf("key%03d", count), cursor.Key(), "key mismatch at position %d", count)
		count--

		if !cursor.Prev() {
			break
		}
	}

	assert.Equal(t, 0, count)
	assert.False(t, cursor.Valid(), "cursor should be exhausted before the first key")
}

func TestCursorFirstLast(t *testing.T) {
	t.Parallel()

	tree, err := New[int, int](4)
	require.NoError(t, err)

	cursor := tree.Cursor()
	assert.False(t, cursor.First(), "First on an empty tree")
	assert.False(t, cursor.Last(), "Last on an empty tree")
	assert.False(t, cursor.Valid())

	rng := rand.New(rand.NewSource(42))
	for _, k := range rng.Perm(500) {
		tree.Insert(k, k*2)
	}

	require.True(t, cursor.First())
	assert.Equal(t, 0, cursor.Key())
	assert.Equal(t, 0, cursor.Value())

	require.True(t, cursor.Last())
	assert.Equal(t, 499, cursor.Key())
	assert.Equal(t, 998, cursor.Value())

	// Stepping past either end exhausts the cursor.
	assert.False(t, cursor.Next())
	assert.False(t, cursor.Valid())
}

func TestCursorSeek(t *testing.T) {
	t.Parallel()

	tree, err := New[int, int](4)
	require.NoError(t, err)

	for i := 0; i < 100; i += 10 {
		tree.Insert(i, i)
	}

	cursor := tree.Cursor()

	// Exact hit.
	require.True(t, cursor.Seek(30))
	assert.Equal(t, 30, cursor.Key())

	// Between stored keys: lands on the successor.
	require.True(t, cursor.Seek(35))
	assert.Equal(t, 40, cursor.Key())

	// Before the smallest key.
	require.True(t, cursor.Seek(-5))
	assert.Equal(t, 0, cursor.Key())

	// Past the largest key.
	assert.False(t, cursor.Seek(95))
}

func TestCursorFullWalkAgainstReference(t *testing.T) {
	t.Parallel()

	tree, err := New[int, string](5)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	ref := make(map[int]string)
	for i := 0; i < 3_000; i++ {
		k := rng.Intn(10_000)
		v := fmt.Sprintf("v%d", k)
		tree.Insert(k, v)
		ref[k] = v
	}

	keys := make([]int, 0, len(ref))
	for k := range ref {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	// Forward walk must visit every key exactly once, ascending.
	cursor := tree.Cursor()
	i := 0
	for ok := cursor.First(); ok; ok = cursor.Next() {
		require.Less(t, i, len(keys))
		require.Equal(t, keys[i], cursor.Key(), "position %d", i)
		require.Equal(t, ref[keys[i]], cursor.Value())
		i++
	}
	assert.Equal(t, len(keys), i)

	// Backward walk visits the same keys in reverse.
	i = len(keys) - 1
	for ok := cursor.Last(); ok; ok = cursor.Prev() {
		require.GreaterOrEqual(t, i, 0)
		require.Equal(t, keys[i], cursor.Key(), "position %d", i)
		i--
	}
	assert.Equal(t, -1, i)
}

func TestCursorInvalidatedByMutation(t *testing.T) {
	t.Parallel()

	tree, err := New[int, int](4)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		tree.Insert(i, i)
	}

	cursor := tree.Cursor()
	require.True(t, cursor.First())
	require.True(t, cursor.Next())

	tree.Insert(100, 100)

	assert.False(t, cursor.Valid(), "insert must invalidate the cursor")
	assert.False(t, cursor.Next())
	assert.Zero(t, cursor.Key())
	assert.Zero(t, cursor.Value())

	// Repositioning resumes against the mutated tree.
	require.True(t, cursor.Seek(2))
	assert.Equal(t, 2, cursor.Key())

	tree.Erase(5)
	assert.False(t, cursor.Valid(), "erase must invalidate the cursor")

	require.True(t, cursor.First())
	tree.Clear()
	assert.False(t, cursor.Valid(), "clear must invalidate the cursor")
	assert.False(t, cursor.First(), "repositioning on the cleared tree finds nothing")
}

func TestCursorOverwriteInvalidates(t *testing.T) {
	t.Parallel()

	tree, err := New[string, string](4)
	require.NoError(t, err)

	tree.Insert("a", "1")
	tree.Insert("b", "2")

	cursor := tree.Cursor()
	require.True(t, cursor.First())

	// Overwriting a value does not move any keys, but the cursor still
	// refuses to read through it.
	tree.Insert("a", "updated")
	assert.False(t, cursor.Valid())

	require.True(t, cursor.First())
	assert.Equal(t, "updated", cursor.Value())
}

func TestCursorSingleEntry(t *testing.T) {
	t.Parallel()

	tree, err := New[string, int](4)
	require.NoError(t, err)
	tree.Insert("only", 1)

	cursor := tree.Cursor()
	require.True(t, cursor.First())
	assert.Equal(t, "only", cursor.Key())
	assert.False(t, cursor.Next())

	require.True(t, cursor.Last())
	assert.Equal(t, "only", cursor.Key())
	assert.False(t, cursor.Prev())
}
