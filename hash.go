package memdex

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Key hashers for the common key types, for use with WithFindCache. All fold
// an xxHash digest down to the 32 bits the cache wants.

// HashString hashes s with xxHash.
func HashString(s string) uint32 {
	return uint32(xxhash.Sum64String(s))
}

// HashUint64 hashes u with xxHash.
func HashUint64(u uint64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], u)
	return uint32(xxhash.Sum64(buf[:]))
}

// HashInt hashes i with xxHash.
func HashInt(i int) uint32 {
	return HashUint64(uint64(i))
}

// HashInt64 hashes i with xxHash.
func HashInt64(i int64) uint32 {
	return HashUint64(uint64(i))
}
