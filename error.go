package memdex

import "errors"

//goland:noinspection GoUnusedGlobalVariable
var (
	ErrInvalidOrder  = errors.New("tree order must be at least 3")
	ErrNilCompare    = errors.New("compare function cannot be nil")
	ErrNoCacheHasher = errors.New("find cache requires a key hasher")
)
