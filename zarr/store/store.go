// Package store defines the abstract key/value storage capabilities
// the zarr engine needs. Concrete backends live outside this package;
// storeadapter provides the one shipped with this module. Only the
// interfaces and shared validation live here.
package store

import (
	"context"
	"errors"
	"strings"
)

// KeyRange is a byte range request against one stored key, used by
// GetPartialValues to fetch several chunk sub-ranges in one round trip
// where the backend supports it.
type KeyRange struct {
	Key    string
	Offset uint64
	Length uint64 // 0 means "to end of value"
}

// ErrKeyNotFound is returned by Get and GetPartial when the key does
// not exist. Stores wrap backend-specific not-found signals into this
// sentinel so callers can branch on it with errors.Is.
var ErrKeyNotFound = errors.New("store: key not found")

// Readable is implemented by every store.
type Readable interface {
	// Get returns the full value stored at key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// GetPartial returns value[offset:offset+length), or the value's
	// remaining bytes from offset when length is 0.
	GetPartial(ctx context.Context, key string, offset, length uint64) ([]byte, error)
	// Exists reports whether key has a stored value.
	Exists(ctx context.Context, key string) (bool, error)
	// Size reports the byte length of the value stored at key.
	Size(ctx context.Context, key string) (uint64, error)
}

// GetPartialValuesReadable is an optional capability a Readable store
// may additionally implement to serve several key ranges as a single
// batched request, rather than this package falling back to one
// GetPartial call per range.
type GetPartialValuesReadable interface {
	GetPartialValues(ctx context.Context, ranges []KeyRange) ([][]byte, error)
}

// Writable is implemented by stores that support mutation. A
// read-only store (e.g. one opened against an archived dataset)
// implements only Readable.
type Writable interface {
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Listable is implemented by stores that can enumerate keys, used for
// group traversal and test fixtures.
type Listable interface {
	List(ctx context.Context, prefix string) ([]string, error)
}

// Store is the full capability set the engine's read-write paths
// require. Read-only callers should depend on Readable alone.
type Store interface {
	Readable
	Writable
	Listable
}

// GetPartialValues fetches each of ranges from store, using the
// batched capability when the store implements it and falling back to
// sequential GetPartial calls otherwise.
func GetPartialValues(ctx context.Context, s Readable, ranges []KeyRange) ([][]byte, error) {
	if batch, ok := s.(GetPartialValuesReadable); ok {
		return batch.GetPartialValues(ctx, ranges)
	}
	out := make([][]byte, len(ranges))
	for i, r := range ranges {
		v, err := s.GetPartial(ctx, r.Key, r.Offset, r.Length)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ValidateKey enforces the store key grammar: no leading slash, no
// empty path components, and no "." or ".." components.
func ValidateKey(key string) error {
	if key == "" {
		return errors.New("store: key must not be empty")
	}
	if strings.HasPrefix(key, "/") {
		return errors.New("store: key must not start with '/'")
	}
	for _, part := range strings.Split(key, "/") {
		switch part {
		case "":
			return errors.New("store: key must not contain empty path components")
		case ".", "..":
			return errors.New("store: key must not contain '.' or '..' components")
		}
	}
	return nil
}

// ValidatePrefix enforces the prefix grammar used by List: empty
// (root), or a key-shaped string ending in '/'.
func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return nil
	}
	if !strings.HasSuffix(prefix, "/") {
		return errors.New("store: non-empty prefix must end with '/'")
	}
	return ValidateKey(strings.TrimSuffix(prefix, "/") + "/x")
}
