// Package teststore is an in-memory store.Store used only by package
// tests across this module; it is not part of the public API.
package teststore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/TuSKan/zarrs-go/zarr/store"
)

// Store is a concurrency-safe in-memory key/value store.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func New() *Store {
	return &Store{data: map[string][]byte{}}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if err := store.ValidateKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, store.ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *Store) GetPartial(ctx context.Context, key string, offset, length uint64) ([]byte, error) {
	v, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	end := uint64(len(v))
	if length != 0 && offset+length < end {
		end = offset + length
	}
	if offset > uint64(len(v)) {
		return nil, fmt.Errorf("teststore: byte range [%d, %d) outside value of size %d", offset, offset+length, len(v))
	}
	return v[offset:end], nil
}

func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	if err := store.ValidateKey(key); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok, nil
}

func (s *Store) Size(ctx context.Context, key string) (uint64, error) {
	s.mu.RLock()
	v, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return 0, store.ErrKeyNotFound
	}
	return uint64(len(v)), nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	v := make([]byte, len(value))
	copy(v, value)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = v
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *Store) List(_ context.Context, prefix string) ([]string, error) {
	if err := store.ValidatePrefix(prefix); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

var _ store.Store = (*Store)(nil)
