package zarr

import (
	"context"
)

// Group is a thin façade over a group's v3 metadata document. Group
// traversal/hierarchy helpers are out of this engine's scope; Group
// only round-trips the document itself.
type Group struct {
	store    arrayStore
	nodePath string
	meta     *GroupMetadata
}

// arrayStore is the minimal capability Group needs; defined locally so
// this file does not have to import the store package solely for its
// interface name.
type arrayStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CreateGroup writes meta's zarr.json document at nodePath.
func CreateGroup(ctx context.Context, s arrayStore, nodePath string, meta *GroupMetadata) (*Group, error) {
	g := &Group{store: s, nodePath: nodePath, meta: meta}
	blob, err := meta.Serialize()
	if err != nil {
		return nil, err
	}
	if err := s.Set(ctx, metadataKey(nodePath), blob); err != nil {
		return nil, WrapStorageError(StorageErrorIO, err)
	}
	return g, nil
}

// OpenGroup reads and parses the zarr.json document at nodePath.
func OpenGroup(ctx context.Context, s arrayStore, nodePath string) (*Group, error) {
	blob, err := s.Get(ctx, metadataKey(nodePath))
	if err != nil {
		return nil, WrapStorageError(StorageErrorIO, err)
	}
	meta, err := ParseGroupMetadata(blob)
	if err != nil {
		return nil, err
	}
	return &Group{store: s, nodePath: nodePath, meta: meta}, nil
}

// Metadata returns the group's current metadata document.
func (g *Group) Metadata() *GroupMetadata { return g.meta }
