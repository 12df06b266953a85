package zarr

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/TuSKan/zarrs-go/zarr/codec"
	"github.com/TuSKan/zarrs-go/zarr/store"
)

// Array is the façade over one array's composed components: its
// metadata, chunk grid, codec pipeline, chunk-lock table and backing
// store. It exposes region/chunk I/O and metadata serialisation.
type Array struct {
	store    store.Store
	nodePath string

	meta      *ArrayMetadata
	grid      ChunkGrid
	keyEnc    ChunkKeyEncoding
	pipeline  *Pipeline
	fillValue FillValue

	locks         *chunkLockTable
	log           *zap.Logger
	codecRegistry *codec.Registry

	includeZarrsMetadata bool
}

// ArrayOption configures optional Array façade behaviour.
type ArrayOption func(*Array)

// WithLogger attaches a structured logger; unset, the façade stays
// silent (zap.NewNop).
func WithLogger(log *zap.Logger) ArrayOption {
	return func(a *Array) { a.log = log }
}

// WithIncludeZarrsMetadata causes Metadata() to inject an "_zarrs"
// attribute record.
func WithIncludeZarrsMetadata() ArrayOption {
	return func(a *Array) { a.includeZarrsMetadata = true }
}

// WithCodecRegistry overrides the codec registry used to resolve
// metadata's codecs list; defaults to codec.Default.
func WithCodecRegistry(reg *codec.Registry) ArrayOption {
	return func(a *Array) { a.codecRegistry = reg }
}

func newArray(s store.Store, nodePath string, meta *ArrayMetadata, opts ...ArrayOption) (*Array, error) {
	a := &Array{store: s, nodePath: nodePath, meta: meta, log: zap.NewNop(), codecRegistry: codec.Default}
	for _, opt := range opts {
		opt(a)
	}

	grid, err := buildChunkGrid(meta.ChunkGrid)
	if err != nil {
		return nil, err
	}
	a.grid = grid

	keyEnc, err := buildChunkKeyEncoding(meta.ChunkKeyEncoding)
	if err != nil {
		return nil, err
	}
	a.keyEnc = keyEnc

	fv, err := ParseFillValueJSON(meta.DataType, meta.FillValue)
	if err != nil {
		return nil, err
	}
	a.fillValue = fv

	pipeline, err := BuildPipeline(a.codecRegistry, meta.Codecs)
	if err != nil {
		return nil, err
	}
	a.pipeline = pipeline

	a.locks = newChunkLockTable()
	return a, nil
}

func buildChunkGrid(m ChunkGridMetadata) (ChunkGrid, error) {
	if m.Name != "regular" {
		return nil, newPluginCreateError("chunk_grid", m.Name, "only the \"regular\" chunk grid is registered")
	}
	var cfg RegularChunkGridConfiguration
	if err := unmarshalConfig(m.Configuration, &cfg); err != nil {
		return nil, newPluginCreateError("chunk_grid", m.Name, err.Error())
	}
	return NewRegularGrid(cfg.ChunkShape), nil
}

func buildChunkKeyEncoding(m ChunkKeyEncodingMetadata) (ChunkKeyEncoding, error) {
	cfg := ChunkKeyEncodingConfiguration{Separator: defaultSeparatorFor(m.Name)}
	if err := unmarshalConfig(m.Configuration, &cfg); err != nil {
		return ChunkKeyEncoding{}, newPluginCreateError("chunk_key_encoding", m.Name, err.Error())
	}
	sep := byte('/')
	if len(cfg.Separator) == 1 {
		sep = cfg.Separator[0]
	}
	return ParseChunkKeyEncoding(m.Name, sep)
}

func defaultSeparatorFor(style string) string {
	if style == "v2" {
		return "."
	}
	return "/"
}

func unmarshalConfig(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// NewArray constructs an Array façade for metadata already resolved
// in-memory, without touching the store's zarr.json document. Use
// CreateArray or OpenArray for the common create/open paths.
func NewArray(s store.Store, nodePath string, meta *ArrayMetadata, opts ...ArrayOption) (*Array, error) {
	return newArray(s, nodePath, meta, opts...)
}

// CreateArray writes meta's zarr.json document to the store and
// returns the resulting façade.
func CreateArray(ctx context.Context, s store.Store, nodePath string, meta *ArrayMetadata, opts ...ArrayOption) (*Array, error) {
	a, err := newArray(s, nodePath, meta, opts...)
	if err != nil {
		return nil, err
	}
	blob, err := a.Metadata()
	if err != nil {
		return nil, err
	}
	if err := s.Set(ctx, metadataKey(nodePath), blob); err != nil {
		return nil, WrapStorageError(StorageErrorIO, err)
	}
	return a, nil
}

// OpenArray reads and parses the zarr.json document at nodePath.
func OpenArray(ctx context.Context, s store.Store, nodePath string, opts ...ArrayOption) (*Array, error) {
	blob, err := s.Get(ctx, metadataKey(nodePath))
	if err != nil {
		return nil, WrapStorageError(StorageErrorIO, err)
	}
	meta, err := ParseArrayMetadata(blob)
	if err != nil {
		return nil, err
	}
	return newArray(s, nodePath, meta, opts...)
}

func metadataKey(nodePath string) string {
	if nodePath == "" {
		return "zarr.json"
	}
	return nodePath + "/zarr.json"
}

func (a *Array) dataKey(coord []int64) string {
	encoded := a.keyEnc.EncodeChunkKey(coord)
	if a.nodePath == "" {
		return encoded
	}
	return fmt.Sprintf("%s/%s", a.nodePath, encoded)
}

// Shape returns the array's current logical shape.
func (a *Array) Shape() []int64 { return a.meta.Shape }

// DataType returns the array's element data type.
func (a *Array) DataType() DataType { return a.meta.DataType }

// ElementSize returns the byte size of one element.
func (a *Array) ElementSize() int { return a.meta.DataType.ElementSize() }

// Rank returns the array's dimensionality.
func (a *Array) Rank() int { return len(a.meta.Shape) }

// Metadata serialises the array's current metadata to v3 JSON,
// injecting the "_zarrs" attribute record when configured.
func (a *Array) Metadata() ([]byte, error) {
	m := *a.meta
	if a.includeZarrsMetadata {
		recBytes, err := json.Marshal(defaultZarrsMetadataRecord())
		if err != nil {
			return nil, err
		}
		attrs := make(map[string]json.RawMessage, len(m.Attributes)+1)
		for k, v := range m.Attributes {
			attrs[k] = v
		}
		attrs["_zarrs"] = recBytes
		m.Attributes = attrs
	}
	return m.Serialize()
}
