package zarr

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/TuSKan/zarrs-go/zarr/codec"
	"github.com/TuSKan/zarrs-go/zarr/store"
)

// chunkDecodedSize returns the byte length of a chunk's full decoded
// form for the given chunk shape.
func (a *Array) chunkDecodedSize(chunkShape []int64) int64 {
	n := int64(a.ElementSize())
	for _, d := range chunkShape {
		n *= d
	}
	return n
}

// fillBuffer returns n bytes of the fill-value pattern repeated.
func (a *Array) fillBuffer(n int64) []byte {
	out := make([]byte, n)
	fv := []byte(a.fillValue)
	if len(fv) == 0 {
		return out
	}
	for i := int64(0); i < n; i += int64(len(fv)) {
		copy(out[i:], fv)
	}
	return out
}

// isFillValue reports whether data equals the fill-value pattern
// repeated across its whole length, used for empty-chunk elision.
func (a *Array) isFillValue(data []byte) bool {
	return bytes.Equal(data, a.fillBuffer(int64(len(data))))
}

func (a *Array) chunkRep(chunkShape []int64) chunkRepresentation {
	return chunkRepresentation{shape: chunkShape, elementSize: a.ElementSize(), fillValue: []byte(a.fillValue)}
}

// RetrieveChunk fetches and decodes the full chunk at coord, returning
// fill-value bytes when the chunk does not exist.
func (a *Array) RetrieveChunk(ctx context.Context, coord []int64) ([]byte, error) {
	chunkShape, ok := a.grid.ChunkShape(coord, a.meta.Shape)
	if !ok {
		return nil, &InvalidChunkGridIndicesError{Coord: coord, GridShape: a.grid.GridShape(a.meta.Shape)}
	}
	key := a.dataKey(coord)
	encoded, err := a.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return a.fillBuffer(a.chunkDecodedSize(chunkShape)), nil
		}
		return nil, WrapStorageError(StorageErrorIO, err)
	}
	cfg := GlobalConfig()
	decoded, err := a.pipeline.Decode(ctx, encoded, a.chunkRep(chunkShape), cfg)
	if err != nil {
		return nil, err
	}
	want := a.chunkDecodedSize(chunkShape)
	if int64(len(decoded)) != want {
		return nil, NewCodecErrorUnexpectedSize(uint64(want), uint64(len(decoded)))
	}
	return decoded, nil
}

// RetrieveChunkSubset reads only subset's region of chunk coord,
// falling through to RetrieveChunk when subset spans the whole chunk.
func (a *Array) RetrieveChunkSubset(ctx context.Context, coord []int64, subset ArraySubset) ([]byte, error) {
	chunkShape, ok := a.grid.ChunkShape(coord, a.meta.Shape)
	if !ok {
		return nil, &InvalidChunkGridIndicesError{Coord: coord, GridShape: a.grid.GridShape(a.meta.Shape)}
	}
	if isWholeChunk(subset, chunkShape) {
		return a.RetrieveChunk(ctx, coord)
	}

	key := a.dataKey(coord)
	cfg := GlobalConfig()
	byteRanges := subset.ByteRanges(chunkShape, a.ElementSize())
	ranges := make([]codec.ByteRange, len(byteRanges))
	for i, r := range byteRanges {
		ranges[i] = codec.ByteRange{Offset: r.Offset, Length: r.Length}
	}

	rep := a.chunkRep(chunkShape)
	if encodedRanges, ok := a.pipeline.PartialEncodedByteRanges(rep, ranges); ok {
		return a.retrieveChunkSubsetPartial(ctx, key, rep, encodedRanges, ranges, subset.NumElements())
	}

	encoded, err := a.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return a.fillBuffer(subset.NumElements() * int64(a.ElementSize())), nil
		}
		return nil, WrapStorageError(StorageErrorIO, err)
	}

	parts, err := a.pipeline.DecodeByteRanges(ctx, encoded, rep, cfg, ranges)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, subset.NumElements()*int64(a.ElementSize()))
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}

// retrieveChunkSubsetPartial serves a chunk subset by asking the store
// for only the encoded byte ranges the pipeline says it needs, instead
// of fetching the whole chunk blob. A missing chunk resolves to
// fill-value bytes exactly as the whole-chunk fetch path does.
func (a *Array) retrieveChunkSubsetPartial(ctx context.Context, key string, rep chunkRepresentation, encodedRanges, decodedRanges []codec.ByteRange, numElements int64) ([]byte, error) {
	keyRanges := make([]store.KeyRange, len(encodedRanges))
	for i, r := range encodedRanges {
		keyRanges[i] = store.KeyRange{Key: key, Offset: r.Offset, Length: r.Length}
	}
	encodedParts, err := store.GetPartialValues(ctx, a.store, keyRanges)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return a.fillBuffer(numElements * int64(a.ElementSize())), nil
		}
		return nil, WrapStorageError(StorageErrorIO, err)
	}

	parts, err := a.pipeline.DecodePartial(ctx, encodedParts, rep, decodedRanges)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, numElements*int64(a.ElementSize()))
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}

// RetrieveArraySubset reads subset's region of the array, scattering
// each intersecting chunk's contribution into a fill-value-initialised
// output buffer.
func (a *Array) RetrieveArraySubset(ctx context.Context, subset ArraySubset) ([]byte, error) {
	if subset.Rank() != a.Rank() {
		return nil, &IncompatibleDimensionalityError{Got: subset.Rank(), Want: a.Rank()}
	}
	elementSize := a.ElementSize()
	out := a.fillBuffer(subset.NumElements() * int64(elementSize))

	coords, err := a.chunksIntersecting(subset)
	if err != nil {
		return nil, err
	}

	cfg := GlobalConfig()
	limit := int64(cfg.ChunkConcurrentMinimum)
	if int64(len(coords)) < limit {
		limit = int64(len(coords))
	}
	if limit < 1 {
		limit = 1
	}
	sem := semaphore.NewWeighted(limit)
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for _, c := range coords {
		c := c
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			chunkRegion, ok := a.grid.Subset(c, a.meta.Shape)
			if !ok {
				return &InvalidChunkGridIndicesError{Coord: c, GridShape: a.grid.GridShape(a.meta.Shape)}
			}
			overlap, ok := chunkRegion.Intersect(subset)
			if !ok {
				return nil
			}
			chunkRelative := NewArraySubset(subOffsets(overlap.Start, chunkRegion.Start), overlap.Shape)
			outputRelative := NewArraySubset(subOffsets(overlap.Start, subset.Start), overlap.Shape)

			data, err := a.RetrieveChunkSubset(gctx, c, chunkRelative)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			scatter(out, subset.Shape, outputRelative, data, elementSize)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// StoreChunk encodes and writes data as the full contents of chunk
// coord, eliding the write (erasing any existing blob) when
// store_empty_chunks is false and data equals the fill-value pattern.
func (a *Array) StoreChunk(ctx context.Context, coord []int64, data []byte) error {
	chunkShape, ok := a.grid.ChunkShape(coord, a.meta.Shape)
	if !ok {
		return &InvalidChunkGridIndicesError{Coord: coord, GridShape: a.grid.GridShape(a.meta.Shape)}
	}
	want := a.chunkDecodedSize(chunkShape)
	if int64(len(data)) != want {
		return NewCodecErrorUnexpectedSize(uint64(want), uint64(len(data)))
	}

	key := a.dataKey(coord)
	cfg := GlobalConfig()
	if !cfg.StoreEmptyChunks && a.isFillValue(data) {
		if err := a.store.Delete(ctx, key); err != nil {
			return WrapStorageError(StorageErrorIO, err)
		}
		return nil
	}

	encoded, err := a.pipeline.Encode(ctx, data, a.chunkRep(chunkShape), cfg)
	if err != nil {
		return err
	}
	if err := a.store.Set(ctx, key, encoded); err != nil {
		return WrapStorageError(StorageErrorIO, err)
	}
	return nil
}

// StoreChunkSubset performs the locked read-modify-write path:
// acquire the chunk lock, read the existing chunk (or fill), scatter
// data into the addressed sub-region, re-encode, and write.
func (a *Array) StoreChunkSubset(ctx context.Context, coord []int64, subset ArraySubset, data []byte) error {
	chunkShape, ok := a.grid.ChunkShape(coord, a.meta.Shape)
	if !ok {
		return &InvalidChunkGridIndicesError{Coord: coord, GridShape: a.grid.GridShape(a.meta.Shape)}
	}

	unlock, err := a.locks.Lock(ctx, coord)
	if err != nil {
		return err
	}
	defer unlock()

	current, err := a.retrieveChunkLocked(ctx, coord, chunkShape)
	if err != nil {
		return err
	}
	scatter(current, chunkShape, subset, data, a.ElementSize())
	return a.storeChunkLocked(ctx, coord, chunkShape, current)
}

// retrieveChunkLocked/storeChunkLocked are RetrieveChunk/StoreChunk's
// bodies minus the coordinate validation already done by the caller,
// used while already holding the chunk lock so StoreChunkSubset does
// not need to re-validate or re-derive chunkShape.
func (a *Array) retrieveChunkLocked(ctx context.Context, coord []int64, chunkShape []int64) ([]byte, error) {
	key := a.dataKey(coord)
	encoded, err := a.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return a.fillBuffer(a.chunkDecodedSize(chunkShape)), nil
		}
		return nil, WrapStorageError(StorageErrorIO, err)
	}
	cfg := GlobalConfig()
	decoded, err := a.pipeline.Decode(ctx, encoded, a.chunkRep(chunkShape), cfg)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

func (a *Array) storeChunkLocked(ctx context.Context, coord []int64, chunkShape []int64, data []byte) error {
	key := a.dataKey(coord)
	cfg := GlobalConfig()
	if !cfg.StoreEmptyChunks && a.isFillValue(data) {
		if err := a.store.Delete(ctx, key); err != nil {
			return WrapStorageError(StorageErrorIO, err)
		}
		return nil
	}
	encoded, err := a.pipeline.Encode(ctx, data, a.chunkRep(chunkShape), cfg)
	if err != nil {
		return err
	}
	if err := a.store.Set(ctx, key, encoded); err != nil {
		return WrapStorageError(StorageErrorIO, err)
	}
	return nil
}

// StoreArraySubset decomposes subset over intersecting chunks, writing
// fully covered chunks lock-free via StoreChunk and partially covered
// chunks via the locked StoreChunkSubset path.
func (a *Array) StoreArraySubset(ctx context.Context, subset ArraySubset, data []byte) error {
	if subset.Rank() != a.Rank() {
		return &IncompatibleDimensionalityError{Got: subset.Rank(), Want: a.Rank()}
	}
	elementSize := a.ElementSize()
	coords, err := a.chunksIntersecting(subset)
	if err != nil {
		return err
	}

	cfg := GlobalConfig()
	limit := int64(cfg.ChunkConcurrentMinimum)
	if int64(len(coords)) < limit {
		limit = int64(len(coords))
	}
	if limit < 1 {
		limit = 1
	}
	sem := semaphore.NewWeighted(limit)
	g, gctx := errgroup.WithContext(ctx)

	for _, c := range coords {
		c := c
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			chunkRegion, ok := a.grid.Subset(c, a.meta.Shape)
			if !ok {
				return &InvalidChunkGridIndicesError{Coord: c, GridShape: a.grid.GridShape(a.meta.Shape)}
			}
			boundedChunkRegion := chunkRegion.Bound(a.meta.Shape)
			overlap, ok := chunkRegion.Intersect(subset)
			if !ok {
				return nil
			}
			chunkRelative := NewArraySubset(subOffsets(overlap.Start, chunkRegion.Start), overlap.Shape)
			inputRelative := NewArraySubset(subOffsets(overlap.Start, subset.Start), overlap.Shape)

			gathered := make([]byte, overlap.NumElements()*int64(elementSize))
			gather(gathered, overlap.Shape, subset.Shape, inputRelative, data, elementSize)

			if sameSubset(overlap, boundedChunkRegion) && sameSubset(chunkRelative, NewArraySubset(make([]int64, len(chunkRegion.Shape)), chunkRegion.Shape)) {
				return a.StoreChunk(gctx, c, gathered)
			}
			return a.StoreChunkSubset(gctx, c, chunkRelative, gathered)
		})
	}
	return g.Wait()
}

// chunksIntersecting returns every chunk grid coordinate intersecting
// subset, derived from the chunk indices of its start and inclusive end.
func (a *Array) chunksIntersecting(subset ArraySubset) ([][]int64, error) {
	if subset.Rank() == 0 {
		return [][]int64{{}}, nil
	}
	minC, ok := a.grid.ChunkIndices(subset.Start, a.meta.Shape)
	if !ok {
		return nil, &IncompatibleDimensionalityError{Got: subset.Rank(), Want: a.Rank()}
	}
	maxC, ok := a.grid.ChunkIndices(subset.EndInc(), a.meta.Shape)
	if !ok {
		return nil, &IncompatibleDimensionalityError{Got: subset.Rank(), Want: a.Rank()}
	}

	var out [][]int64
	idx := make([]int64, len(minC))
	copy(idx, minC)
	for {
		coord := make([]int64, len(idx))
		copy(coord, idx)
		out = append(out, coord)

		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] <= maxC[i] {
				break
			}
			idx[i] = minC[i]
		}
		if i < 0 {
			break
		}
	}
	return out, nil
}

func isWholeChunk(subset ArraySubset, chunkShape []int64) bool {
	for i, s := range subset.Start {
		if s != 0 || subset.Shape[i] != chunkShape[i] {
			return false
		}
	}
	return true
}

func subOffsets(a, b []int64) []int64 {
	out := make([]int64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func sameSubset(a, b ArraySubset) bool {
	if len(a.Start) != len(b.Start) {
		return false
	}
	for i := range a.Start {
		if a.Start[i] != b.Start[i] || a.Shape[i] != b.Shape[i] {
			return false
		}
	}
	return true
}

// scatter copies src (row-major over subset's shape) into dst (row-major
// over dstShape) at the region described by subset.
func scatter(dst []byte, dstShape []int64, subset ArraySubset, src []byte, elementSize int) {
	runs := subset.IterContiguousLinearIndices(dstShape)
	srcOffset := int64(0)
	for _, run := range runs {
		n := run.Length * int64(elementSize)
		dstOffset := run.Start * int64(elementSize)
		copy(dst[dstOffset:dstOffset+n], src[srcOffset:srcOffset+n])
		srcOffset += n
	}
}

// gather copies the region of src (row-major over srcShape) described
// by subset into dst (row-major over subset's own shape).
func gather(dst []byte, dstShape []int64, srcShape []int64, subset ArraySubset, src []byte, elementSize int) {
	runs := subset.IterContiguousLinearIndices(srcShape)
	dstOffset := int64(0)
	for _, run := range runs {
		n := run.Length * int64(elementSize)
		srcOffset := run.Start * int64(elementSize)
		copy(dst[dstOffset:dstOffset+n], src[srcOffset:srcOffset+n])
		dstOffset += n
	}
}

