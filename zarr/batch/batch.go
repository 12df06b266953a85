// Package batch implements sequential batched reads along an array's
// leading dimension, bridging the engine to gomlx tensors on top of
// RetrieveArraySubset rather than a hand-rolled per-dtype copy loop.
package batch

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/gomlx/gomlx/pkg/core/tensors"

	"github.com/TuSKan/zarrs-go/zarr"
)

// Reader walks an array's dimension 0 in fixed-size batches.
type Reader struct {
	array        *zarr.Array
	currentIndex int64
}

// NewReader starts a batch reader at index 0 of array's leading
// dimension. array must have rank ≥ 1.
func NewReader(array *zarr.Array) (*Reader, error) {
	if array.Rank() == 0 {
		return nil, fmt.Errorf("batch: array must have rank >= 1")
	}
	return &Reader{array: array}, nil
}

// Next reads the next batch of up to batchSize rows along dimension 0,
// returning io.EOF once the leading dimension is exhausted.
func (r *Reader) Next(ctx context.Context, batchSize int64) (*tensors.Tensor, error) {
	shape := r.array.Shape()
	if r.currentIndex >= shape[0] {
		return nil, io.EOF
	}

	start := r.currentIndex
	end := start + batchSize
	if end > shape[0] {
		end = shape[0]
	}

	batchShape := make([]int64, len(shape))
	batchShape[0] = end - start
	copy(batchShape[1:], shape[1:])

	subsetStart := make([]int64, len(shape))
	subsetStart[0] = start

	subset := zarr.NewArraySubset(subsetStart, batchShape)
	raw, err := r.array.RetrieveArraySubset(ctx, subset)
	if err != nil {
		return nil, err
	}

	tensor, err := toTensor(raw, batchShape, r.array.DataType())
	if err != nil {
		return nil, err
	}

	r.currentIndex = end
	return tensor, nil
}

// toTensor reinterprets raw little-endian row-major element bytes as
// the gomlx tensor type matching dt.
func toTensor(raw []byte, shape []int64, dt zarr.DataType) (*tensors.Tensor, error) {
	dims := make([]int, len(shape))
	for i, d := range shape {
		dims[i] = int(d)
	}
	n := 1
	for _, d := range dims {
		n *= d
	}

	switch dt.Kind {
	case zarr.DataTypeFloat32:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return tensors.FromFlatDataAndDimensions(out, dims...), nil
	case zarr.DataTypeFloat64:
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return tensors.FromFlatDataAndDimensions(out, dims...), nil
	case zarr.DataTypeInt32:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return tensors.FromFlatDataAndDimensions(out, dims...), nil
	case zarr.DataTypeInt64:
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return tensors.FromFlatDataAndDimensions(out, dims...), nil
	default:
		return nil, fmt.Errorf("batch: unsupported tensor dtype %s", dt.String())
	}
}
