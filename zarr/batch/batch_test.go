package batch

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TuSKan/zarrs-go/internal/teststore"
	"github.com/TuSKan/zarrs-go/zarr"
)

const tenByTwoFloat32 = `{
  "zarr_format": 3, "node_type": "array", "shape": [10, 2], "data_type": "float32",
  "chunk_grid": {"name": "regular", "configuration": {"chunk_shape": [5, 2]}},
  "chunk_key_encoding": {"name": "default", "configuration": {"separator": "/"}},
  "fill_value": 0.0, "codecs": [{"name": "bytes"}]
}`

func float32Bytes(vs []float32) []byte {
	out := make([]byte, len(vs)*4)
	for i, v := range vs {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func newFloatArray(t *testing.T) *zarr.Array {
	t.Helper()
	s := teststore.New()
	meta, err := zarr.ParseArrayMetadata([]byte(tenByTwoFloat32))
	require.NoError(t, err)
	arr, err := zarr.CreateArray(context.Background(), s, "", meta)
	require.NoError(t, err)

	ctx := context.Background()
	values := make([]float32, 20)
	for i := range values {
		values[i] = float32(i)
	}
	whole := zarr.NewArraySubset([]int64{0, 0}, []int64{10, 2})
	require.NoError(t, arr.StoreArraySubset(ctx, whole, float32Bytes(values)))
	return arr
}

func TestNewReaderRejectsRankZeroArray(t *testing.T) {
	s := teststore.New()
	meta, err := zarr.ParseArrayMetadata([]byte(`{
		"zarr_format": 3, "node_type": "array", "shape": [], "data_type": "float32",
		"chunk_grid": {"name": "regular", "configuration": {"chunk_shape": []}},
		"chunk_key_encoding": {"name": "default"}, "fill_value": 0.0, "codecs": [{"name": "bytes"}]
	}`))
	require.NoError(t, err)
	arr, err := zarr.CreateArray(context.Background(), s, "", meta)
	require.NoError(t, err)

	_, err = NewReader(arr)
	require.Error(t, err)
}

func TestReaderNextWalksBatchesAndReturnsEOF(t *testing.T) {
	arr := newFloatArray(t)
	r, err := NewReader(arr)
	require.NoError(t, err)
	ctx := context.Background()

	b1, err := r.Next(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, []int{3, 2}, b1.Shape().Dimensions)
	require.Equal(t, [][]float32{{0, 1}, {2, 3}, {4, 5}}, b1.Value().([][]float32))

	b2, err := r.Next(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, []int{3, 2}, b2.Shape().Dimensions)
	require.Equal(t, [][]float32{{6, 7}, {8, 9}, {10, 11}}, b2.Value().([][]float32))

	b3, err := r.Next(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, []int{4, 2}, b3.Shape().Dimensions)
	require.Equal(t, [][]float32{{12, 13}, {14, 15}, {16, 17}, {18, 19}}, b3.Value().([][]float32))

	_, err = r.Next(ctx, 1)
	require.ErrorIs(t, err, io.EOF)
}

func TestReaderNextOversizedBatchClampsToRemainingRows(t *testing.T) {
	arr := newFloatArray(t)
	r, err := NewReader(arr)
	require.NoError(t, err)
	ctx := context.Background()

	b, err := r.Next(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, []int{10, 2}, b.Shape().Dimensions)

	_, err = r.Next(ctx, 1)
	require.ErrorIs(t, err, io.EOF)
}

func TestToTensorInt32(t *testing.T) {
	values := []int32{-1, 2, 3, 4}
	raw := make([]byte, 16)
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[i*4:], uint32(v))
	}
	tensor, err := toTensor(raw, []int64{4}, zarr.DataType{Kind: zarr.DataTypeInt32})
	require.NoError(t, err)
	require.Equal(t, []int32{-1, 2, 3, 4}, tensor.Value().([]int32))
}

func TestToTensorInt64(t *testing.T) {
	values := []int64{-1, 2, 3, 4}
	raw := make([]byte, 32)
	for i, v := range values {
		binary.LittleEndian.PutUint64(raw[i*8:], uint64(v))
	}
	tensor, err := toTensor(raw, []int64{4}, zarr.DataType{Kind: zarr.DataTypeInt64})
	require.NoError(t, err)
	require.Equal(t, []int64{-1, 2, 3, 4}, tensor.Value().([]int64))
}

func TestToTensorFloat64(t *testing.T) {
	values := []float64{1.5, -2.5}
	raw := make([]byte, 16)
	for i, v := range values {
		binary.LittleEndian.PutUint64(raw[i*8:], math.Float64bits(v))
	}
	tensor, err := toTensor(raw, []int64{2}, zarr.DataType{Kind: zarr.DataTypeFloat64})
	require.NoError(t, err)
	require.Equal(t, []float64{1.5, -2.5}, tensor.Value().([]float64))
}

func TestToTensorRejectsUnsupportedDType(t *testing.T) {
	_, err := toTensor([]byte{1}, []int64{1}, zarr.DataType{Kind: zarr.DataTypeUint8})
	require.Error(t, err)
}
