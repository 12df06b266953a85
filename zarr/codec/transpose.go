package codec

import (
	"context"
	"encoding/json"
)

// transposeCodec permutes an array's dimension order before it reaches
// the array-to-bytes codec, e.g. to make a Fortran-order array
// contiguous in C order for downstream codecs.
type transposeCodec struct {
	order []int
}

type transposeCodecConfiguration struct {
	Order []int `json:"order"`
}

func newTransposeCodec(configuration json.RawMessage) (any, error) {
	var cfg transposeCodecConfiguration
	if err := json.Unmarshal(configuration, &cfg); err != nil {
		return nil, err
	}
	if !isPermutation(cfg.Order) {
		return nil, errUnsupportedConfiguration("transpose", "order must be a permutation of 0..rank-1")
	}
	return &transposeCodec{order: cfg.Order}, nil
}

func isPermutation(order []int) bool {
	seen := make([]bool, len(order))
	for _, v := range order {
		if v < 0 || v >= len(order) || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

func (c *transposeCodec) Identifier() string { return "transpose" }

func (c *transposeCodec) ResolveOutputShape(rep ArrayRepresentation) []int64 {
	out := make([]int64, len(c.order))
	for i, axis := range c.order {
		out[i] = rep.Shape[axis]
	}
	return out
}

func (c *transposeCodec) EncodeArray(_ context.Context, input []byte, rep ArrayRepresentation) ([]byte, error) {
	return permuteElements(input, rep.Shape, c.order, rep.ElementSize), nil
}

func (c *transposeCodec) DecodeArray(_ context.Context, input []byte, rep ArrayRepresentation) ([]byte, error) {
	return permuteElements(input, c.ResolveOutputShape(rep), inversePermutation(c.order), rep.ElementSize), nil
}

func inversePermutation(order []int) []int {
	inv := make([]int, len(order))
	for i, v := range order {
		inv[v] = i
	}
	return inv
}

// permuteElements reorders the elements of a row-major array with the
// given shape so that output dimension i holds input dimension
// order[i]. The input is interpreted as row-major in shape; the output
// is row-major in the permuted shape.
func permuteElements(input []byte, shape []int64, order []int, elementSize int) []byte {
	rank := len(shape)
	outShape := make([]int64, rank)
	for i, axis := range order {
		outShape[i] = shape[axis]
	}
	inStrides := rowMajorStrides(shape)
	outStrides := rowMajorStrides(outShape)

	out := make([]byte, len(input))
	idx := make([]int64, rank)
	total := int64(1)
	for _, d := range shape {
		total *= d
	}
	for n := int64(0); n < total; n++ {
		var inOffset, outOffset int64
		for i := 0; i < rank; i++ {
			inOffset += idx[i] * inStrides[i]
		}
		for outDim, inDim := range order {
			outOffset += idx[inDim] * outStrides[outDim]
		}
		copy(out[outOffset*int64(elementSize):], input[inOffset*int64(elementSize):inOffset*int64(elementSize)+int64(elementSize)])
		incrementRowMajor(idx, shape)
	}
	return out
}

func rowMajorStrides(shape []int64) []int64 {
	n := len(shape)
	s := make([]int64, n)
	stride := int64(1)
	for i := n - 1; i >= 0; i-- {
		s[i] = stride
		stride *= shape[i]
	}
	return s
}

func incrementRowMajor(idx, shape []int64) bool {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < shape[i] {
			return true
		}
		idx[i] = 0
	}
	return false
}
