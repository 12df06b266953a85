package codec

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
)

// crc32cCodec appends a CRC-32C (Castagnoli) checksum to the encoded
// bytes on write, and verifies it on read. hash/crc32's Castagnoli
// table is the idiomatic Go way to compute this checksum, so this is
// the one bytes-to-bytes stage built directly on the standard library.
type crc32cCodec struct{}

func newCrc32cCodec(_ json.RawMessage) (any, error) {
	return &crc32cCodec{}, nil
}

var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

func (c *crc32cCodec) Identifier() string { return "crc32c" }

func (c *crc32cCodec) Encode(_ context.Context, input []byte) ([]byte, error) {
	sum := crc32.Checksum(input, castagnoliTable)
	out := make([]byte, len(input)+4)
	copy(out, input)
	binary.LittleEndian.PutUint32(out[len(input):], sum)
	return out, nil
}

func (c *crc32cCodec) Decode(_ context.Context, input []byte) ([]byte, error) {
	if len(input) < 4 {
		return nil, NewCodecError(CodecErrorInvalidByteLength, 4, uint64(len(input)), "crc32c input shorter than checksum", nil)
	}
	payload := input[:len(input)-4]
	want := binary.LittleEndian.Uint32(input[len(input)-4:])
	got := crc32.Checksum(payload, castagnoliTable)
	if want != got {
		return nil, NewCodecError(CodecErrorOther, uint64(want), uint64(got), "crc32c checksum mismatch", nil)
	}
	return payload, nil
}

// DecodeUnchecked strips the trailing checksum without verifying it,
// used when the global configuration disables checksum validation.
func (c *crc32cCodec) DecodeUnchecked(_ context.Context, input []byte) ([]byte, error) {
	if len(input) < 4 {
		return nil, NewCodecError(CodecErrorInvalidByteLength, 4, uint64(len(input)), "crc32c input shorter than checksum", nil)
	}
	return input[:len(input)-4], nil
}

func (c *crc32cCodec) ComputeEncodedSize(inputSize EncodedSize) EncodedSize {
	if inputSize.Kind != EncodedSizeFixed {
		return inputSize
	}
	return FixedSize(inputSize.Fixed + 4)
}
