// Package codec implements the Zarr v3 codec pipeline: array-to-array,
// array-to-bytes, and bytes-to-bytes transformation stages, plus the
// global registry plugins are looked up from by name.
package codec

import (
	"context"
	"fmt"
)

// EncodedSize describes how a codec's output size relates to its input
// size: exactly Fixed bytes, at most Bound bytes, or unbounded.
type EncodedSize struct {
	Kind  EncodedSizeKind
	Fixed uint64 // valid when Kind == EncodedSizeFixed
	Bound uint64 // valid when Kind == EncodedSizeBounded
}

type EncodedSizeKind int

const (
	EncodedSizeFixed EncodedSizeKind = iota
	EncodedSizeBounded
	EncodedSizeUnbounded
)

func FixedSize(n uint64) EncodedSize   { return EncodedSize{Kind: EncodedSizeFixed, Fixed: n} }
func BoundedSize(n uint64) EncodedSize { return EncodedSize{Kind: EncodedSizeBounded, Bound: n} }
func UnboundedSize() EncodedSize       { return EncodedSize{Kind: EncodedSizeUnbounded} }

// ArrayRepresentation describes the shape, data type and fill value a
// codec stage sees on its array side. Codecs do not retain this value;
// it is passed per-call so a single codec instance can serve chunks
// with varying edge shapes.
type ArrayRepresentation struct {
	Shape        []int64
	ElementSize  int
	FillValue    []byte
}

// ArrayToArrayCodec transforms one array representation into another of
// equal element count, e.g. transpose.
type ArrayToArrayCodec interface {
	Identifier() string
	EncodeArray(ctx context.Context, input []byte, rep ArrayRepresentation) ([]byte, error)
	DecodeArray(ctx context.Context, input []byte, rep ArrayRepresentation) ([]byte, error)
	// ResolveOutputShape returns the shape an encoded array has on the
	// far side of this codec, e.g. after transposing dimensions.
	ResolveOutputShape(rep ArrayRepresentation) []int64
}

// ArrayToBytesCodec is the exactly-one stage in a pipeline that
// serialises an array representation to a flat byte encoding.
type ArrayToBytesCodec interface {
	Identifier() string
	Encode(ctx context.Context, input []byte, rep ArrayRepresentation) ([]byte, error)
	Decode(ctx context.Context, input []byte, rep ArrayRepresentation) ([]byte, error)
	ComputeEncodedSize(rep ArrayRepresentation) EncodedSize
}

// BytesToBytesCodec transforms one byte encoding into another, e.g.
// compression or a checksum.
type BytesToBytesCodec interface {
	Identifier() string
	Encode(ctx context.Context, input []byte) ([]byte, error)
	Decode(ctx context.Context, input []byte) ([]byte, error)
	ComputeEncodedSize(inputSize EncodedSize) EncodedSize
}

// PartialBytesDecoder is implemented by an array-to-bytes codec whose
// encoding lets a caller fetch and decode a subset of a chunk's encoded
// bytes without materialising the whole thing. A codec whose encoding
// does not allow partial access (or which chooses not to implement it)
// does not implement this interface at all, and callers fall back to a
// full decode followed by slicing in memory. The zstd codec is one such
// case: its frame format has no stable per-range seek point.
//
// EncodedByteRanges maps the decoded-element byte ranges a caller wants
// to the encoded byte ranges a store should be asked for, in the same
// order. DecodeRanges then turns the fetched encoded parts (in that same
// order) into decoded bytes for each requested range.
type PartialBytesDecoder interface {
	EncodedByteRanges(rep ArrayRepresentation, ranges []ByteRange) []ByteRange
	DecodeRanges(ctx context.Context, encodedParts [][]byte, rep ArrayRepresentation, ranges []ByteRange) ([][]byte, error)
}

// ByteRange is a half-open byte range [Offset, Offset+Length) into an
// encoded chunk.
type ByteRange struct {
	Offset uint64
	Length uint64
}

// ChecksumSkippable is implemented by bytes-to-bytes codecs whose
// decode step can optionally skip verification, honouring the global
// validate_checksums configuration flag.
type ChecksumSkippable interface {
	DecodeUnchecked(ctx context.Context, input []byte) ([]byte, error)
}

// Kind classifies where in a pipeline a codec plugin may be used. A
// single identifier (e.g. "crc32c") only ever implements one kind.
type Kind int

const (
	KindArrayToArray Kind = iota
	KindArrayToBytes
	KindBytesToBytes
)

// errUnsupportedConfiguration is returned by plugin constructors when a
// codec's JSON configuration names options this build does not
// implement.
func errUnsupportedConfiguration(identifier string, reason string) error {
	return fmt.Errorf("codec %q: unsupported configuration: %s", identifier, reason)
}
