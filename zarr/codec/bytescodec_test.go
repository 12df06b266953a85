package codec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBytesCodecLittleEndianRoundTrip(t *testing.T) {
	c, err := newBytesCodec(nil)
	require.NoError(t, err)
	bc := c.(*bytesCodec)

	rep := ArrayRepresentation{Shape: []int64{4}, ElementSize: 4}
	input := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

	encoded, err := bc.Encode(context.Background(), input, rep)
	require.NoError(t, err)
	require.Equal(t, input, encoded)

	decoded, err := bc.Decode(context.Background(), encoded, rep)
	require.NoError(t, err)
	require.Equal(t, input, decoded)
}

func TestBytesCodecBigEndianSwapsElements(t *testing.T) {
	c, err := newBytesCodec(rawConfig(`{"endian":"big"}`))
	require.NoError(t, err)
	bc := c.(*bytesCodec)

	rep := ArrayRepresentation{Shape: []int64{2}, ElementSize: 4}
	input := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	encoded, err := bc.Encode(context.Background(), input, rep)
	require.NoError(t, err)
	require.Equal(t, []byte{4, 3, 2, 1, 8, 7, 6, 5}, encoded)

	decoded, err := bc.Decode(context.Background(), encoded, rep)
	require.NoError(t, err)
	require.Equal(t, input, decoded)
}

func TestBytesCodecRejectsUnknownEndian(t *testing.T) {
	_, err := newBytesCodec(rawConfig(`{"endian":"middle"}`))
	require.Error(t, err)
}

func TestBytesCodecComputeEncodedSize(t *testing.T) {
	c, err := newBytesCodec(nil)
	require.NoError(t, err)
	bc := c.(*bytesCodec)
	size := bc.ComputeEncodedSize(ArrayRepresentation{Shape: []int64{3, 4}, ElementSize: 2})
	require.Equal(t, EncodedSizeFixed, size.Kind)
	require.Equal(t, uint64(24), size.Fixed)
}

func TestBytesCodecImplementsPartialBytesDecoder(t *testing.T) {
	c, err := newBytesCodec(nil)
	require.NoError(t, err)
	_, ok := c.(PartialBytesDecoder)
	require.True(t, ok)
}

func TestBytesCodecEncodedByteRangesIsIdentity(t *testing.T) {
	c, err := newBytesCodec(nil)
	require.NoError(t, err)
	bc := c.(*bytesCodec)

	rep := ArrayRepresentation{Shape: []int64{4}, ElementSize: 4}
	ranges := []ByteRange{{Offset: 4, Length: 8}, {Offset: 0, Length: 4}}
	got := bc.EncodedByteRanges(rep, ranges)
	require.Equal(t, ranges, got)
}

func TestBytesCodecDecodeRangesLittleEndian(t *testing.T) {
	c, err := newBytesCodec(nil)
	require.NoError(t, err)
	bc := c.(*bytesCodec)

	rep := ArrayRepresentation{Shape: []int64{4}, ElementSize: 4}
	parts := [][]byte{{5, 6, 7, 8}, {1, 2, 3, 4}}
	decoded, err := bc.DecodeRanges(context.Background(), parts, rep, nil)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{5, 6, 7, 8}, {1, 2, 3, 4}}, decoded)
}

func TestBytesCodecDecodeRangesBigEndianSwapsPerPart(t *testing.T) {
	c, err := newBytesCodec(rawConfig(`{"endian":"big"}`))
	require.NoError(t, err)
	bc := c.(*bytesCodec)

	rep := ArrayRepresentation{Shape: []int64{2}, ElementSize: 4}
	parts := [][]byte{{4, 3, 2, 1}, {8, 7, 6, 5}}
	decoded, err := bc.DecodeRanges(context.Background(), parts, rep, nil)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{1, 2, 3, 4}, {5, 6, 7, 8}}, decoded)
}

func rawConfig(s string) []byte { return []byte(s) }
