package codec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCrc32cCodecRoundTrip(t *testing.T) {
	c, err := newCrc32cCodec(nil)
	require.NoError(t, err)
	cc := c.(*crc32cCodec)

	input := []byte("chunked array payload")
	encoded, err := cc.Encode(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, encoded, len(input)+4)

	decoded, err := cc.Decode(context.Background(), encoded)
	require.NoError(t, err)
	require.Equal(t, input, decoded)
}

func TestCrc32cCodecDetectsCorruption(t *testing.T) {
	c, err := newCrc32cCodec(nil)
	require.NoError(t, err)
	cc := c.(*crc32cCodec)

	input := []byte("chunked array payload")
	encoded, err := cc.Encode(context.Background(), input)
	require.NoError(t, err)

	encoded[0] ^= 0xFF
	_, err = cc.Decode(context.Background(), encoded)
	require.Error(t, err)
}

func TestCrc32cCodecDecodeUncheckedSkipsValidation(t *testing.T) {
	c, err := newCrc32cCodec(nil)
	require.NoError(t, err)
	cc := c.(*crc32cCodec)

	input := []byte("chunked array payload")
	encoded, err := cc.Encode(context.Background(), input)
	require.NoError(t, err)
	encoded[0] ^= 0xFF

	decoded, err := cc.DecodeUnchecked(context.Background(), encoded)
	require.NoError(t, err)
	require.Len(t, decoded, len(input))
}

func TestCrc32cCodecRejectsTooShortInput(t *testing.T) {
	c, err := newCrc32cCodec(nil)
	require.NoError(t, err)
	cc := c.(*crc32cCodec)

	_, err = cc.Decode(context.Background(), []byte{1, 2})
	require.Error(t, err)
}

func TestCrc32cCodecComputeEncodedSize(t *testing.T) {
	c, err := newCrc32cCodec(nil)
	require.NoError(t, err)
	cc := c.(*crc32cCodec)
	size := cc.ComputeEncodedSize(FixedSize(100))
	require.Equal(t, uint64(104), size.Fixed)
}
