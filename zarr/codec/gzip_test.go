package codec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGzipCodecRoundTrip(t *testing.T) {
	c, err := newGzipCodec(nil)
	require.NoError(t, err)
	gc := c.(*gzipCodec)

	input := []byte("the quick brown fox jumps over the lazy dog, repeated. the quick brown fox jumps over the lazy dog.")
	encoded, err := gc.Encode(context.Background(), input)
	require.NoError(t, err)
	require.NotEqual(t, input, encoded)

	decoded, err := gc.Decode(context.Background(), encoded)
	require.NoError(t, err)
	require.Equal(t, input, decoded)
}

func TestGzipCodecRejectsOutOfRangeLevel(t *testing.T) {
	_, err := newGzipCodec(rawConfig(`{"level":99}`))
	require.Error(t, err)
}

func TestGzipCodecUnboundedSize(t *testing.T) {
	c, err := newGzipCodec(nil)
	require.NoError(t, err)
	gc := c.(*gzipCodec)
	size := gc.ComputeEncodedSize(FixedSize(100))
	require.Equal(t, EncodedSizeUnbounded, size.Kind)
}
