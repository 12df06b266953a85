package codec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBz2CodecEncodeUnsupported(t *testing.T) {
	c, err := newBz2Codec(nil)
	require.NoError(t, err)
	bc := c.(*bz2Codec)

	_, err = bc.Encode(context.Background(), []byte("data"))
	require.Error(t, err)
	var codecErr *CodecError
	require.ErrorAs(t, err, &codecErr)
}

func TestBz2CodecDecodeRejectsMalformedInput(t *testing.T) {
	c, err := newBz2Codec(nil)
	require.NoError(t, err)
	bc := c.(*bz2Codec)

	_, err = bc.Decode(context.Background(), []byte("not a bzip2 stream"))
	require.Error(t, err)
}

func TestBz2CodecDefaultLevel(t *testing.T) {
	c, err := newBz2Codec(nil)
	require.NoError(t, err)
	bc := c.(*bz2Codec)
	require.Equal(t, 9, bc.level)
}
