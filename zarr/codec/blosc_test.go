package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// The exact mrjoshuak/go-blosc Compress/CompressCtx call is an
// unverified guess (see DESIGN.md); these tests only cover
// construction and configuration defaults, which do not depend on
// that call's exact signature being correct.

func TestBloscCodecDefaults(t *testing.T) {
	c, err := newBloscCodec(nil)
	require.NoError(t, err)
	bc := c.(*bloscCodec)
	require.Equal(t, "lz4", bc.cname)
	require.Equal(t, 5, bc.clevel)
	require.Equal(t, 1, bc.shuffle)
	require.Equal(t, 1, bc.typesize)
}

func TestBloscCodecCustomConfiguration(t *testing.T) {
	c, err := newBloscCodec(rawConfig(`{"cname":"zstd","clevel":9,"shuffle":2,"typesize":4}`))
	require.NoError(t, err)
	bc := c.(*bloscCodec)
	require.Equal(t, "zstd", bc.cname)
	require.Equal(t, 9, bc.clevel)
	require.Equal(t, 2, bc.shuffle)
	require.Equal(t, 4, bc.typesize)
}

func TestBloscCodecUnboundedSize(t *testing.T) {
	c, err := newBloscCodec(nil)
	require.NoError(t, err)
	bc := c.(*bloscCodec)
	require.Equal(t, EncodedSizeUnbounded, bc.ComputeEncodedSize(FixedSize(10)).Kind)
}

func TestBloscCodecIdentifier(t *testing.T) {
	c, err := newBloscCodec(nil)
	require.NoError(t, err)
	require.Equal(t, "blosc", c.(*bloscCodec).Identifier())
}
