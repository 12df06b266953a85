package zarr

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TuSKan/zarrs-go/zarr/codec"
)

func bytesOnlyPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := BuildPipeline(codec.Default, []CodecMetadata{{Name: "bytes"}})
	require.NoError(t, err)
	return p
}

func TestBuildPipelineRequiresExactlyOneArrayToBytesCodec(t *testing.T) {
	_, err := BuildPipeline(codec.Default, []CodecMetadata{{Name: "gzip"}})
	require.Error(t, err)

	_, err = BuildPipeline(codec.Default, []CodecMetadata{{Name: "bytes"}, {Name: "bytes"}})
	require.Error(t, err)
}

func TestBuildPipelineRejectsUnregisteredCodec(t *testing.T) {
	_, err := BuildPipeline(codec.Default, []CodecMetadata{{Name: "made-up-codec"}})
	require.Error(t, err)
}

func TestPipelineEncodeDecodeSymmetryBytesOnly(t *testing.T) {
	p := bytesOnlyPipeline(t)
	rep := chunkRepresentation{shape: []int64{2, 2}, elementSize: 1}
	cfg := defaultConfig()

	input := []byte{1, 2, 3, 4}
	encoded, err := p.Encode(context.Background(), input, rep, cfg)
	require.NoError(t, err)
	require.Equal(t, input, encoded)

	decoded, err := p.Decode(context.Background(), encoded, rep, cfg)
	require.NoError(t, err)
	require.Equal(t, input, decoded)
}

func TestPipelineEncodeDecodeSymmetryWithGzipAndChecksum(t *testing.T) {
	p, err := BuildPipeline(codec.Default, []CodecMetadata{
		{Name: "bytes"}, {Name: "gzip"}, {Name: "crc32c"},
	})
	require.NoError(t, err)
	rep := chunkRepresentation{shape: []int64{8}, elementSize: 2}
	cfg := defaultConfig()

	input := make([]byte, 16)
	for i := range input {
		input[i] = byte(i)
	}
	encoded, err := p.Encode(context.Background(), input, rep, cfg)
	require.NoError(t, err)

	decoded, err := p.Decode(context.Background(), encoded, rep, cfg)
	require.NoError(t, err)
	require.Equal(t, input, decoded)
}

func TestPipelineDecodeDetectsChecksumCorruption(t *testing.T) {
	p, err := BuildPipeline(codec.Default, []CodecMetadata{{Name: "bytes"}, {Name: "crc32c"}})
	require.NoError(t, err)
	rep := chunkRepresentation{shape: []int64{4}, elementSize: 1}
	cfg := defaultConfig()

	encoded, err := p.Encode(context.Background(), []byte{1, 2, 3, 4}, rep, cfg)
	require.NoError(t, err)
	encoded[0] ^= 0xFF

	_, err = p.Decode(context.Background(), encoded, rep, cfg)
	require.Error(t, err)
}

func TestPipelineDecodeSkipsChecksumWhenConfiguredOff(t *testing.T) {
	p, err := BuildPipeline(codec.Default, []CodecMetadata{{Name: "bytes"}, {Name: "crc32c"}})
	require.NoError(t, err)
	rep := chunkRepresentation{shape: []int64{4}, elementSize: 1}
	cfg := defaultConfig()

	encoded, err := p.Encode(context.Background(), []byte{1, 2, 3, 4}, rep, cfg)
	require.NoError(t, err)
	encoded[0] ^= 0xFF

	cfg.ValidateChecksums = false
	decoded, err := p.Decode(context.Background(), encoded, rep, cfg)
	require.NoError(t, err)
	require.Len(t, decoded, 4)
}

func TestPipelineDecodeByteRangesFallsBackToFullDecode(t *testing.T) {
	p, err := BuildPipeline(codec.Default, []CodecMetadata{{Name: "bytes"}, {Name: "gzip"}})
	require.NoError(t, err)
	rep := chunkRepresentation{shape: []int64{4, 4}, elementSize: 1}
	cfg := defaultConfig()

	input := make([]byte, 16)
	for i := range input {
		input[i] = byte(i)
	}
	encoded, err := p.Encode(context.Background(), input, rep, cfg)
	require.NoError(t, err)

	ranges := []codec.ByteRange{{Offset: 0, Length: 4}, {Offset: 12, Length: 4}}
	parts, err := p.DecodeByteRanges(context.Background(), encoded, rep, cfg, ranges)
	require.NoError(t, err)
	require.Equal(t, input[0:4], parts[0])
	require.Equal(t, input[12:16], parts[1])
}

func TestPipelineDecodeByteRangesUsesPartialDecoderForBytesOnlyPipeline(t *testing.T) {
	p, err := BuildPipeline(codec.Default, []CodecMetadata{{Name: "bytes"}})
	require.NoError(t, err)
	rep := chunkRepresentation{shape: []int64{4, 4}, elementSize: 1}
	cfg := defaultConfig()

	input := make([]byte, 16)
	for i := range input {
		input[i] = byte(i)
	}
	encoded, err := p.Encode(context.Background(), input, rep, cfg)
	require.NoError(t, err)

	ranges := []codec.ByteRange{{Offset: 0, Length: 4}, {Offset: 12, Length: 4}}
	parts, err := p.DecodeByteRanges(context.Background(), encoded, rep, cfg, ranges)
	require.NoError(t, err)
	require.Equal(t, input[0:4], parts[0])
	require.Equal(t, input[12:16], parts[1])
}

func TestPipelinePartialEncodedByteRangesReportsSupportOnlyForBytesOnlyPipeline(t *testing.T) {
	bytesOnly, err := BuildPipeline(codec.Default, []CodecMetadata{{Name: "bytes"}})
	require.NoError(t, err)
	rep := chunkRepresentation{shape: []int64{4}, elementSize: 1}
	ranges := []codec.ByteRange{{Offset: 0, Length: 2}}

	got, ok := bytesOnly.PartialEncodedByteRanges(rep, ranges)
	require.True(t, ok)
	require.Equal(t, ranges, got)

	withGzip, err := BuildPipeline(codec.Default, []CodecMetadata{{Name: "bytes"}, {Name: "gzip"}})
	require.NoError(t, err)
	_, ok = withGzip.PartialEncodedByteRanges(rep, ranges)
	require.False(t, ok)
}

func TestPipelineEncodeDecodeWithTranspose(t *testing.T) {
	orderJSON, err := json.Marshal(map[string]any{"order": []int{1, 0}})
	require.NoError(t, err)
	p, err := BuildPipeline(codec.Default, []CodecMetadata{
		{Name: "transpose", Configuration: orderJSON}, {Name: "bytes"},
	})
	require.NoError(t, err)

	rep := chunkRepresentation{shape: []int64{2, 3}, elementSize: 1}
	cfg := defaultConfig()
	input := []byte{0, 1, 2, 3, 4, 5}

	encoded, err := p.Encode(context.Background(), input, rep, cfg)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 3, 1, 4, 2, 5}, encoded)

	decoded, err := p.Decode(context.Background(), encoded, rep, cfg)
	require.NoError(t, err)
	require.Equal(t, input, decoded)
}
