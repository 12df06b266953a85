package codec

import (
	"context"
	"encoding/json"

	"github.com/klauspost/compress/zstd"
)

// zstdCodec wraps klauspost/compress/zstd. Its partial decoder always
// decodes the whole input before slicing the requested ranges: zstd's
// frame format does not expose a stable per-range seek point the way a
// block codec would, so PartialBytesDecoder is intentionally not
// implemented here and callers fall back to full decode.
type zstdCodec struct {
	level zstd.EncoderLevel
}

type zstdCodecConfiguration struct {
	Level int `json:"level"`
}

func newZstdCodec(configuration json.RawMessage) (any, error) {
	cfg := zstdCodecConfiguration{Level: int(zstd.SpeedDefault)}
	if len(configuration) > 0 {
		if err := json.Unmarshal(configuration, &cfg); err != nil {
			return nil, err
		}
	}
	return &zstdCodec{level: zstd.EncoderLevel(cfg.Level)}, nil
}

func (c *zstdCodec) Identifier() string { return "zstd" }

func (c *zstdCodec) Encode(_ context.Context, input []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(c.level))
	if err != nil {
		return nil, NewCodecError(CodecErrorOther, 0, 0, "zstd encode init", err)
	}
	defer enc.Close()
	return enc.EncodeAll(input, nil), nil
}

func (c *zstdCodec) Decode(_ context.Context, input []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, NewCodecError(CodecErrorOther, 0, 0, "zstd decode init", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(input, nil)
	if err != nil {
		return nil, NewCodecError(CodecErrorIO, 0, 0, "zstd decode", err)
	}
	return out, nil
}

// ComputeEncodedSize bounds a zstd frame's worst-case size: a 22-byte
// frame overhead plus 3 bytes per 1000-byte block, rounded up. Actual
// compressed output is data-dependent and essentially always smaller,
// so this is a ceiling, not an exact size.
func (c *zstdCodec) ComputeEncodedSize(inputSize EncodedSize) EncodedSize {
	if inputSize.Kind != EncodedSizeFixed {
		return UnboundedSize()
	}
	n := inputSize.Fixed
	blocks := (n + 999) / 1000
	return BoundedSize(n + 22 + 3*blocks)
}
