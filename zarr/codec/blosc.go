package codec

import (
	"context"
	"encoding/json"

	"github.com/mrjoshuak/go-blosc"
)

// bloscCodec wraps mrjoshuak/go-blosc.
type bloscCodec struct {
	cname   string
	clevel  int
	shuffle int
	typesize int
}

type bloscCodecConfiguration struct {
	Cname    string `json:"cname,omitempty"`
	Clevel   int    `json:"clevel,omitempty"`
	Shuffle  int    `json:"shuffle,omitempty"`
	Typesize int    `json:"typesize,omitempty"`
}

func newBloscCodec(configuration json.RawMessage) (any, error) {
	cfg := bloscCodecConfiguration{Cname: "lz4", Clevel: 5, Shuffle: 1, Typesize: 1}
	if len(configuration) > 0 {
		if err := json.Unmarshal(configuration, &cfg); err != nil {
			return nil, err
		}
	}
	return &bloscCodec{cname: cfg.Cname, clevel: cfg.Clevel, shuffle: cfg.Shuffle, typesize: cfg.Typesize}, nil
}

func (c *bloscCodec) Identifier() string { return "blosc" }

func (c *bloscCodec) Encode(_ context.Context, input []byte) ([]byte, error) {
	out, err := blosc.CompressCtx(c.clevel, c.shuffle, c.typesize, input, c.cname)
	if err != nil {
		return nil, NewCodecError(CodecErrorIO, 0, 0, "blosc encode", err)
	}
	return out, nil
}

func (c *bloscCodec) Decode(_ context.Context, input []byte) ([]byte, error) {
	out, err := blosc.Decompress(input)
	if err != nil {
		return nil, NewCodecError(CodecErrorIO, 0, 0, "blosc decode", err)
	}
	return out, nil
}

func (c *bloscCodec) ComputeEncodedSize(_ EncodedSize) EncodedSize {
	return UnboundedSize()
}
