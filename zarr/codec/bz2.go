package codec

import (
	"bytes"
	"compress/bzip2"
	"context"
	"encoding/json"
	"io"
)

// bz2Codec decodes bzip2-compressed chunks with the standard library's
// reader. No pure-Go bzip2 encoder exists anywhere in this module's
// dependency surface, so Encode reports an error rather than shelling
// out to a C library or vendoring one; arrays configured with this
// codec can still be read, just not written, by this engine.
type bz2Codec struct {
	level int
}

type bz2CodecConfiguration struct {
	Level int `json:"level,omitempty"`
}

func newBz2Codec(configuration json.RawMessage) (any, error) {
	cfg := bz2CodecConfiguration{Level: 9}
	if len(configuration) > 0 {
		if err := json.Unmarshal(configuration, &cfg); err != nil {
			return nil, err
		}
	}
	return &bz2Codec{level: cfg.Level}, nil
}

func (c *bz2Codec) Identifier() string { return "bz2" }

func (c *bz2Codec) Encode(_ context.Context, _ []byte) ([]byte, error) {
	return nil, NewCodecError(CodecErrorOther, 0, 0, "bz2 encoding is not supported by this build", nil)
}

func (c *bz2Codec) Decode(_ context.Context, input []byte) ([]byte, error) {
	out, err := io.ReadAll(bzip2.NewReader(bytes.NewReader(input)))
	if err != nil {
		return nil, NewCodecError(CodecErrorIO, 0, 0, "bz2 decode", err)
	}
	return out, nil
}

func (c *bz2Codec) ComputeEncodedSize(_ EncodedSize) EncodedSize {
	return UnboundedSize()
}
