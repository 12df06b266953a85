package codec

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/klauspost/compress/gzip"
)

// gzipCodec wraps klauspost/compress/gzip, a drop-in accelerated gzip
// implementation.
type gzipCodec struct {
	level int
}

type gzipCodecConfiguration struct {
	Level int `json:"level"`
}

func newGzipCodec(configuration json.RawMessage) (any, error) {
	cfg := gzipCodecConfiguration{Level: gzip.DefaultCompression}
	if len(configuration) > 0 {
		if err := json.Unmarshal(configuration, &cfg); err != nil {
			return nil, err
		}
	}
	if cfg.Level < gzip.HuffmanOnly || cfg.Level > gzip.BestCompression {
		return nil, errUnsupportedConfiguration("gzip", "level out of range")
	}
	return &gzipCodec{level: cfg.Level}, nil
}

func (c *gzipCodec) Identifier() string { return "gzip" }

func (c *gzipCodec) Encode(_ context.Context, input []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, NewCodecError(CodecErrorOther, 0, 0, "gzip encode init", err)
	}
	if _, err := w.Write(input); err != nil {
		w.Close()
		return nil, NewCodecError(CodecErrorIO, 0, 0, "gzip encode write", err)
	}
	if err := w.Close(); err != nil {
		return nil, NewCodecError(CodecErrorIO, 0, 0, "gzip encode close", err)
	}
	return buf.Bytes(), nil
}

func (c *gzipCodec) Decode(_ context.Context, input []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(input))
	if err != nil {
		return nil, NewCodecError(CodecErrorIO, 0, 0, "gzip decode init", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, NewCodecError(CodecErrorIO, 0, 0, "gzip decode read", err)
	}
	return out, nil
}

func (c *gzipCodec) ComputeEncodedSize(_ EncodedSize) EncodedSize {
	return UnboundedSize()
}
