package zarr

import (
	"context"
	"errors"

	"github.com/TuSKan/zarrs-go/zarr/codec"
)

// Pipeline is a fully resolved codec chain for one array: zero or more
// array-to-array stages, exactly one array-to-bytes stage, and zero or
// more bytes-to-bytes stages, applied in that order on encode and in
// reverse on decode.
type Pipeline struct {
	arrayToArray []codec.ArrayToArrayCodec
	arrayToBytes codec.ArrayToBytesCodec
	bytesToBytes []codec.BytesToBytesCodec
}

// BuildPipeline resolves an array's codecs list into concrete plugin
// instances using the given registry. Exactly one array-to-bytes codec
// must appear in the list.
func BuildPipeline(registry *codec.Registry, metas []CodecMetadata) (*Pipeline, error) {
	p := &Pipeline{}
	for _, m := range metas {
		kind, ok := registry.KindOf(m.Name)
		if !ok {
			return nil, newPluginCreateError("codec", m.Name, "not registered")
		}
		instance, err := registry.Create(m.Name, kind, m.Configuration)
		if err != nil {
			return nil, newPluginCreateError("codec", m.Name, err.Error())
		}
		switch kind {
		case codec.KindArrayToArray:
			c, ok := instance.(codec.ArrayToArrayCodec)
			if !ok {
				return nil, newPluginCreateError("codec", m.Name, "does not implement ArrayToArrayCodec")
			}
			p.arrayToArray = append(p.arrayToArray, c)
		case codec.KindArrayToBytes:
			c, ok := instance.(codec.ArrayToBytesCodec)
			if !ok {
				return nil, newPluginCreateError("codec", m.Name, "does not implement ArrayToBytesCodec")
			}
			if p.arrayToBytes != nil {
				return nil, newMetadataError("codecs list contains more than one array-to-bytes codec")
			}
			p.arrayToBytes = c
		case codec.KindBytesToBytes:
			c, ok := instance.(codec.BytesToBytesCodec)
			if !ok {
				return nil, newPluginCreateError("codec", m.Name, "does not implement BytesToBytesCodec")
			}
			p.bytesToBytes = append(p.bytesToBytes, c)
		}
	}
	if p.arrayToBytes == nil {
		return nil, newMetadataError("codecs list must contain exactly one array-to-bytes codec")
	}
	return p, nil
}

// chunkRepresentation describes one chunk's uncompressed shape for
// codec configuration purposes (always the grid's configured chunk
// shape; edge handling happens above the pipeline).
type chunkRepresentation struct {
	shape       []int64
	elementSize int
	fillValue   []byte
}

func (p *Pipeline) arrayRep(rep chunkRepresentation) codec.ArrayRepresentation {
	return codec.ArrayRepresentation{Shape: rep.shape, ElementSize: rep.elementSize, FillValue: rep.fillValue}
}

// Encode runs a chunk's raw row-major element bytes through the full
// pipeline, producing the bytes that are written to the store.
func (p *Pipeline) Encode(ctx context.Context, raw []byte, rep chunkRepresentation, cfg Config) ([]byte, error) {
	arep := p.arrayRep(rep)
	data := raw
	for _, c := range p.arrayToArray {
		out, err := c.EncodeArray(ctx, data, arep)
		if err != nil {
			return nil, err
		}
		data = out
		arep.Shape = c.ResolveOutputShape(arep)
	}
	encoded, err := p.arrayToBytes.Encode(ctx, data, arep)
	if err != nil {
		return nil, err
	}
	data = encoded
	for _, c := range p.bytesToBytes {
		out, err := c.Encode(ctx, data)
		if err != nil {
			return nil, err
		}
		data = out
	}
	return data, nil
}

// Decode runs an encoded chunk through the pipeline in reverse,
// producing raw row-major element bytes. Checksum bytes-to-bytes
// stages honour cfg.ValidateChecksums.
func (p *Pipeline) Decode(ctx context.Context, encoded []byte, rep chunkRepresentation, cfg Config) ([]byte, error) {
	data := encoded
	for i := len(p.bytesToBytes) - 1; i >= 0; i-- {
		c := p.bytesToBytes[i]
		var out []byte
		var err error
		if !cfg.ValidateChecksums {
			if skippable, ok := c.(codec.ChecksumSkippable); ok {
				out, err = skippable.DecodeUnchecked(ctx, data)
			} else {
				out, err = c.Decode(ctx, data)
			}
		} else {
			out, err = c.Decode(ctx, data)
		}
		if err != nil {
			return nil, err
		}
		data = out
	}

	// Resolve the array representation each array-to-array stage saw
	// on its output side, by walking forward once over shapes only.
	shapes := make([]codec.ArrayRepresentation, len(p.arrayToArray)+1)
	shapes[0] = p.arrayRep(rep)
	for i, c := range p.arrayToArray {
		next := shapes[i]
		next.Shape = c.ResolveOutputShape(shapes[i])
		shapes[i+1] = next
	}

	decoded, err := p.arrayToBytes.Decode(ctx, data, shapes[len(shapes)-1])
	if err != nil {
		return nil, err
	}
	data = decoded
	for i := len(p.arrayToArray) - 1; i >= 0; i-- {
		out, err := p.arrayToArray[i].DecodeArray(ctx, data, shapes[i])
		if err != nil {
			return nil, err
		}
		data = out
	}
	return data, nil
}

// partialDecoder returns the array-to-bytes codec's partial decoder when
// the pipeline can use it: no array-to-array stages to invert and no
// bytes-to-bytes stages to fully unwrap first.
func (p *Pipeline) partialDecoder() (codec.PartialBytesDecoder, bool) {
	if len(p.arrayToArray) != 0 || len(p.bytesToBytes) != 0 {
		return nil, false
	}
	pd, ok := p.arrayToBytes.(codec.PartialBytesDecoder)
	return pd, ok
}

// PartialEncodedByteRanges maps the requested decoded-element byte
// ranges to the encoded byte ranges a store should be asked for. The
// second return value is false when this pipeline cannot serve a
// partial decode at all, in which case the caller must fetch and decode
// the whole chunk.
func (p *Pipeline) PartialEncodedByteRanges(rep chunkRepresentation, ranges []codec.ByteRange) ([]codec.ByteRange, bool) {
	pd, ok := p.partialDecoder()
	if !ok {
		return nil, false
	}
	return pd.EncodedByteRanges(p.arrayRep(rep), ranges), true
}

// DecodePartial turns encoded byte parts already fetched for the ranges
// returned by PartialEncodedByteRanges into decoded bytes for each
// requested range. It must only be called when PartialEncodedByteRanges
// reported true for the same pipeline and ranges.
func (p *Pipeline) DecodePartial(ctx context.Context, encodedParts [][]byte, rep chunkRepresentation, ranges []codec.ByteRange) ([][]byte, error) {
	pd, ok := p.partialDecoder()
	if !ok {
		return nil, errors.New("pipeline does not support partial decode")
	}
	return pd.DecodeRanges(ctx, encodedParts, p.arrayRep(rep), ranges)
}

// DecodeByteRanges serves the requested decoded-element byte ranges of
// one already-fetched encoded chunk. When the pipeline has no
// array-to-array or bytes-to-bytes stages and its array-to-bytes codec
// supports partial decoding, the relevant encoded byte ranges are
// sliced out of encoded and decoded independently per range; otherwise
// the whole chunk is decoded once and the ranges are sliced out of it
// locally.
func (p *Pipeline) DecodeByteRanges(ctx context.Context, encoded []byte, rep chunkRepresentation, cfg Config, ranges []codec.ByteRange) ([][]byte, error) {
	if pd, ok := p.partialDecoder(); ok {
		arep := p.arrayRep(rep)
		encodedRanges := pd.EncodedByteRanges(arep, ranges)
		parts := make([][]byte, len(encodedRanges))
		for i, r := range encodedRanges {
			if r.Offset+r.Length > uint64(len(encoded)) {
				return nil, errors.New("byte range exceeds encoded chunk size")
			}
			parts[i] = encoded[r.Offset : r.Offset+r.Length]
		}
		return pd.DecodeRanges(ctx, parts, arep, ranges)
	}
	decoded, err := p.Decode(ctx, encoded, rep, cfg)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(ranges))
	for i, r := range ranges {
		if r.Offset+r.Length > uint64(len(decoded)) {
			return nil, errors.New("byte range exceeds decoded chunk size")
		}
		out[i] = decoded[r.Offset : r.Offset+r.Length]
	}
	return out, nil
}
