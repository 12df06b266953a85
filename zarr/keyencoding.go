package zarr

import (
	"strconv"
	"strings"
)

// ChunkKeyEncodingStyle selects between the "default" (c/0/1/2) and "v2"
// (0.1.2) chunk key grammars.
type ChunkKeyEncodingStyle int

const (
	ChunkKeyEncodingDefault ChunkKeyEncodingStyle = iota
	ChunkKeyEncodingV2
)

// ChunkKeyEncoding is a total function from chunk grid coordinates to the
// data-key path component under an array's node path. It never fails to
// encode; decoding is not part of the production surface, only exercised
// as a test helper for the key-encoding round-trip property.
type ChunkKeyEncoding struct {
	Style     ChunkKeyEncodingStyle
	Separator byte // '/' or '.'
}

// DefaultChunkKeyEncoding returns the "default" style with its default
// separator '/'.
func DefaultChunkKeyEncoding() ChunkKeyEncoding {
	return ChunkKeyEncoding{Style: ChunkKeyEncodingDefault, Separator: '/'}
}

// V2ChunkKeyEncoding returns the "v2" style with its default separator '.'.
func V2ChunkKeyEncoding() ChunkKeyEncoding {
	return ChunkKeyEncoding{Style: ChunkKeyEncodingV2, Separator: '.'}
}

// ParseChunkKeyEncoding validates (style, separator) combinations accepted
// by the v3 metadata document.
func ParseChunkKeyEncoding(style string, separator byte) (ChunkKeyEncoding, error) {
	if separator != '/' && separator != '.' {
		return ChunkKeyEncoding{}, newPluginCreateError("chunk_key_encoding", style, "separator must be '/' or '.'")
	}
	switch style {
	case "default":
		return ChunkKeyEncoding{Style: ChunkKeyEncodingDefault, Separator: separator}, nil
	case "v2":
		return ChunkKeyEncoding{Style: ChunkKeyEncodingV2, Separator: separator}, nil
	}
	return ChunkKeyEncoding{}, newPluginCreateError("chunk_key_encoding", style, "unrecognised chunk key encoding style")
}

// EncodeChunkKey maps chunk grid coordinates to the data-key path
// component.
func (e ChunkKeyEncoding) EncodeChunkKey(coord []int64) string {
	sep := string(e.Separator)
	switch e.Style {
	case ChunkKeyEncodingDefault:
		if len(coord) == 0 {
			return "c"
		}
		var sb strings.Builder
		sb.WriteByte('c')
		for _, c := range coord {
			sb.WriteString(sep)
			sb.WriteString(strconv.FormatInt(c, 10))
		}
		return sb.String()
	default: // v2
		if len(coord) == 0 {
			return "0"
		}
		var sb strings.Builder
		for i, c := range coord {
			if i > 0 {
				sb.WriteString(sep)
			}
			sb.WriteString(strconv.FormatInt(c, 10))
		}
		return sb.String()
	}
}

// DecodeChunkKey is the structural inverse of EncodeChunkKey. It exists
// only to support the key-encoding round-trip test property and is not
// required for production use.
func DecodeChunkKey(e ChunkKeyEncoding, key string) ([]int64, bool) {
	sep := string(e.Separator)
	switch e.Style {
	case ChunkKeyEncodingDefault:
		if key == "c" {
			return []int64{}, true
		}
		if !strings.HasPrefix(key, "c"+sep) {
			return nil, false
		}
		return parseIntComponents(strings.TrimPrefix(key, "c"+sep), sep)
	default:
		if key == "0" {
			return []int64{}, true
		}
		return parseIntComponents(key, sep)
	}
}

func parseIntComponents(s, sep string) ([]int64, bool) {
	parts := strings.Split(s, sep)
	out := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}
