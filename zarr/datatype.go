package zarr

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/x448/float16"
)

// DataType is a tagged variant over the closed v3 core data type
// enumeration. Raw (r*) types carry their bit-width in RawBits; all
// other variants ignore it.
type DataType struct {
	Kind    DataTypeKind
	RawBits int // only meaningful when Kind == DataTypeRaw; divisible by 8
}

type DataTypeKind int

const (
	DataTypeBool DataTypeKind = iota
	DataTypeInt8
	DataTypeInt16
	DataTypeInt32
	DataTypeInt64
	DataTypeUint8
	DataTypeUint16
	DataTypeUint32
	DataTypeUint64
	DataTypeFloat16
	DataTypeBfloat16
	DataTypeFloat32
	DataTypeFloat64
	DataTypeComplex64  // two float32
	DataTypeComplex128 // two float64
	DataTypeRaw        // r<bits>, bits % 8 == 0
)

// Canonical NaN byte patterns (little-endian), used so NaN-filled chunks
// elide correctly under the empty-chunk-elision byte-pattern comparison.
var (
	ZarrNaNF16  = []byte{0x00, 0x7e} // 0x7e00 LE
	ZarrNaNBF16 = []byte{0xc0, 0x7f} // 0x7fc0 LE
	ZarrNaNF32  = func() []byte {
		b := make([]byte, 4)
		putU32(b, math.Float32bits(float32(math.NaN())))
		return b
	}()
	ZarrNaNF64 = func() []byte {
		b := make([]byte, 8)
		putU64(b, 0x7ff8000000000000)
		return b
	}()
)

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func putU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func getU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func getU64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

// String renders the data type's JSON identifier, e.g. "int32", "r24".
func (d DataType) String() string {
	switch d.Kind {
	case DataTypeBool:
		return "bool"
	case DataTypeInt8:
		return "int8"
	case DataTypeInt16:
		return "int16"
	case DataTypeInt32:
		return "int32"
	case DataTypeInt64:
		return "int64"
	case DataTypeUint8:
		return "uint8"
	case DataTypeUint16:
		return "uint16"
	case DataTypeUint32:
		return "uint32"
	case DataTypeUint64:
		return "uint64"
	case DataTypeFloat16:
		return "float16"
	case DataTypeBfloat16:
		return "bfloat16"
	case DataTypeFloat32:
		return "float32"
	case DataTypeFloat64:
		return "float64"
	case DataTypeComplex64:
		return "complex64"
	case DataTypeComplex128:
		return "complex128"
	case DataTypeRaw:
		return fmt.Sprintf("r%d", d.RawBits)
	default:
		return "unknown"
	}
}

// ParseDataType maps a v3 JSON data_type identifier to a DataType,
// or a PluginCreateError if unrecognised.
func ParseDataType(s string) (DataType, error) {
	switch s {
	case "bool":
		return DataType{Kind: DataTypeBool}, nil
	case "int8":
		return DataType{Kind: DataTypeInt8}, nil
	case "int16":
		return DataType{Kind: DataTypeInt16}, nil
	case "int32":
		return DataType{Kind: DataTypeInt32}, nil
	case "int64":
		return DataType{Kind: DataTypeInt64}, nil
	case "uint8":
		return DataType{Kind: DataTypeUint8}, nil
	case "uint16":
		return DataType{Kind: DataTypeUint16}, nil
	case "uint32":
		return DataType{Kind: DataTypeUint32}, nil
	case "uint64":
		return DataType{Kind: DataTypeUint64}, nil
	case "float16":
		return DataType{Kind: DataTypeFloat16}, nil
	case "bfloat16":
		return DataType{Kind: DataTypeBfloat16}, nil
	case "float32":
		return DataType{Kind: DataTypeFloat32}, nil
	case "float64":
		return DataType{Kind: DataTypeFloat64}, nil
	case "complex64":
		return DataType{Kind: DataTypeComplex64}, nil
	case "complex128":
		return DataType{Kind: DataTypeComplex128}, nil
	}
	if strings.HasPrefix(s, "r") {
		bits, err := strconv.Atoi(s[1:])
		if err != nil || bits <= 0 || bits%8 != 0 {
			return DataType{}, newPluginCreateError("data_type", s, "raw bit-width must be a positive multiple of 8")
		}
		return DataType{Kind: DataTypeRaw, RawBits: bits}, nil
	}
	return DataType{}, newPluginCreateError("data_type", s, "unrecognised data type")
}

// ElementSize returns the data type's fixed element size in bytes.
func (d DataType) ElementSize() int {
	switch d.Kind {
	case DataTypeBool, DataTypeInt8, DataTypeUint8:
		return 1
	case DataTypeInt16, DataTypeUint16, DataTypeFloat16, DataTypeBfloat16:
		return 2
	case DataTypeInt32, DataTypeUint32, DataTypeFloat32:
		return 4
	case DataTypeInt64, DataTypeUint64, DataTypeFloat64, DataTypeComplex64:
		return 8
	case DataTypeComplex128:
		return 16
	case DataTypeRaw:
		return d.RawBits / 8
	default:
		return 0
	}
}

// FillValue is the decoded element-typed bytes substituted wherever a
// chunk is absent. Its length always equals DataType.ElementSize().
type FillValue []byte

// ParseFillValueJSON decodes a fill_value JSON value according to its
// data type's encoding rules.
func ParseFillValueJSON(dt DataType, raw json.RawMessage) (FillValue, error) {
	switch dt.Kind {
	case DataTypeBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, newMetadataError("invalid bool fill value: %v", err)
		}
		if b {
			return FillValue{1}, nil
		}
		return FillValue{0}, nil

	case DataTypeInt8, DataTypeInt16, DataTypeInt32, DataTypeInt64,
		DataTypeUint8, DataTypeUint16, DataTypeUint32, DataTypeUint64:
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, newMetadataError("invalid integer fill value: %v", err)
		}
		return intFillValue(dt, n), nil

	case DataTypeFloat16:
		bits, err := parseFloatFillBits(raw, floatFormatF16)
		if err != nil {
			return nil, err
		}
		b := make([]byte, 2)
		b[0], b[1] = byte(bits), byte(bits>>8)
		return FillValue(b), nil

	case DataTypeBfloat16:
		bits, err := parseFloatFillBits(raw, floatFormatBF16)
		if err != nil {
			return nil, err
		}
		b := make([]byte, 2)
		b[0], b[1] = byte(bits), byte(bits>>8)
		return FillValue(b), nil

	case DataTypeFloat32:
		bits, err := parseFloatFillBits(raw, floatFormatF32)
		if err != nil {
			return nil, err
		}
		b := make([]byte, 4)
		putU32(b, uint32(bits))
		return FillValue(b), nil

	case DataTypeFloat64:
		bits, err := parseFloatFillBits(raw, floatFormatF64)
		if err != nil {
			return nil, err
		}
		b := make([]byte, 8)
		putU64(b, bits)
		return FillValue(b), nil

	case DataTypeComplex64:
		var parts [2]json.RawMessage
		if err := json.Unmarshal(raw, &parts); err != nil {
			return nil, newMetadataError("invalid complex64 fill value: %v", err)
		}
		re, err := parseFloatFillBits(parts[0], floatFormatF32)
		if err != nil {
			return nil, err
		}
		im, err := parseFloatFillBits(parts[1], floatFormatF32)
		if err != nil {
			return nil, err
		}
		b := make([]byte, 8)
		putU32(b[0:4], uint32(re))
		putU32(b[4:8], uint32(im))
		return FillValue(b), nil

	case DataTypeComplex128:
		var parts [2]json.RawMessage
		if err := json.Unmarshal(raw, &parts); err != nil {
			return nil, newMetadataError("invalid complex128 fill value: %v", err)
		}
		re, err := parseFloatFillBits(parts[0], floatFormatF64)
		if err != nil {
			return nil, err
		}
		im, err := parseFloatFillBits(parts[1], floatFormatF64)
		if err != nil {
			return nil, err
		}
		b := make([]byte, 16)
		putU64(b[0:8], re)
		putU64(b[8:16], im)
		return FillValue(b), nil

	case DataTypeRaw:
		var hexStr string
		if err := json.Unmarshal(raw, &hexStr); err != nil {
			return nil, newMetadataError("invalid raw fill value: %v", err)
		}
		hexStr = strings.TrimPrefix(hexStr, "0x")
		b, err := hex.DecodeString(hexStr)
		if err != nil {
			return nil, newMetadataError("invalid raw fill value hex: %v", err)
		}
		if len(b) != dt.RawBits/8 {
			return nil, newMetadataError("raw fill value length %d does not match r%d", len(b), dt.RawBits)
		}
		return FillValue(b), nil
	}
	return nil, newMetadataError("unsupported data type for fill value")
}

func intFillValue(dt DataType, n int64) FillValue {
	size := dt.ElementSize()
	b := make([]byte, size)
	u := uint64(n)
	for i := 0; i < size; i++ {
		b[i] = byte(u >> (8 * i))
	}
	return FillValue(b)
}

// floatFormat distinguishes the four 16-bit-or-wider IEEE/bfloat
// encodings the fill-value grammar must round-trip bit-exactly.
type floatFormat int

const (
	floatFormatF16 floatFormat = iota
	floatFormatBF16
	floatFormatF32
	floatFormatF64
)

func (f floatFormat) bitWidth() int {
	switch f {
	case floatFormatF16, floatFormatBF16:
		return 16
	case floatFormatF32:
		return 32
	default:
		return 64
	}
}

// bf16FromFloat32 truncates a float32 to its top 16 bits (round-to-zero),
// the standard bfloat16 <-> float32 relationship: no dedicated bfloat16
// library is needed since this is the whole conversion.
func bf16FromFloat32(f float32) uint16 {
	return uint16(math.Float32bits(f) >> 16)
}

func bf16ToFloat32(bits uint16) float32 {
	return math.Float32frombits(uint32(bits) << 16)
}

// parseFloatFillBits handles the float JSON fill-value grammar: a plain
// number, the sentinels "NaN"/"Infinity"/"-Infinity", or a 0x-prefixed
// hex string of the bit-exact pattern, big-endian.
func parseFloatFillBits(raw json.RawMessage, format floatFormat) (uint64, error) {
	width := format.bitWidth()
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch s {
		case "NaN":
			return canonicalNaNBits(format), nil
		case "Infinity":
			return infBits(format, false), nil
		case "-Infinity":
			return infBits(format, true), nil
		}
		if strings.HasPrefix(s, "0x") {
			be, err := hex.DecodeString(s[2:])
			if err != nil {
				return 0, newMetadataError("invalid hex float fill value: %v", err)
			}
			if len(be)*8 != width {
				return 0, newMetadataError("hex float fill value width mismatch: got %d bits, want %d", len(be)*8, width)
			}
			// big-endian bytes -> little-endian-ordered uint
			var v uint64
			for _, bb := range be {
				v = v<<8 | uint64(bb)
			}
			return v, nil
		}
		return 0, newMetadataError("unrecognised float fill value sentinel %q", s)
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, newMetadataError("invalid float fill value: %v", err)
	}
	switch format {
	case floatFormatF16:
		return uint64(float16.Fromfloat32(float32(f)).Bits()), nil
	case floatFormatBF16:
		return uint64(bf16FromFloat32(float32(f))), nil
	case floatFormatF32:
		return uint64(math.Float32bits(float32(f))), nil
	case floatFormatF64:
		return math.Float64bits(f), nil
	}
	return 0, newMetadataError("unsupported float format")
}

func canonicalNaNBits(format floatFormat) uint64 {
	switch format {
	case floatFormatF16:
		return uint64(getU16(ZarrNaNF16))
	case floatFormatBF16:
		return uint64(getU16(ZarrNaNBF16))
	case floatFormatF32:
		return uint64(getU32(ZarrNaNF32))
	case floatFormatF64:
		return getU64(ZarrNaNF64)
	}
	return 0
}

func getU16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }

func infBits(format floatFormat, negative bool) uint64 {
	var f float64
	if negative {
		f = math.Inf(-1)
	} else {
		f = math.Inf(1)
	}
	switch format {
	case floatFormatF16:
		return uint64(float16.Fromfloat32(float32(f)).Bits())
	case floatFormatBF16:
		return uint64(bf16FromFloat32(float32(f)))
	case floatFormatF32:
		return uint64(math.Float32bits(float32(f)))
	case floatFormatF64:
		return math.Float64bits(f)
	}
	return 0
}

// EncodeFillValueJSON renders a decoded fill value back to its v3 JSON
// form, inverse of ParseFillValueJSON.
func EncodeFillValueJSON(dt DataType, fv FillValue) (json.RawMessage, error) {
	switch dt.Kind {
	case DataTypeBool:
		if fv[0] != 0 {
			return json.RawMessage("true"), nil
		}
		return json.RawMessage("false"), nil

	case DataTypeInt8, DataTypeInt16, DataTypeInt32, DataTypeInt64:
		return json.Marshal(decodeSignedInt(fv))

	case DataTypeUint8, DataTypeUint16, DataTypeUint32, DataTypeUint64:
		return json.Marshal(decodeUnsignedInt(fv))

	case DataTypeFloat16:
		return encodeFloatJSON(uint64(getU16(fv)), floatFormatF16)
	case DataTypeBfloat16:
		return encodeFloatJSON(uint64(getU16(fv)), floatFormatBF16)
	case DataTypeFloat32:
		return encodeFloatJSON(uint64(getU32(fv)), floatFormatF32)
	case DataTypeFloat64:
		return encodeFloatJSON(getU64(fv), floatFormatF64)

	case DataTypeComplex64:
		re, err := encodeFloatJSON(uint64(getU32(fv[0:4])), floatFormatF32)
		if err != nil {
			return nil, err
		}
		im, err := encodeFloatJSON(uint64(getU32(fv[4:8])), floatFormatF32)
		if err != nil {
			return nil, err
		}
		return json.Marshal([2]json.RawMessage{re, im})

	case DataTypeComplex128:
		re, err := encodeFloatJSON(getU64(fv[0:8]), floatFormatF64)
		if err != nil {
			return nil, err
		}
		im, err := encodeFloatJSON(getU64(fv[8:16]), floatFormatF64)
		if err != nil {
			return nil, err
		}
		return json.Marshal([2]json.RawMessage{re, im})

	case DataTypeRaw:
		return json.Marshal("0x" + hex.EncodeToString(fv))
	}
	return nil, newMetadataError("unsupported data type for fill value encoding")
}

func decodeSignedInt(fv FillValue) int64 {
	u := decodeUnsignedInt(fv)
	switch len(fv) {
	case 1:
		return int64(int8(u))
	case 2:
		return int64(int16(u))
	case 4:
		return int64(int32(u))
	default:
		return int64(u)
	}
}

func decodeUnsignedInt(fv FillValue) uint64 {
	var v uint64
	for i, b := range fv {
		v |= uint64(b) << (8 * i)
	}
	return v
}

func encodeFloatJSON(bits uint64, format floatFormat) (json.RawMessage, error) {
	switch format {
	case floatFormatF16:
		f := float16.Frombits(uint16(bits)).Float32()
		return floatSentinelOrNumber(float64(f), bits, format)
	case floatFormatBF16:
		f := bf16ToFloat32(uint16(bits))
		return floatSentinelOrNumber(float64(f), bits, format)
	case floatFormatF32:
		f := math.Float32frombits(uint32(bits))
		return floatSentinelOrNumber(float64(f), bits, format)
	case floatFormatF64:
		f := math.Float64frombits(bits)
		return floatSentinelOrNumber(f, bits, format)
	}
	return nil, newMetadataError("unsupported float format")
}

func floatSentinelOrNumber(f float64, bits uint64, format floatFormat) (json.RawMessage, error) {
	width := format.bitWidth()
	switch {
	case math.IsNaN(f):
		if bits != canonicalNaNBits(format) {
			be := make([]byte, width/8)
			v := bits
			for i := width/8 - 1; i >= 0; i-- {
				be[i] = byte(v)
				v >>= 8
			}
			return json.Marshal("0x" + hex.EncodeToString(be))
		}
		return json.Marshal("NaN")
	case math.IsInf(f, 1):
		return json.Marshal("Infinity")
	case math.IsInf(f, -1):
		return json.Marshal("-Infinity")
	default:
		return json.Marshal(f)
	}
}
