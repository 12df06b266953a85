package zarr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDataTypeCore(t *testing.T) {
	cases := map[string]DataTypeKind{
		"bool": DataTypeBool, "int8": DataTypeInt8, "uint64": DataTypeUint64,
		"float32": DataTypeFloat32, "float64": DataTypeFloat64,
		"complex64": DataTypeComplex64, "complex128": DataTypeComplex128,
	}
	for s, kind := range cases {
		dt, err := ParseDataType(s)
		require.NoError(t, err)
		require.Equal(t, kind, dt.Kind)
		require.Equal(t, s, dt.String())
	}
}

func TestParseDataTypeRaw(t *testing.T) {
	dt, err := ParseDataType("r24")
	require.NoError(t, err)
	require.Equal(t, DataTypeRaw, dt.Kind)
	require.Equal(t, 24, dt.RawBits)
	require.Equal(t, 3, dt.ElementSize())
	require.Equal(t, "r24", dt.String())
}

func TestParseDataTypeRawRejectsNonMultipleOf8(t *testing.T) {
	_, err := ParseDataType("r5")
	require.Error(t, err)
}

func TestParseDataTypeUnrecognised(t *testing.T) {
	_, err := ParseDataType("nonsense")
	require.Error(t, err)
}

func TestElementSizeTable(t *testing.T) {
	require.Equal(t, 1, DataType{Kind: DataTypeUint8}.ElementSize())
	require.Equal(t, 2, DataType{Kind: DataTypeFloat16}.ElementSize())
	require.Equal(t, 4, DataType{Kind: DataTypeInt32}.ElementSize())
	require.Equal(t, 8, DataType{Kind: DataTypeFloat64}.ElementSize())
	require.Equal(t, 16, DataType{Kind: DataTypeComplex128}.ElementSize())
}

func TestFillValueIntRoundTrip(t *testing.T) {
	dt := DataType{Kind: DataTypeInt32}
	fv, err := ParseFillValueJSON(dt, json.RawMessage(`-42`))
	require.NoError(t, err)
	require.Len(t, fv, 4)

	out, err := EncodeFillValueJSON(dt, fv)
	require.NoError(t, err)
	require.JSONEq(t, `-42`, string(out))
}

func TestFillValueBoolRoundTrip(t *testing.T) {
	dt := DataType{Kind: DataTypeBool}
	fv, err := ParseFillValueJSON(dt, json.RawMessage(`true`))
	require.NoError(t, err)
	require.Equal(t, FillValue{1}, fv)

	out, err := EncodeFillValueJSON(dt, fv)
	require.NoError(t, err)
	require.JSONEq(t, `true`, string(out))
}

func TestFillValueFloatNaNRoundTrip(t *testing.T) {
	dt := DataType{Kind: DataTypeFloat32}
	fv, err := ParseFillValueJSON(dt, json.RawMessage(`"NaN"`))
	require.NoError(t, err)
	require.Equal(t, FillValue(ZarrNaNF32), fv)

	out, err := EncodeFillValueJSON(dt, fv)
	require.NoError(t, err)
	require.JSONEq(t, `"NaN"`, string(out))
}

func TestFillValueFloatInfinityRoundTrip(t *testing.T) {
	dt := DataType{Kind: DataTypeFloat64}
	fv, err := ParseFillValueJSON(dt, json.RawMessage(`"Infinity"`))
	require.NoError(t, err)

	out, err := EncodeFillValueJSON(dt, fv)
	require.NoError(t, err)
	require.JSONEq(t, `"Infinity"`, string(out))

	fv, err = ParseFillValueJSON(dt, json.RawMessage(`"-Infinity"`))
	require.NoError(t, err)
	out, err = EncodeFillValueJSON(dt, fv)
	require.NoError(t, err)
	require.JSONEq(t, `"-Infinity"`, string(out))
}

func TestFillValueFloatPlainNumberRoundTrip(t *testing.T) {
	dt := DataType{Kind: DataTypeFloat32}
	fv, err := ParseFillValueJSON(dt, json.RawMessage(`1.5`))
	require.NoError(t, err)

	out, err := EncodeFillValueJSON(dt, fv)
	require.NoError(t, err)
	require.JSONEq(t, `1.5`, string(out))
}

func TestFillValueRawHexRoundTrip(t *testing.T) {
	dt := DataType{Kind: DataTypeRaw, RawBits: 16}
	fv, err := ParseFillValueJSON(dt, json.RawMessage(`"0xAABB"`))
	require.NoError(t, err)
	require.Equal(t, FillValue{0xAA, 0xBB}, fv)

	out, err := EncodeFillValueJSON(dt, fv)
	require.NoError(t, err)
	require.JSONEq(t, `"0xaabb"`, string(out))
}

func TestFillValueComplex64RoundTrip(t *testing.T) {
	dt := DataType{Kind: DataTypeComplex64}
	fv, err := ParseFillValueJSON(dt, json.RawMessage(`[1.0, -2.0]`))
	require.NoError(t, err)
	require.Len(t, fv, 8)

	out, err := EncodeFillValueJSON(dt, fv)
	require.NoError(t, err)
	require.JSONEq(t, `[1.0, -2.0]`, string(out))
}
