package zarr

import (
	"encoding/json"
)

// CodecMetadata is one entry of an array's codecs list: a plugin
// identifier plus its opaque JSON configuration.
type CodecMetadata struct {
	Name          string          `json:"name"`
	Configuration json.RawMessage `json:"configuration,omitempty"`
}

// ChunkGridMetadata is the {"name": "regular", "configuration": {...}}
// document describing an array's chunk grid.
type ChunkGridMetadata struct {
	Name          string          `json:"name"`
	Configuration json.RawMessage `json:"configuration,omitempty"`
}

// RegularChunkGridConfiguration is the configuration body of the
// "regular" chunk grid.
type RegularChunkGridConfiguration struct {
	ChunkShape []int64 `json:"chunk_shape"`
}

// ChunkKeyEncodingMetadata is the {"name": "default"|"v2", "configuration":
// {"separator": "/"|"."}} document.
type ChunkKeyEncodingMetadata struct {
	Name          string          `json:"name"`
	Configuration json.RawMessage `json:"configuration,omitempty"`
}

type ChunkKeyEncodingConfiguration struct {
	Separator string `json:"separator,omitempty"`
}

// StorageTransformerMetadata is one entry of an array's
// storage_transformers list.
type StorageTransformerMetadata struct {
	Name          string          `json:"name"`
	Configuration json.RawMessage `json:"configuration,omitempty"`
}

// AdditionalField is a JSON value the implementation did not recognise.
// Fields tagged must_understand:false are admitted and round-tripped
// verbatim; all others reject construction.
type AdditionalField struct {
	Value          json.RawMessage
	MustUnderstand bool // true unless explicitly set false
}

var recognisedArrayFields = map[string]bool{
	"zarr_format": true, "node_type": true, "shape": true, "data_type": true,
	"chunk_grid": true, "chunk_key_encoding": true, "fill_value": true,
	"codecs": true, "attributes": true, "storage_transformers": true,
	"dimension_names": true,
}

var recognisedGroupFields = map[string]bool{
	"zarr_format": true, "node_type": true, "attributes": true,
}

// ArrayMetadata is the v3 array metadata document.
type ArrayMetadata struct {
	ZarrFormat         int
	NodeType           string
	Shape              []int64
	DataType           DataType
	ChunkGrid          ChunkGridMetadata
	ChunkKeyEncoding   ChunkKeyEncodingMetadata
	FillValue          json.RawMessage
	Codecs             []CodecMetadata
	Attributes         map[string]json.RawMessage
	StorageTransformers []StorageTransformerMetadata
	DimensionNames     []*string
	AdditionalFields   map[string]AdditionalField
}

// arrayMetadataWire is the JSON shape of an array metadata document,
// used for the first unmarshal pass when parsing.
type arrayMetadataWire struct {
	ZarrFormat          int                            `json:"zarr_format"`
	NodeType            string                          `json:"node_type"`
	Shape               []int64                         `json:"shape"`
	DataType            string                          `json:"data_type"`
	ChunkGrid           ChunkGridMetadata               `json:"chunk_grid"`
	ChunkKeyEncoding    ChunkKeyEncodingMetadata        `json:"chunk_key_encoding"`
	FillValue           json.RawMessage                 `json:"fill_value"`
	Codecs              []CodecMetadata                 `json:"codecs"`
	Attributes          map[string]json.RawMessage       `json:"attributes,omitempty"`
	StorageTransformers []StorageTransformerMetadata    `json:"storage_transformers,omitempty"`
	DimensionNames      []*string                        `json:"dimension_names,omitempty"`
}

// ParseArrayMetadata decodes a v3 array metadata document. Unrecognised
// top-level fields are admitted only when tagged must_understand:false;
// otherwise construction fails with a MetadataError.
func ParseArrayMetadata(data []byte) (*ArrayMetadata, error) {
	var wire arrayMetadataWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, newMetadataError("malformed array metadata JSON: %v", err)
	}
	if wire.ZarrFormat != 3 {
		return nil, newMetadataError("unsupported zarr_format %d, expected 3", wire.ZarrFormat)
	}
	if wire.NodeType != "array" {
		return nil, newMetadataError("unexpected node_type %q, expected \"array\"", wire.NodeType)
	}

	dt, err := ParseDataType(wire.DataType)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, newMetadataError("malformed array metadata JSON: %v", err)
	}
	additional, err := extractAdditionalFields(raw, recognisedArrayFields)
	if err != nil {
		return nil, err
	}

	if wire.DimensionNames != nil && len(wire.DimensionNames) != len(wire.Shape) {
		return nil, newMetadataError("dimension_names length %d does not match shape rank %d", len(wire.DimensionNames), len(wire.Shape))
	}

	return &ArrayMetadata{
		ZarrFormat:          wire.ZarrFormat,
		NodeType:            wire.NodeType,
		Shape:               wire.Shape,
		DataType:            dt,
		ChunkGrid:           wire.ChunkGrid,
		ChunkKeyEncoding:    wire.ChunkKeyEncoding,
		FillValue:           wire.FillValue,
		Codecs:              wire.Codecs,
		Attributes:          wire.Attributes,
		StorageTransformers: wire.StorageTransformers,
		DimensionNames:      wire.DimensionNames,
		AdditionalFields:    additional,
	}, nil
}

// extractAdditionalFields pulls unrecognised top-level keys out of raw,
// validating the must_understand annotation on each.
func extractAdditionalFields(raw map[string]json.RawMessage, recognised map[string]bool) (map[string]AdditionalField, error) {
	out := map[string]AdditionalField{}
	for key, value := range raw {
		if recognised[key] {
			continue
		}
		var probe struct {
			MustUnderstand *bool `json:"must_understand"`
		}
		if err := json.Unmarshal(value, &probe); err != nil || probe.MustUnderstand == nil || *probe.MustUnderstand {
			return nil, newMetadataError("unrecognised field %q is not tagged must_understand:false", key)
		}
		out[key] = AdditionalField{Value: value, MustUnderstand: false}
	}
	return out, nil
}

// Serialize renders the array metadata document back to v3 JSON,
// preserving additional fields verbatim.
func (m *ArrayMetadata) Serialize() ([]byte, error) {
	out := map[string]json.RawMessage{}

	put := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out[key] = b
		return nil
	}
	if err := put("zarr_format", m.ZarrFormat); err != nil {
		return nil, err
	}
	if err := put("node_type", m.NodeType); err != nil {
		return nil, err
	}
	if err := put("shape", m.Shape); err != nil {
		return nil, err
	}
	if err := put("data_type", m.DataType.String()); err != nil {
		return nil, err
	}
	if err := put("chunk_grid", m.ChunkGrid); err != nil {
		return nil, err
	}
	if err := put("chunk_key_encoding", m.ChunkKeyEncoding); err != nil {
		return nil, err
	}
	out["fill_value"] = m.FillValue
	if err := put("codecs", m.Codecs); err != nil {
		return nil, err
	}
	if m.Attributes != nil {
		if err := put("attributes", m.Attributes); err != nil {
			return nil, err
		}
	}
	if m.StorageTransformers != nil {
		if err := put("storage_transformers", m.StorageTransformers); err != nil {
			return nil, err
		}
	}
	if m.DimensionNames != nil {
		if err := put("dimension_names", m.DimensionNames); err != nil {
			return nil, err
		}
	}
	for key, field := range m.AdditionalFields {
		out[key] = field.Value
	}
	return json.Marshal(out)
}

// GroupMetadata is the v3 group metadata document.
type GroupMetadata struct {
	ZarrFormat       int
	NodeType         string
	Attributes       map[string]json.RawMessage
	AdditionalFields map[string]AdditionalField
}

type groupMetadataWire struct {
	ZarrFormat int                        `json:"zarr_format"`
	NodeType   string                      `json:"node_type"`
	Attributes map[string]json.RawMessage `json:"attributes,omitempty"`
}

// ParseGroupMetadata decodes a v3 group metadata document under the same
// unknown-field admission rule as arrays.
func ParseGroupMetadata(data []byte) (*GroupMetadata, error) {
	var wire groupMetadataWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, newMetadataError("malformed group metadata JSON: %v", err)
	}
	if wire.ZarrFormat != 3 {
		return nil, newMetadataError("unsupported zarr_format %d, expected 3", wire.ZarrFormat)
	}
	if wire.NodeType != "group" {
		return nil, newMetadataError("unexpected node_type %q, expected \"group\"", wire.NodeType)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, newMetadataError("malformed group metadata JSON: %v", err)
	}
	additional, err := extractAdditionalFields(raw, recognisedGroupFields)
	if err != nil {
		return nil, err
	}
	return &GroupMetadata{
		ZarrFormat:       wire.ZarrFormat,
		NodeType:         wire.NodeType,
		Attributes:       wire.Attributes,
		AdditionalFields: additional,
	}, nil
}

// Serialize renders the group metadata document back to v3 JSON.
func (m *GroupMetadata) Serialize() ([]byte, error) {
	out := map[string]json.RawMessage{}
	put := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out[key] = b
		return nil
	}
	if err := put("zarr_format", m.ZarrFormat); err != nil {
		return nil, err
	}
	if err := put("node_type", m.NodeType); err != nil {
		return nil, err
	}
	if m.Attributes != nil {
		if err := put("attributes", m.Attributes); err != nil {
			return nil, err
		}
	}
	for key, field := range m.AdditionalFields {
		out[key] = field.Value
	}
	return json.Marshal(out)
}

// ZarrsMetadataRecord is the optional "_zarrs" attribute record the
// array façade injects when IncludeZarrsMetadata is enabled.
type ZarrsMetadataRecord struct {
	Description string `json:"description"`
	Repository  string `json:"repository"`
	Version     string `json:"version"`
}

func defaultZarrsMetadataRecord() ZarrsMetadataRecord {
	return ZarrsMetadataRecord{
		Description: "Created with zarrs-go",
		Repository:  "https://github.com/TuSKan/zarrs-go",
		Version:     moduleVersion,
	}
}

const moduleVersion = "0.1.0"
