package zarr

import "fmt"

// MetadataError reports a structurally invalid array or group document:
// wrong zarr_format, wrong node_type, unrecognised mandatory fields,
// inconsistent rank between shape/grid/dimension_names, or an invalid
// fill value for the array's data type.
type MetadataError struct {
	Reason string
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("metadata invalid: %s", e.Reason)
}

func newMetadataError(format string, args ...any) *MetadataError {
	return &MetadataError{Reason: fmt.Sprintf(format, args...)}
}

// PluginCreateError reports an unknown or invalid data type, chunk grid,
// chunk key encoding, codec, or storage transformer identifier.
type PluginCreateError struct {
	Kind       string // "data_type" | "chunk_grid" | "chunk_key_encoding" | "codec" | "storage_transformer"
	Identifier string
	Reason     string
}

func (e *PluginCreateError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("plugin create error: %s %q: %s", e.Kind, e.Identifier, e.Reason)
	}
	return fmt.Sprintf("plugin create error: unknown %s %q", e.Kind, e.Identifier)
}

func newPluginCreateError(kind, identifier, reason string) *PluginCreateError {
	return &PluginCreateError{Kind: kind, Identifier: identifier, Reason: reason}
}

// InvalidChunkGridIndicesError reports a chunk coordinate outside the
// grid's shape for the given array shape.
type InvalidChunkGridIndicesError struct {
	Coord     []int64
	GridShape []int64
}

func (e *InvalidChunkGridIndicesError) Error() string {
	return fmt.Sprintf("invalid chunk grid indices: %v outside grid shape %v", e.Coord, e.GridShape)
}

// IncompatibleDimensionalityError reports a subset whose rank does not
// match the array's rank.
type IncompatibleDimensionalityError struct {
	Got, Want int
}

func (e *IncompatibleDimensionalityError) Error() string {
	return fmt.Sprintf("incompatible dimensionality: got rank %d, want %d", e.Got, e.Want)
}

// InvalidByteRangeError reports a byte range outside the bounds of the
// value it was requested against.
type InvalidByteRangeError struct {
	Offset, Length, ValueSize uint64
}

func (e *InvalidByteRangeError) Error() string {
	return fmt.Sprintf("invalid byte range: [%d, %d) outside value of size %d", e.Offset, e.Offset+e.Length, e.ValueSize)
}

// CodecErrorKind enumerates the codec failure taxonomy.
type CodecErrorKind int

const (
	CodecErrorUnexpectedChunkDecodedSize CodecErrorKind = iota
	CodecErrorInvalidByteLength
	CodecErrorIO
	CodecErrorOther
)

func (k CodecErrorKind) String() string {
	switch k {
	case CodecErrorUnexpectedChunkDecodedSize:
		return "UnexpectedChunkDecodedSize"
	case CodecErrorInvalidByteLength:
		return "InvalidByteLength"
	case CodecErrorIO:
		return "IOError"
	default:
		return "Other"
	}
}

// CodecError is the error type returned by codec pipeline stages.
type CodecError struct {
	Kind           CodecErrorKind
	Expected, Got  uint64
	Message        string
	Err            error
}

func (e *CodecError) Error() string {
	switch e.Kind {
	case CodecErrorUnexpectedChunkDecodedSize:
		return fmt.Sprintf("codec error: unexpected chunk decoded size: expected %d, got %d", e.Expected, e.Got)
	case CodecErrorInvalidByteLength:
		return fmt.Sprintf("codec error: invalid byte length: %s", e.Message)
	case CodecErrorIO:
		return fmt.Sprintf("codec error: io error: %s", e.Message)
	default:
		return fmt.Sprintf("codec error: %s", e.Message)
	}
}

func (e *CodecError) Unwrap() error { return e.Err }

func NewCodecErrorUnexpectedSize(expected, got uint64) *CodecError {
	return &CodecError{Kind: CodecErrorUnexpectedChunkDecodedSize, Expected: expected, Got: got}
}

func NewCodecErrorInvalidByteLength(message string) *CodecError {
	return &CodecError{Kind: CodecErrorInvalidByteLength, Message: message}
}

func NewCodecErrorIO(err error) *CodecError {
	return &CodecError{Kind: CodecErrorIO, Message: err.Error(), Err: err}
}

func NewCodecErrorOther(format string, args ...any) *CodecError {
	return &CodecError{Kind: CodecErrorOther, Message: fmt.Sprintf(format, args...)}
}

// StorageErrorKind enumerates the store failure taxonomy.
type StorageErrorKind int

const (
	StorageErrorReadOnly StorageErrorKind = iota
	StorageErrorIO
	StorageErrorInvalidJSON
	StorageErrorInvalidStoreKey
	StorageErrorNodePath
	StorageErrorInvalidByteRange
	StorageErrorUnsupported
	StorageErrorUnknownKeySize
	StorageErrorOther
)

func (k StorageErrorKind) String() string {
	switch k {
	case StorageErrorReadOnly:
		return "ReadOnly"
	case StorageErrorIO:
		return "IOError"
	case StorageErrorInvalidJSON:
		return "InvalidJSON"
	case StorageErrorInvalidStoreKey:
		return "InvalidStoreKey"
	case StorageErrorNodePath:
		return "NodePathError"
	case StorageErrorInvalidByteRange:
		return "InvalidByteRangeError"
	case StorageErrorUnsupported:
		return "Unsupported"
	case StorageErrorUnknownKeySize:
		return "UnknownKeySize"
	default:
		return "Other"
	}
}

// StorageError is the error type returned by Store implementations.
type StorageError struct {
	Kind    StorageErrorKind
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("storage error: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("storage error: %s", e.Kind)
}

func (e *StorageError) Unwrap() error { return e.Err }

func NewStorageError(kind StorageErrorKind, format string, args ...any) *StorageError {
	return &StorageError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func WrapStorageError(kind StorageErrorKind, err error) *StorageError {
	return &StorageError{Kind: kind, Message: err.Error(), Err: err}
}
