package codec

import "fmt"

// CodecErrorKind classifies a codec-stage failure.
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
		return "unexpected_chunk_decoded_size"
	case CodecErrorInvalidByteLength:
		return "invalid_byte_length"
	case CodecErrorIO:
		return "io"
	default:
		return "other"
	}
}

// CodecError wraps a failure from an array-to-array, array-to-bytes, or
// bytes-to-bytes stage, retaining the expected/observed sizes so callers
// can decide whether it is a corruption signal worth surfacing loudly.
type CodecError struct {
	Kind     CodecErrorKind
	Expected uint64
	Got      uint64
	Message  string
	Err      error
}

func (e *CodecError) Error() string {
	if e.Expected != 0 || e.Got != 0 {
		return fmt.Sprintf("codec error (%s): %s (expected %d, got %d)", e.Kind, e.Message, e.Expected, e.Got)
	}
	return fmt.Sprintf("codec error (%s): %s", e.Kind, e.Message)
}

func (e *CodecError) Unwrap() error { return e.Err }

func NewCodecError(kind CodecErrorKind, expected, got uint64, message string, err error) *CodecError {
	return &CodecError{Kind: kind, Expected: expected, Got: got, Message: message, Err: err}
}
