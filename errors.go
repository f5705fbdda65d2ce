package jxl

import "fmt"

// Kind enumerates the closed set of error kinds the library ever
// returns. There are no hidden variants: every failure mode in this
// package maps to exactly one Kind.
type Kind int

const (
	// KindInvalidSignature means the codestream/container signature
	// bytes did not match.
	KindInvalidSignature Kind = iota
	// KindTruncatedData means the input ended before a header or box
	// declared it would.
	KindTruncatedData
	// KindInvalidImageHeader means the image header was syntactically
	// invalid.
	KindInvalidImageHeader
	// KindInvalidFrameHeader means the frame header was syntactically
	// invalid.
	KindInvalidFrameHeader
	// KindUnsupportedEncoding means a recognised but unimplemented
	// branch was requested.
	KindUnsupportedEncoding
	// KindInvalidDimensions means width/height were zero or
	// arithmetically out of range.
	KindInvalidDimensions
	// KindDecodingFailed means entropy decoding or an inverse transform
	// failed.
	KindDecodingFailed
	// KindInvalidContainer means a box-level malformation was found.
	KindInvalidContainer
	// KindEncodingFailed means the encoder was asked to violate its own
	// contract (empty frame list, invalid configuration, ...).
	KindEncodingFailed
)

// String names the kind the way it appears in Error.Error().
func (k Kind) String() string {
	switch k {
	case KindInvalidSignature:
		return "InvalidSignature"
	case KindTruncatedData:
		return "TruncatedData"
	case KindInvalidImageHeader:
		return "InvalidImageHeader"
	case KindInvalidFrameHeader:
		return "InvalidFrameHeader"
	case KindUnsupportedEncoding:
		return "UnsupportedEncoding"
	case KindInvalidDimensions:
		return "InvalidDimensions"
	case KindDecodingFailed:
		return "DecodingFailed"
	case KindInvalidContainer:
		return "InvalidContainer"
	case KindEncodingFailed:
		return "EncodingFailed"
	default:
		return "Unknown"
	}
}

// Error is the library's single concrete error type. It is a closed,
// equatable value: two Errors with the same Kind and Detail compare
// equal via ==, and Is/As see through a wrapped Cause.
type Error struct {
	Kind   Kind
	Detail string
	Cause  error
}

// Error implements the error interface, formatting as "<Kind>: <detail>"
// per spec §7.
func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, letting
// callers write errors.Is(err, &jxl.Error{Kind: jxl.KindTruncatedData}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func wrapError(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Cause: cause}
}

func errInvalidSignature() *Error {
	return newError(KindInvalidSignature, "codestream signature mismatch")
}

func errTruncated(where string) *Error {
	return newError(KindTruncatedData, where)
}

func errInvalidImageHeader(reason string) *Error {
	return newError(KindInvalidImageHeader, reason)
}

func errInvalidFrameHeader(reason string) *Error {
	return newError(KindInvalidFrameHeader, reason)
}

func errUnsupportedEncoding(tag string) *Error {
	return newError(KindUnsupportedEncoding, fmt.Sprintf("unsupported encoding: %s", tag))
}

func errInvalidDimensions(width, height int) *Error {
	return newError(KindInvalidDimensions, fmt.Sprintf("width=%d height=%d", width, height))
}

func errDecodingFailed(where string, cause error) *Error {
	return wrapError(KindDecodingFailed, where, cause)
}

func errInvalidContainer(reason string) *Error {
	return newError(KindInvalidContainer, reason)
}

func errEncodingFailed(reason string) *Error {
	return newError(KindEncodingFailed, reason)
}
