package dovi

import "fmt"

// ErrorKind identifies a class of codec failure or validation finding.
// It implements error so callers can match with errors.Is against the
// Err* constants regardless of wrapping.
type ErrorKind int

// Error kinds.
const (
	// ErrNone is the zero kind and never surfaces to callers.
	ErrNone ErrorKind = iota

	// ErrBitstreamUnderrun: a field read past the end of the buffer.
	// Structural, aborts the parse.
	ErrBitstreamUnderrun

	// ErrMalformedBlockLength: a declared extension block length is
	// inconsistent with the bytes actually consumed or available.
	// Structural, aborts the parse.
	ErrMalformedBlockLength

	// ErrUnsupportedLevelID: an unknown extension block level was found
	// and strict mode disallows the opaque raw fallback.
	ErrUnsupportedLevelID

	// ErrInvalidProfileCombination: the header flags describe no known
	// profile, or a conversion target is unreachable from the current
	// profile.
	ErrInvalidProfileCombination

	// ErrCRCMismatch: the computed checksum disagrees with the stored
	// one. Validation-only; the parsed record is still returned.
	ErrCRCMismatch

	// ErrProfileBlockInconsistency: the observed block set does not
	// match the declared profile (duplicate blocks, missing mandatory
	// blocks, blocks from the wrong metadata version). Validation-only.
	ErrProfileBlockInconsistency

	// ErrUnalignedPayload: non-zero alignment bits where the grammar
	// requires zero padding. Structural.
	ErrUnalignedPayload

	// ErrMissingMarker: the payload does not end with the trailing
	// marker byte. Structural.
	ErrMissingMarker

	// ErrValueRange: a field value is outside its legal range — on
	// decode, a coded value the grammar gives no meaning to; on encode,
	// an in-memory value that cannot be represented in its bit width.
	// Always fatal to the call.
	ErrValueRange
)

var kindMessages = [...]string{
	"no error",
	"bitstream underrun",
	"malformed extension block length",
	"unsupported extension block level",
	"invalid profile combination",
	"CRC mismatch",
	"profile/block inconsistency",
	"non-zero alignment bits",
	"missing trailing marker byte",
	"field value out of range for its bit width",
}

// Error implements the error interface.
func (k ErrorKind) Error() string {
	if k >= 0 && int(k) < len(kindMessages) {
		return kindMessages[k]
	}
	return "unknown error"
}

// Fatal reports whether findings of this kind abort a lenient parse.
// Validation-only kinds are collected as warnings instead.
func (k ErrorKind) Fatal() bool {
	switch k {
	case ErrCRCMismatch, ErrProfileBlockInconsistency, ErrUnsupportedLevelID:
		return false
	}
	return true
}

// ParseError is a codec failure annotated with the byte offset in the
// payload at which it was detected.
type ParseError struct {
	Kind   ErrorKind
	Offset int    // byte offset into the payload
	Detail string // optional context, e.g. the offending level id
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("dovi: %s at byte %d: %s", e.Kind.Error(), e.Offset, e.Detail)
	}
	return fmt.Sprintf("dovi: %s at byte %d", e.Kind.Error(), e.Offset)
}

// Unwrap exposes the kind so errors.Is(err, dovi.ErrCRCMismatch) works.
func (e *ParseError) Unwrap() error {
	return e.Kind
}

func parseErr(kind ErrorKind, offset int, detail string) *ParseError {
	return &ParseError{Kind: kind, Offset: offset, Detail: detail}
}

func parseErrf(kind ErrorKind, offset int, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}
