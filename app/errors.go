package app

import (
	"errors"
	"fmt"
)

// Error kinds reported by the decoder. A *ParseError wraps exactly one of
// them; use errors.Is to test the kind.
var (
	ErrUnexpectedEOF   = errors.New("unexpected end of input")
	ErrUnexpectedToken = errors.New("unexpected token")
	ErrInvalidLength   = errors.New("invalid string length")
	ErrMalformedDict   = errors.New("malformed dict")
	ErrInvalidDictKey  = errors.New("invalid dict key")
	ErrIntegerOverflow = errors.New("integer overflow")
	ErrTrailingData    = errors.New("trailing data")
	ErrLimitExceeded   = errors.New("limit exceeded")
)

// ParseError describes why and where decoding failed.
type ParseError struct {
	// Offset is the byte offset into the input of the offending token.
	Offset int
	// Expected names the construct the decoder was looking for.
	Expected string
	// Found is a printable rendering of what was there instead, empty at
	// end of input.
	Found string
	Err   error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("bencode: %v at offset %d", e.Err, e.Offset)
	if e.Expected != "" {
		msg += ": expected " + e.Expected
	}
	if e.Found != "" {
		msg += ", found " + e.Found
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// found renders the byte at pos for error messages.
func found(data []byte, pos int) string {
	if pos >= len(data) {
		return ""
	}
	return fmt.Sprintf("%q", data[pos])
}
