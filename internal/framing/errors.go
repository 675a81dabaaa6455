package framing

import (
	"errors"
	"fmt"
)

var (
	// ErrRecordTooLong reports a record that outgrew the maximum length
	// before it was complete.
	ErrRecordTooLong = errors.New("record exceeds maximum length")
	// ErrDisallowedByte reports a byte rejected by strict binary scanning.
	ErrDisallowedByte = errors.New("disallowed byte")
)

// ParseError describes a record that was dropped. Reading can continue.
type ParseError struct {
	Record int // 1-based record number within the stream
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Record, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Violation describes a byte rejected by binary-safe scanning.
type Violation struct {
	Record  int    // 1-based record number within the stream
	Char    byte   // the rejected byte
	Offset  int    // position of the byte within the record
	Partial []byte // record content accumulated before the byte
}

// ByteError is returned in strict mode when a disallowed byte is read.
type ByteError struct {
	Violation
}

func (e *ByteError) Error() string {
	return fmt.Sprintf("record %d: special character '%d' at location=%d", e.Record, e.Char, e.Offset)
}

func (e *ByteError) Unwrap() error {
	return ErrDisallowedByte
}

// Recoverable reports whether err only dropped a single record.
func Recoverable(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
