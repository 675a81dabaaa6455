// Package framing splits a raw byte stream into the discrete records that
// are sent one per network frame.
package framing

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// DefaultMaxLength is the default upper bound on a record, in bytes.
const DefaultMaxLength = 64000

// Mode identifies a record framing format.
type Mode int

const (
	// Lines frames newline-terminated text; the newline is part of the record.
	Lines Mode = iota + 1
	// JSON frames brace-balanced objects starting at the first '{'.
	JSON
	// Pcap takes the transport payload of each packet in a pcap or pcapng capture.
	Pcap
)

func (m Mode) String() string {
	switch m {
	case Lines:
		return "lines"
	case JSON:
		return "json"
	case Pcap:
		return "pcap"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps a format name to its Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lines", "line", "text":
		return Lines, nil
	case "json":
		return JSON, nil
	case "pcap", "pcapng":
		return Pcap, nil
	default:
		return 0, fmt.Errorf("unknown format %q, must be one of: lines, json, pcap", s)
	}
}

// Options controls how records are framed.
type Options struct {
	Mode Mode
	// BinarySafe scans Lines input byte by byte and rejects anything outside
	// printable ASCII, tab and newline.
	BinarySafe bool
	// Strict turns a rejected byte into a fatal error. Only used with BinarySafe.
	Strict bool
	// StringAware makes JSON framing ignore braces inside string literals.
	StringAware bool
	// MaxLength bounds JSON and binary-safe records while scanning. Lines
	// records are bounded by max(MaxLength, DefaultMaxLength) and are
	// expected to be truncated by the caller.
	MaxLength int
	// OnViolation is called for each byte skipped in permissive binary mode.
	OnViolation func(Violation)
}

// Reader produces records from an underlying stream.
type Reader interface {
	// Next returns the next record, io.EOF at the end of the stream, a
	// *ParseError for a dropped record, or a *ByteError in strict mode.
	// The returned slice is only valid until the next call.
	Next() ([]byte, error)
	// Records returns the number of records produced so far.
	Records() int
}

// New returns a Reader for r framed according to opts.
func New(r io.Reader, opts Options) (Reader, error) {
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}
	if opts.Mode == 0 {
		opts.Mode = Lines
	}

	switch opts.Mode {
	case Lines:
		br := bufio.NewReaderSize(r, 64*1024)
		if opts.BinarySafe {
			return &binaryReader{br: br, opts: opts}, nil
		}
		limit := opts.MaxLength
		if limit < DefaultMaxLength {
			limit = DefaultMaxLength
		}
		return &lineReader{br: br, limit: limit}, nil
	case JSON:
		return &jsonReader{br: bufio.NewReaderSize(r, 64*1024), opts: opts}, nil
	case Pcap:
		return newPcapReader(r)
	default:
		return nil, fmt.Errorf("unsupported framing mode %s", opts.Mode)
	}
}

// discardLine consumes input up to and including the next newline.
func discardLine(br *bufio.Reader) error {
	for {
		_, err := br.ReadSlice('\n')
		if err != bufio.ErrBufferFull {
			return err
		}
	}
}
