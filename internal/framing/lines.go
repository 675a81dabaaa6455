package framing

import (
	"bufio"
	"io"
)

// lineReader passes through whatever precedes the next newline.
type lineReader struct {
	br      *bufio.Reader
	buf     []byte
	limit   int
	records int
}

func (r *lineReader) Next() ([]byte, error) {
	r.buf = r.buf[:0]
	read := 0
	for {
		chunk, err := r.br.ReadSlice('\n')
		read += len(chunk)
		if room := r.limit - len(r.buf); room > 0 {
			if len(chunk) > room {
				chunk = chunk[:room]
			}
			r.buf = append(r.buf, chunk...)
		}

		switch err {
		case nil:
			r.records++
			return r.buf, nil
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			if read == 0 {
				return nil, io.EOF
			}
			r.records++
			return r.buf, nil
		default:
			return nil, err
		}
	}
}

func (r *lineReader) Records() int {
	return r.records
}

// binaryReader scans a line byte by byte, rejecting non-text bytes.
type binaryReader struct {
	br      *bufio.Reader
	opts    Options
	buf     []byte
	records int
}

func allowed(c byte) bool {
	return (c >= ' ' && c <= 0x7f) || c == '\t'
}

func (r *binaryReader) Next() ([]byte, error) {
	r.buf = r.buf[:0]
	for {
		c, err := r.br.ReadByte()
		if err != nil {
			// An unterminated tail is not a record.
			return nil, err
		}

		switch {
		case c == '\n':
			r.buf = append(r.buf, c)
			r.records++
			return r.buf, nil
		case allowed(c):
			r.buf = append(r.buf, c)
		default:
			v := Violation{
				Record:  r.records + 1,
				Char:    c,
				Offset:  len(r.buf),
				Partial: append([]byte(nil), r.buf...),
			}
			if r.opts.Strict {
				return nil, &ByteError{Violation: v}
			}
			if r.opts.OnViolation != nil {
				r.opts.OnViolation(v)
			}
			continue
		}

		if len(r.buf) >= r.opts.MaxLength {
			r.records++
			n := r.records
			if err := discardLine(r.br); err != nil && err != io.EOF {
				return nil, err
			}
			return nil, &ParseError{Record: n, Err: ErrRecordTooLong}
		}
	}
}

func (r *binaryReader) Records() int {
	return r.records
}
