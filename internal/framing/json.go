package framing

import (
	"bufio"
	"io"
)

// jsonReader frames records by counting braces from the first '{'.
//
// Unless StringAware is set, braces inside string literals are counted
// too, so a value such as {"a":"}"} ends early.
type jsonReader struct {
	br      *bufio.Reader
	opts    Options
	buf     []byte
	records int
}

func (r *jsonReader) Next() ([]byte, error) {
	for {
		c, err := r.br.ReadByte()
		if err != nil {
			return nil, err
		}
		if c == '{' {
			break
		}
	}

	r.buf = append(r.buf[:0], '{')
	depth := 1
	overflow := false
	inString, escaped := false, false

	for {
		c, err := r.br.ReadByte()
		if err == io.EOF {
			// Incomplete record at end of input is discarded.
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}

		switch {
		case r.opts.StringAware && inString:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
		case r.opts.StringAware && c == '"':
			inString = true
		case c == '{':
			depth++
		case c == '}':
			depth--
		}

		if !overflow {
			if len(r.buf) >= r.opts.MaxLength {
				overflow = true
				r.buf = r.buf[:0]
			} else {
				r.buf = append(r.buf, c)
			}
		}

		if depth == 0 {
			r.records++
			if overflow {
				return nil, &ParseError{Record: r.records, Err: ErrRecordTooLong}
			}
			return r.buf, nil
		}
	}
}

func (r *jsonReader) Records() int {
	return r.records
}
