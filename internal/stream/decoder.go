// Package stream turns a byte stream of newline-delimited records into
// complete lines, independent of how the bytes were chunked in transit.
package stream

import (
	"bufio"
	"bytes"
	"io"
	"iter"
)

// MaxLineSize bounds a single record. Longer lines fail with bufio.ErrTooLong.
const MaxLineSize = 1 << 20

const initialBufferSize = 64 * 1024

// ScanLines is a bufio.SplitFunc that yields LF-terminated lines without the
// terminator. A trailing fragment with no LF at EOF is dropped, so a stream
// cut mid-record never produces a partial line.
func ScanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		// Consume the remainder without emitting it.
		return len(data), nil, nil
	}
	return 0, nil, nil
}

// Decoder reads trimmed, non-empty lines from an underlying reader. It is
// bound to one reader and is not safe for concurrent use.
type Decoder struct {
	scanner *bufio.Scanner
	err     error
}

func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, initialBufferSize), MaxLineSize)
	s.Split(ScanLines)
	return &Decoder{scanner: s}
}

// Next returns the next line with surrounding whitespace removed. Blank lines
// are skipped. It returns io.EOF once the stream is exhausted; any other
// error is sticky and returned on every later call.
func (d *Decoder) Next() (string, error) {
	if d.err != nil {
		return "", d.err
	}

	for d.scanner.Scan() {
		line := bytes.TrimSpace(d.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		return string(line), nil
	}

	d.err = d.scanner.Err()
	if d.err == nil {
		d.err = io.EOF
	}
	return "", d.err
}

// Lines returns the decoder's remaining lines as a sequence. A read error is
// yielded once as the final element; io.EOF ends the sequence silently.
func (d *Decoder) Lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			line, err := d.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if !yield(line, nil) {
				return
			}
		}
	}
}
