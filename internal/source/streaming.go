package source

// streaming.go cleans file input before it reaches a decoder:
//
//   - a UTF-8 byte order mark written by Windows programs is dropped
//   - invalid UTF-8 bytes are replaced with '?'
//
// Both work on a bufio.Reader, so memory use stays at the buffer size no
// matter how large the file is.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM discards a leading UTF-8 byte order mark.
func skipBOM(br *bufio.Reader) error {
	head, err := br.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return err
	}
	if bytes.Equal(head, utf8BOM) {
		_, err = br.Discard(len(utf8BOM))
		return err
	}
	return nil
}

// sanitizingReader replaces invalid UTF-8 bytes with '?'.
type sanitizingReader struct {
	br *bufio.Reader
}

// Read implements io.Reader.
func (r *sanitizingReader) Read(p []byte) (int, error) {
	n := 0
	for n+utf8.UTFMax <= len(p) {
		c, size, err := r.br.ReadRune()
		if err != nil {
			if n > 0 && err == io.EOF {
				return n, nil
			}
			return n, err
		}
		if c == utf8.RuneError && size == 1 {
			p[n] = '?'
			n++
			continue
		}
		n += utf8.EncodeRune(p[n:], c)
		if r.br.Buffered() == 0 && n > 0 {
			// Hand back what we have rather than block on the next fill.
			return n, nil
		}
	}
	if n == 0 && len(p) > 0 {
		// p is smaller than one rune; fall back to a raw byte.
		b, err := r.br.ReadByte()
		if err != nil {
			return 0, err
		}
		p[0] = b
		return 1, nil
	}
	return n, nil
}

// cleanReader wraps r with BOM skipping and UTF-8 sanitizing.
func cleanReader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	if err := skipBOM(br); err != nil {
		return nil, err
	}
	return &sanitizingReader{br: br}, nil
}
