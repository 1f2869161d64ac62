package wire

import (
	"io"
	"unicode/utf8"
)

// RawDecoder forwards the body unmodified. Each read becomes one
// fragment, except that an incomplete trailing UTF-8 sequence is held
// back and prepended to the next read so fragments stay valid text.
type RawDecoder struct {
	r     io.Reader
	buf   []byte
	carry []byte
	err   error
}

var _ Decoder = (*RawDecoder)(nil)

// NewRawDecoder creates a pass-through decoder reading from r.
func NewRawDecoder(r io.Reader) *RawDecoder {
	return &RawDecoder{
		r:   r,
		buf: make([]byte, readSize),
	}
}

// Next returns the next chunk of body text.
func (d *RawDecoder) Next() (string, error) {
	for {
		if d.err != nil {
			// Whatever is left is emitted as-is so the concatenation of all
			// fragments always equals the body.
			if len(d.carry) > 0 {
				s := string(d.carry)
				d.carry = nil
				return s, nil
			}
			return "", d.err
		}

		n, err := d.r.Read(d.buf)
		if err != nil {
			d.err = err
		}
		if n == 0 {
			continue
		}

		data := append(d.carry, d.buf[:n]...)
		cut := completeUTF8Prefix(data)
		d.carry = append([]byte(nil), data[cut:]...)
		if cut > 0 {
			return string(data[:cut]), nil
		}
	}
}

// completeUTF8Prefix returns the length of the longest prefix of p that
// does not end inside a multi-byte rune.
func completeUTF8Prefix(p []byte) int {
	for i := len(p) - 1; i >= 0 && i >= len(p)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(p[i]) {
			continue
		}
		if utf8.FullRune(p[i:]) {
			return len(p)
		}
		return i
	}
	return len(p)
}
