package wire

import "bytes"

// LineBuffer reassembles newline-terminated lines from arbitrarily split
// chunks. The trailing partial line is retained until a later chunk
// completes it.
type LineBuffer struct {
	buf []byte
}

// Feed appends p and returns every line completed by it, without the
// terminating newline. Lines are returned in arrival order.
func (b *LineBuffer) Feed(p []byte) []string {
	b.buf = append(b.buf, p...)

	idx := bytes.LastIndexByte(b.buf, '\n')
	if idx < 0 {
		return nil
	}

	lines := bytes.Split(b.buf[:idx], []byte{'\n'})
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = string(line)
	}

	rest := b.buf[idx+1:]
	b.buf = append(b.buf[:0:0], rest...)
	return out
}

// Pending returns the incomplete line held for the next Feed.
func (b *LineBuffer) Pending() string {
	return string(b.buf)
}

// Reset discards any pending partial line.
func (b *LineBuffer) Reset() {
	b.buf = b.buf[:0]
}
