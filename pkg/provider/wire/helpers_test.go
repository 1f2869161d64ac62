package wire

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// chunkReader returns one pre-split chunk per Read call.
type chunkReader struct {
	chunks [][]byte
	reads  int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	r.reads++
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

// splitAt cuts body at the given byte offsets.
func splitAt(body string, offsets ...int) *chunkReader {
	r := &chunkReader{}
	prev := 0
	for _, off := range offsets {
		r.chunks = append(r.chunks, []byte(body[prev:off]))
		prev = off
	}
	r.chunks = append(r.chunks, []byte(body[prev:]))
	return r
}

// drain reads every fragment from d until io.EOF.
func drain(t *testing.T, d Decoder) []string {
	t.Helper()
	var out []string
	for {
		frag, err := d.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, frag)
	}
}
