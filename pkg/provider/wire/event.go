package wire

import (
	"io"
	"strings"

	"github.com/greemwahr/GeorgianGPT/pkg/debug"
)

const dataPrefix = "data:"

// Extractor turns one data payload into zero or more fragments. An
// error marks the frame as undecodable; the decoder skips it.
type Extractor func(payload string) ([]string, error)

// EventDecoder reads "data:" framed lines and hands each payload to an
// Extractor. Lines that are blank, comments, or other SSE fields
// (event:, id:, retry:) are ignored. Malformed payloads are reported to
// the skip hook and dropped; they never end the stream.
type EventDecoder struct {
	r       io.Reader
	extract Extractor
	onSkip  SkipFunc

	buf     []byte
	lines   LineBuffer
	pending []string
	err     error
}

var _ Decoder = (*EventDecoder)(nil)

// Option configures an EventDecoder.
type Option func(*EventDecoder)

// WithSkipHook registers fn to be called for every skipped frame.
func WithSkipHook(fn SkipFunc) Option {
	return func(d *EventDecoder) {
		d.onSkip = fn
	}
}

// NewEventDecoder creates an event-stream decoder reading from r.
func NewEventDecoder(r io.Reader, extract Extractor, opts ...Option) *EventDecoder {
	d := &EventDecoder{
		r:       r,
		extract: extract,
		buf:     make([]byte, readSize),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Next returns the next fragment, reading more of the body only when no
// decoded fragment is queued.
func (d *EventDecoder) Next() (string, error) {
	for {
		if len(d.pending) > 0 {
			frag := d.pending[0]
			d.pending = d.pending[1:]
			return frag, nil
		}
		if d.err != nil {
			return "", d.err
		}

		n, err := d.r.Read(d.buf)
		if n > 0 {
			for _, line := range d.lines.Feed(d.buf[:n]) {
				d.handleLine(line)
			}
		}
		if err != nil {
			d.err = err
			if rest := strings.TrimSpace(d.lines.Pending()); rest != "" {
				debug.Log("streaming", "discarding unterminated final line",
					"line", debug.Truncate(rest, 200),
				)
			}
			d.lines.Reset()
		}
	}
}

func (d *EventDecoder) handleLine(line string) {
	payload, ok := strings.CutPrefix(strings.TrimSpace(line), dataPrefix)
	if !ok {
		return
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return
	}

	frags, err := d.extract(payload)
	if err != nil {
		d.skip(payload, err)
		return
	}
	for _, f := range frags {
		if f != "" {
			d.pending = append(d.pending, f)
		}
	}
}

func (d *EventDecoder) skip(payload string, err error) {
	debug.Log("streaming", "skipping undecodable frame",
		"error", err.Error(),
		"data", debug.Truncate(payload, 200),
	)
	if d.onSkip != nil {
		d.onSkip(payload, err)
	}
}
