package provider

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/greemwahr/GeorgianGPT/pkg/debug"
	"github.com/greemwahr/GeorgianGPT/pkg/observability"
)

// FragmentSource yields decoded text fragments one at a time. It returns
// io.EOF once the underlying body is exhausted. The wire package's
// decoders implement it.
type FragmentSource interface {
	Next() (string, error)
}

// StreamInfo labels a Stream for logging and metrics.
type StreamInfo struct {
	ID       string
	Provider ProviderName
	Model    string
}

// Stream is a lazy, finite, non-restartable sequence of text fragments
// backed by exactly one open response body. Nothing is read from the
// network until Next is called, so a consumer that stops pulling stops
// the reads.
//
// Usage mirrors bufio.Scanner:
//
//	defer s.Close()
//	for s.Next() {
//		fmt.Print(s.Text())
//	}
//	if err := s.Err(); err != nil { ... }
//
// Next, Text and Err must be called from one goroutine. Close may be
// called from any goroutine; it releases the connection and unblocks a
// pending read. Cancelling the context passed to NewStream closes the
// stream as well.
type Stream struct {
	ctx  context.Context
	src  FragmentSource
	body io.Closer
	info StreamInfo

	text      string
	err       error
	fragments int

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error

	// stop deregisters the cancellation callback. It is nil until
	// registration returns; the callback may run before that.
	stop atomic.Pointer[func() bool]
}

// NewStream wraps src, whose bytes come from body, into a Stream. The
// stream owns body and closes it when drained, on Close, or when ctx is
// cancelled.
func NewStream(ctx context.Context, body io.Closer, src FragmentSource, info StreamInfo) *Stream {
	s := &Stream{
		ctx:  ctx,
		src:  src,
		body: body,
		info: info,
	}
	observability.StreamsActive.WithLabelValues(string(info.Provider)).Inc()
	debug.Log("streaming", "stream opened",
		"stream_id", info.ID,
		"provider", info.Provider,
		"model", info.Model,
	)

	stop := context.AfterFunc(ctx, func() { s.Close() })
	s.stop.Store(&stop)
	return s
}

// ID returns the stream identifier used in log lines.
func (s *Stream) ID() string {
	return s.info.ID
}

// Next advances to the next fragment, reading from the network if
// needed. It returns false when the stream is exhausted, failed, or was
// closed; Err distinguishes the cases.
func (s *Stream) Next() bool {
	if s.err != nil {
		return false
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
		s.Close()
		return false
	}
	if s.closed.Load() {
		return false
	}

	frag, err := s.src.Next()
	if err != nil {
		switch {
		case errors.Is(err, io.EOF):
			// Normal end of stream.
		case s.ctx.Err() != nil:
			s.err = s.ctx.Err()
		case s.closed.Load():
			// Closed by the consumer while a read was pending.
		default:
			s.err = &Error{
				Kind:     KindTransport,
				Provider: string(s.info.Provider),
				Message:  "stream read failed",
				Err:      err,
			}
		}
		s.Close()
		return false
	}

	s.text = frag
	s.fragments++
	observability.StreamFragmentsTotal.WithLabelValues(string(s.info.Provider), s.info.Model).Inc()
	return true
}

// Text returns the fragment produced by the most recent call to Next.
func (s *Stream) Text() string {
	return s.text
}

// Err returns the error that terminated the stream, or nil if it ended
// normally or was closed by the consumer.
func (s *Stream) Err() error {
	return s.err
}

// Close releases the underlying connection. It is safe to call more
// than once and from any goroutine.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if stop := s.stop.Load(); stop != nil {
			(*stop)()
		}
		s.closeErr = s.body.Close()
		observability.StreamsActive.WithLabelValues(string(s.info.Provider)).Dec()
		debug.Log("streaming", "stream closed",
			"stream_id", s.info.ID,
			"provider", s.info.Provider,
			"fragments", s.fragments,
		)
	})
	return s.closeErr
}

// All returns a range-over-func iterator over the fragments. A
// terminating error is yielded as the final pair. Breaking out of the
// loop closes the stream.
func (s *Stream) All() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		defer s.Close()
		for s.Next() {
			if !yield(s.Text(), nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			yield("", err)
		}
	}
}

// Collect drains s and returns the concatenated text. The stream is
// closed on return. On error the text received so far is returned along
// with the error.
func Collect(s *Stream) (string, error) {
	var b strings.Builder
	for frag, err := range s.All() {
		if err != nil {
			slog.Debug("stream terminated early", "stream_id", s.ID(), "error", err)
			return b.String(), err
		}
		b.WriteString(frag)
	}
	return b.String(), nil
}
