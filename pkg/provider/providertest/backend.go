package providertest

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Route prefixes served by Backend.Handler.
const (
	HuggingFacePath = "/huggingface/generate"
	TogetherPrefix  = "/together/v1"
	ReplicatePrefix = "/replicate/v1"
)

// DefaultTokens is streamed when Backend.Tokens is empty.
var DefaultTokens = []string{"Hello", ", ", "nice", " ", "day", "!"}

// Request is a recorded inbound request.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// JSON decodes the recorded body into v.
func (r Request) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Backend is a configurable emulator for all three vendors. The zero
// value streams DefaultTokens without authentication.
type Backend struct {
	// Tokens are streamed in order, one per flush.
	Tokens []string

	// Delay is slept before each token.
	Delay time.Duration

	// APIKey, when set, must be presented with the vendor's scheme.
	APIKey string

	// Status, when non-zero, is returned by the first call of every
	// vendor instead of a stream.
	Status int

	// MalformedFrames inserts an undecodable data frame before every
	// token in event streams.
	MalformedFrames bool

	// OmitStreamURL makes the prediction create response lack urls.stream.
	OmitStreamURL bool

	// StallAfter, when positive, stops the stream after that many tokens
	// and waits for the client to disconnect.
	StallAfter int

	mu          sync.Mutex
	requests    []Request
	disconnects atomic.Int64
	nextID      atomic.Int64
}

// Requests returns a copy of all requests received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Disconnects reports how many stalled streams saw the client go away.
func (b *Backend) Disconnects() int64 {
	return b.disconnects.Load()
}

// Handler returns the HTTP handler serving all vendor routes.
func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+HuggingFacePath, b.handleHuggingFace)
	mux.HandleFunc("POST "+TogetherPrefix+"/chat/completions", b.handleTogether)
	mux.HandleFunc("POST "+ReplicatePrefix+"/predictions", b.handleReplicateCreate)
	mux.HandleFunc("GET "+ReplicatePrefix+"/streams/{id}", b.handleReplicateStream)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return mux
}

func (b *Backend) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	b.mu.Unlock()
}

func (b *Backend) tokens() []string {
	if len(b.Tokens) > 0 {
		return b.Tokens
	}
	return DefaultTokens
}

// authorized checks the Authorization header against scheme and APIKey.
func (b *Backend) authorized(w http.ResponseWriter, r *http.Request, scheme string) bool {
	if b.APIKey == "" || r.Header.Get("Authorization") == scheme+" "+b.APIKey {
		return true
	}
	writeError(w, http.StatusUnauthorized, "invalid api key")
	return false
}

// forcedStatus writes the configured error status, if any.
func (b *Backend) forcedStatus(w http.ResponseWriter) bool {
	if b.Status == 0 {
		return false
	}
	writeError(w, b.Status, fmt.Sprintf("emulated failure %d", b.Status))
	return true
}

// emit streams tokens through write, honouring Delay and StallAfter. It
// returns false if the client went away.
func (b *Backend) emit(w http.ResponseWriter, r *http.Request, write func(i int, token string)) bool {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return false
	}
	flusher.Flush()

	for i, token := range b.tokens() {
		if b.StallAfter > 0 && i == b.StallAfter {
			<-r.Context().Done()
			b.disconnects.Add(1)
			slog.Debug("emulator stream abandoned by client", "path", r.URL.Path, "sent", i)
			return false
		}
		if b.Delay > 0 {
			select {
			case <-time.After(b.Delay):
			case <-r.Context().Done():
				return false
			}
		}
		write(i, token)
		flusher.Flush()
	}
	return true
}

func (b *Backend) handleHuggingFace(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	if !b.authorized(w, r, "Bearer") || b.forcedStatus(w) {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	b.emit(w, r, func(_ int, token string) {
		io.WriteString(w, token)
	})
}

func (b *Backend) handleTogether(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	if !b.authorized(w, r, "Bearer") || b.forcedStatus(w) {
		return
	}

	setEventStreamHeaders(w)
	// Role chunk carries no content.
	writeData(w, chatChunk(map[string]any{"role": "assistant"}, nil))

	done := b.emit(w, r, func(_ int, token string) {
		if b.MalformedFrames {
			fmt.Fprint(w, "data: {\"choices\": [\n\n")
		}
		writeData(w, chatChunk(map[string]any{"content": token}, nil))
	})
	if !done {
		return
	}

	stop := "stop"
	writeData(w, chatChunk(map[string]any{}, &stop))
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func (b *Backend) handleReplicateCreate(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	if !b.authorized(w, r, "Token") {
		return
	}
	if b.Status != 0 {
		writeDetail(w, b.Status, fmt.Sprintf("emulated failure %d", b.Status))
		return
	}

	id := fmt.Sprintf("pred%04d", b.nextID.Add(1))
	urls := map[string]any{
		"get":    absoluteURL(r, ReplicatePrefix+"/predictions/"+id),
		"cancel": absoluteURL(r, ReplicatePrefix+"/predictions/"+id+"/cancel"),
	}
	if !b.OmitStreamURL {
		urls["stream"] = absoluteURL(r, ReplicatePrefix+"/streams/"+id)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"id":     id,
		"status": "starting",
		"urls":   urls,
	})
}

func (b *Backend) handleReplicateStream(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	if !b.authorized(w, r, "Token") {
		return
	}

	setEventStreamHeaders(w)
	fmt.Fprint(w, ": connected\n\n")

	id := r.PathValue("id")
	done := b.emit(w, r, func(i int, token string) {
		if b.MalformedFrames {
			fmt.Fprint(w, "event: output\ndata: not-json\n\n")
		}
		data, _ := json.Marshal(map[string]any{"output": token})
		fmt.Fprintf(w, "event: output\nid: %s:%d\ndata: %s\n\n", id, i, data)
	})
	if !done {
		return
	}
	fmt.Fprint(w, "event: done\ndata: {}\n\n")
}

func chatChunk(delta map[string]any, finishReason *string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-emulated",
		"object": "chat.completion.chunk",
		"choices": []any{
			map[string]any{
				"index":         0,
				"delta":         delta,
				"finish_reason": finishReason,
			},
		},
	}
}

func setEventStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

func writeData(w io.Writer, v any) {
	data, _ := json.Marshal(v)
	fmt.Fprintf(w, "data: %s\n\n", data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": msg},
	})
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"detail": msg})
}

func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + path
}

// Words splits text into word tokens that keep their trailing space, so
// the tokens concatenate back to text.
func Words(text string) []string {
	var out []string
	for _, w := range strings.SplitAfter(text, " ") {
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}
