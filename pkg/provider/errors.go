package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// ErrorKind represents the category of a provider error.
type ErrorKind string

const (
	// KindConfiguration covers missing credentials and unknown provider
	// selection. Always raised before any network activity.
	KindConfiguration ErrorKind = "configuration"

	// KindTransport covers non-success HTTP statuses, absent bodies and
	// network failures.
	KindTransport ErrorKind = "transport"

	// KindProtocol covers vendor responses missing a mandatory value.
	KindProtocol ErrorKind = "protocol"

	// KindFrameDecode marks a single undecodable frame. Decoders log and
	// skip these; they never terminate a stream.
	KindFrameDecode ErrorKind = "frame_decode"

	// KindInvalidRequest covers out-of-range generation options.
	KindInvalidRequest ErrorKind = "invalid_request"
)

// Sentinels for errors.Is matching on kind alone.
var (
	ErrConfiguration  = &Error{Kind: KindConfiguration}
	ErrTransport      = &Error{Kind: KindTransport}
	ErrProtocol       = &Error{Kind: KindProtocol}
	ErrFrameDecode    = &Error{Kind: KindFrameDecode}
	ErrInvalidRequest = &Error{Kind: KindInvalidRequest}
)

// Error is the structured error returned by every adapter.
type Error struct {
	Kind     ErrorKind
	Provider string
	Param    string

	// StatusCode and Reason are set for transport errors that carry an
	// HTTP response.
	StatusCode int
	Reason     string

	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Provider != "" {
		b.WriteString(e.Provider)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	b.WriteString(" error")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": %d %s", e.StatusCode, e.Reason)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Param != "" {
		fmt.Fprintf(&b, " (param: %s)", e.Param)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels (ErrConfiguration, ErrTransport, ...).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.StatusCode == 0 && t.Provider == "" && t.Kind == e.Kind
}

// NewConfigError creates an Error for missing or invalid configuration.
func NewConfigError(provider, message string) *Error {
	return &Error{
		Kind:     KindConfiguration,
		Provider: provider,
		Message:  message,
	}
}

// NewTransportError creates an Error for a failed HTTP exchange.
func NewTransportError(provider string, statusCode int, reason, message string) *Error {
	return &Error{
		Kind:       KindTransport,
		Provider:   provider,
		StatusCode: statusCode,
		Reason:     reason,
		Message:    message,
	}
}

// NewProtocolError creates an Error for a vendor response missing a
// mandatory value.
func NewProtocolError(provider, message string) *Error {
	return &Error{
		Kind:     KindProtocol,
		Provider: provider,
		Message:  message,
	}
}

// NewFrameDecodeError wraps a per-frame decode failure.
func NewFrameDecodeError(err error) *Error {
	return &Error{
		Kind: KindFrameDecode,
		Err:  err,
	}
}

// NewInvalidRequestError creates an Error for an out-of-range parameter.
func NewInvalidRequestError(param, message string) *Error {
	return &Error{
		Kind:    KindInvalidRequest,
		Param:   param,
		Message: message,
	}
}

// MapHTTPError converts a non-2xx response into a transport Error that
// preserves the status code and reason phrase. The vendor body is read
// (up to 4 KiB) to extract a descriptive message.
func MapHTTPError(provider string, resp *http.Response) *Error {
	message := ExtractErrorMessage(resp.Body)
	return NewTransportError(provider, resp.StatusCode, ReasonPhrase(resp), message)
}

// MapNetworkError converts a network-level error (connection refused,
// DNS failure, cancellation) into a transport Error. The cause stays
// reachable through errors.Is, so callers can still detect
// context.Canceled.
func MapNetworkError(provider string, err error) *Error {
	msg := "backend connection error"
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		msg = "request cancelled"
	}
	return &Error{
		Kind:     KindTransport,
		Provider: provider,
		Message:  msg,
		Err:      err,
	}
}

// ReasonPhrase returns the reason phrase of resp ("Not Found" for
// "404 Not Found"), falling back to the standard text for the code.
func ReasonPhrase(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if reason, ok := strings.CutPrefix(resp.Status, code+" "); ok && reason != "" {
		return reason
	}
	return http.StatusText(resp.StatusCode)
}

// ExtractErrorMessage tries the common vendor error shapes:
// {"error":{"message":"..."}}, {"error":"..."} and {"detail":"..."}.
func ExtractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp struct {
		Error  json.RawMessage `json:"error"`
		Detail string          `json:"detail"`
	}
	if err := json.Unmarshal(data, &errResp); err != nil {
		return ""
	}

	if len(errResp.Error) > 0 {
		var obj struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(errResp.Error, &obj); err == nil && obj.Message != "" {
			return obj.Message
		}
		var s string
		if err := json.Unmarshal(errResp.Error, &s); err == nil && s != "" {
			return s
		}
	}

	return errResp.Detail
}
