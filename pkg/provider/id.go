package provider

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

const streamIDPrefix = "strm_"

// NewStreamID returns a sortable identifier used to correlate the log
// lines of one GenerateStream call.
func NewStreamID() string {
	return streamIDPrefix + strings.ToLower(ulid.Make().String())
}
