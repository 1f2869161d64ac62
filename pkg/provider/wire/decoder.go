package wire

// readSize is the chunk size requested from the body per read.
const readSize = 4096

// Decoder yields text fragments from a response body. Next blocks until
// a fragment is available and returns io.EOF once the body is exhausted.
// Any other error is a read failure of the underlying body.
type Decoder interface {
	Next() (string, error)
}

// SkipFunc is called for every data frame that could not be decoded.
type SkipFunc func(payload string, err error)
