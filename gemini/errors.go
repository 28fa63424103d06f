package gemini

import "errors"

var (
	// ErrMalformedResponse means the model answered but the body could not be
	// decoded into the requested shape.
	ErrMalformedResponse = errors.New("malformed upstream response")

	// ErrNoImage means the image model answered without an inline image part.
	ErrNoImage = errors.New("no image in upstream response")
)

// UpstreamError is a failure reported by the generation service itself.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Message is the vendor's own error text.
func (e *UpstreamError) Message() string {
	return e.Err.Error()
}
