package resize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// LocalIOError reports a failure reading the source or writing the destination file.
type LocalIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *LocalIOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LocalIOError) Unwrap() error { return e.Err }

// TransportError reports a failed exchange with the resize service: either the
// request never produced a response (Err set) or the service answered with a
// non-2xx status (Diagnostic holds the response body text).
type TransportError struct {
	StatusCode int
	Status     string
	Diagnostic string
	Err        error
}

// Error returns the service diagnostic unmodified when one was sent.
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resize request: %v", e.Err)
	}
	if e.Diagnostic != "" {
		return e.Diagnostic
	}
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d", e.StatusCode)
	}
	return "resize service returned " + status
}

func (e *TransportError) Unwrap() error { return e.Err }

// StreamError reports a failure while draining a successful response into the destination.
// The destination may be left partially written.
type StreamError struct {
	Path    string
	Written int64
	Err     error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream response into %s after %d bytes: %v", e.Path, e.Written, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// ParameterError reports resize parameters rejected before any request was made.
type ParameterError struct {
	Err error
}

func (e *ParameterError) Error() string {
	return "invalid resize parameters: " + e.Err.Error()
}

func (e *ParameterError) Unwrap() error { return e.Err }

func newParameterError(err error) error {
	var valErrors validator.ValidationErrors
	if !errors.As(err, &valErrors) {
		return &ParameterError{Err: err}
	}
	msgs := make([]string, 0, len(valErrors))
	for _, fe := range valErrors {
		msgs = append(msgs, fmt.Sprintf("%s failed on the '%s' tag", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return &ParameterError{Err: errors.New(strings.Join(msgs, "; "))}
}
