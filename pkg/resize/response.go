package resize

import (
	"fmt"
	"io"
	"net/http"

	"github.com/samvad-hq/imgresize-client/pkg/httpclient"
)

// IsSuccess classifies an HTTP status; only 2xx counts as success.
func IsSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// CheckResponse returns nil for a successful response and leaves its body open.
// Otherwise it reads the whole body as the diagnostic, closes it and returns a
// *TransportError.
func CheckResponse(resp httpclient.Response) error {
	if IsSuccess(resp.StatusCode()) {
		return nil
	}

	body := resp.RawBody()
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return &TransportError{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Err:        fmt.Errorf("read diagnostic body: %w", err),
		}
	}
	return &TransportError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Diagnostic: string(raw),
	}
}

// discardBody drains and closes a body the caller has no use for.
func discardBody(body io.ReadCloser) error {
	defer body.Close()
	_, err := io.Copy(io.Discard, body)
	return err
}
