package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
// A zero timeout leaves deadlines to the caller's context.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
// Redirects are returned to the caller as-is instead of being followed.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	c.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	return c
}

// PostMultipart sends a single file part as multipart/form-data with the given query parameters.
// The response body is left unread.
func (r *RestyClient) PostMultipart(ctx context.Context, url string, query map[string]string, part FilePart) (Response, error) {
	if part.Content == nil {
		return nil, errors.New("multipart part has no content")
	}
	req := r.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetMultipartField(part.Field, part.Filename, part.ContentType, part.Content)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	return execute(req, url)
}

// PostJSON sends body encoded as JSON. The response body is left unread.
func (r *RestyClient) PostJSON(ctx context.Context, url string, body any) (Response, error) {
	req := r.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	return execute(req, url)
}

func execute(req *resty.Request, url string) (Response, error) {
	resp, err := req.Post(url)
	if err != nil {
		if resp != nil {
			if body := resp.RawBody(); body != nil {
				body.Close()
			}
		}
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Status() string      { return r.resp.Status() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }

func (r *restyResponseAdapter) RawBody() io.ReadCloser {
	if body := r.resp.RawBody(); body != nil {
		return body
	}
	return http.NoBody
}
