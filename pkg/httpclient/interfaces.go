package httpclient

import (
	"context"
	"io"
	"net/http"
)

// Response is a single HTTP exchange whose body has not been consumed yet.
// Callers own RawBody and must close it on every path.
type Response interface {
	StatusCode() int
	Status() string
	Header() http.Header
	RawBody() io.ReadCloser
}

// FilePart is one binary part of a multipart/form-data body.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Content     io.Reader
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	PostMultipart(ctx context.Context, url string, query map[string]string, part FilePart) (Response, error)
	PostJSON(ctx context.Context, url string, body any) (Response, error)
}
