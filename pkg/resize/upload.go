package resize

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"

	"github.com/samvad-hq/imgresize-client/pkg/httpclient"
)

// multipartField is the form field the service reads the image from.
const multipartField = "file"

// UploadTransport sends image bytes to the service and streams the resized
// image back into a local file.
type UploadTransport struct {
	client   httpclient.Client
	endpoint string
	fs       FileSystem
	log      Logger
}

// NewUploadTransport builds an upload-mode transport against baseURL.
func NewUploadTransport(client httpclient.Client, baseURL string, opts ...Option) (*UploadTransport, error) {
	if client == nil {
		return nil, errors.New("http client must not be nil")
	}
	endpoint, err := endpointURL(baseURL)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &UploadTransport{
		client:   client,
		endpoint: endpoint,
		fs:       o.fs,
		log:      o.log,
	}, nil
}

func (u *UploadTransport) Mode() Mode { return ModeUpload }

// Resize uploads sourcePath and writes the resized image to destinationPath.
// The destination is created only after the service answered with a 2xx status.
func (u *UploadTransport) Resize(ctx context.Context, sourcePath, destinationPath string, params Parameters) error {
	if err := params.Validate(); err != nil {
		return err
	}

	source, err := u.fs.ReadFile(sourcePath)
	if err != nil {
		return &LocalIOError{Op: "read source", Path: sourcePath, Err: err}
	}

	part := httpclient.FilePart{
		Field:       multipartField,
		Filename:    filepath.Base(destinationPath),
		ContentType: params.Extension.MediaType(),
		Content:     bytes.NewReader(source),
	}
	u.log.DebugObj("upload resize request", "resize_request", map[string]any{
		"source":       sourcePath,
		"destination":  destinationPath,
		"source_bytes": len(source),
		"width":        params.Width,
		"height":       params.Height,
		"extension":    params.Extension,
	})

	resp, err := u.client.PostMultipart(ctx, u.endpoint, queryMap(BuildQuery(params)), part)
	if err != nil {
		return &TransportError{Err: err}
	}
	if err := CheckResponse(resp); err != nil {
		return err
	}

	body := resp.RawBody()
	defer body.Close()

	written, err := u.persist(body, destinationPath)
	if err != nil {
		return err
	}
	u.log.DebugObj("upload resize stored", "resize_result", map[string]any{
		"destination":   destinationPath,
		"bytes_written": written,
	})
	return nil
}

// persist pipes body into a fresh file at path without buffering it.
func (u *UploadTransport) persist(body io.Reader, path string) (int64, error) {
	dst, err := u.fs.Create(path)
	if err != nil {
		return 0, &LocalIOError{Op: "create destination", Path: path, Err: err}
	}

	written, copyErr := io.Copy(dst, body)
	if copyErr != nil {
		dst.Close()
		return written, &StreamError{Path: path, Written: written, Err: copyErr}
	}
	if err := dst.Sync(); err != nil {
		dst.Close()
		return written, &LocalIOError{Op: "flush destination", Path: path, Err: err}
	}
	if err := dst.Close(); err != nil {
		return written, &LocalIOError{Op: "close destination", Path: path, Err: err}
	}
	return written, nil
}
