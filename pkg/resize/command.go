package resize

import (
	"context"
	"errors"

	"github.com/samvad-hq/imgresize-client/pkg/httpclient"
)

// CommandRequest is the JSON document sent in command mode.
type CommandRequest struct {
	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Quality    int    `json:"quality,omitempty"`
}

// CommandTransport asks the service to resize files on its own filesystem.
// It never touches the local filesystem.
type CommandTransport struct {
	client   httpclient.Client
	endpoint string
	quality  int
	log      Logger
}

// NewCommandTransport builds a command-mode transport against baseURL.
func NewCommandTransport(client httpclient.Client, baseURL string, opts ...Option) (*CommandTransport, error) {
	if client == nil {
		return nil, errors.New("http client must not be nil")
	}
	endpoint, err := endpointURL(baseURL)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &CommandTransport{
		client:   client,
		endpoint: endpoint,
		quality:  o.quality,
		log:      o.log,
	}, nil
}

func (c *CommandTransport) Mode() Mode { return ModeCommand }

// Resize sends inputPath and outputPath untouched; the service resolves them.
// params.Extension is ignored.
func (c *CommandTransport) Resize(ctx context.Context, inputPath, outputPath string, params Parameters) error {
	if err := params.validateDimensions(); err != nil {
		return err
	}

	req := CommandRequest{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Width:      params.Width,
		Height:     params.Height,
		Quality:    c.quality,
	}
	c.log.DebugObj("command resize request", "resize_request", req)

	resp, err := c.client.PostJSON(ctx, c.endpoint, req)
	if err != nil {
		return &TransportError{Err: err}
	}
	if err := CheckResponse(resp); err != nil {
		return err
	}
	if err := discardBody(resp.RawBody()); err != nil {
		c.log.WarnObj("command resize acknowledgment not drained", "error", err.Error())
	}
	return nil
}
