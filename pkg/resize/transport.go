package resize

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/samvad-hq/imgresize-client/pkg/httpclient"
)

// Mode selects the request protocol spoken to the service.
type Mode string

const (
	ModeUpload  Mode = "upload"
	ModeCommand Mode = "command"
)

// ParseMode normalizes a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeUpload, ModeCommand:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported resize mode %q", s)
	}
}

// Transport performs one resize exchange with the service.
type Transport interface {
	Mode() Mode
	Resize(ctx context.Context, source, destination string, params Parameters) error
}

var (
	_ Transport = (*UploadTransport)(nil)
	_ Transport = (*CommandTransport)(nil)
)

// NewTransport returns the transport implementing mode.
func NewTransport(mode Mode, client httpclient.Client, baseURL string, opts ...Option) (Transport, error) {
	switch mode {
	case ModeUpload:
		return NewUploadTransport(client, baseURL, opts...)
	case ModeCommand:
		return NewCommandTransport(client, baseURL, opts...)
	default:
		return nil, fmt.Errorf("unsupported resize mode %q", mode)
	}
}

// endpointURL validates the service base URL and returns its root endpoint.
func endpointURL(baseURL string) (string, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return "", fmt.Errorf("service url is empty")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse service url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("service url %q must use http or https", baseURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("service url %q has no host", baseURL)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
