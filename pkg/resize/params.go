// Package resize implements the client side of the remote image-resizing
// service: a binary-upload transport and a command transport.
package resize

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Format is an image format token as understood by the resize service.
type Format string

// Known format tokens.
const (
	FormatJPEG Format = "jpeg"
	FormatJPG  Format = "jpg"
	FormatJFIF Format = "jfif"
	FormatPNG  Format = "png"
	FormatWEBP Format = "webp"
	FormatGIF  Format = "gif"
	FormatAVIF Format = "avif"
)

const defaultMediaType = "application/octet-stream"

var mediaTypes = map[Format]string{
	FormatJPEG: "image/jpeg",
	FormatJPG:  "image/jpeg",
	FormatJFIF: "image/jpeg",
	FormatPNG:  "image/png",
	FormatWEBP: "image/webp",
	FormatGIF:  "image/gif",
	FormatAVIF: "image/avif",
}

func (f Format) String() string { return string(f) }

// MediaType returns the media type used to tag an uploaded part of this format.
// Unknown tokens are sent as application/octet-stream; support is decided server-side.
func (f Format) MediaType() string {
	if mt, ok := mediaTypes[f.normalize()]; ok {
		return mt
	}
	return defaultMediaType
}

// Known reports whether the token is one of the formats the service advertises.
func (f Format) Known() bool {
	_, ok := mediaTypes[f.normalize()]
	return ok
}

func (f Format) normalize() Format {
	return Format(strings.ToLower(strings.TrimSpace(string(f))))
}

// FormatFromPath derives a format token from the extension of path.
func FormatFromPath(path string) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return Format(ext).normalize()
}

// Parameters describe the desired output of a resize.
type Parameters struct {
	Width     int    `validate:"gt=0"`
	Height    int    `validate:"gt=0"`
	Extension Format `validate:"required"`
}

const (
	queryWidth     = "width"
	queryHeight    = "height"
	queryExtension = "extension"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func paramValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks the full triple as required by upload mode.
func (p Parameters) Validate() error {
	if err := paramValidator().Struct(p); err != nil {
		return newParameterError(err)
	}
	return nil
}

// validateDimensions checks width and height only; command mode derives the format from paths.
func (p Parameters) validateDimensions() error {
	if err := paramValidator().StructPartial(p, "Width", "Height"); err != nil {
		return newParameterError(err)
	}
	return nil
}

// BuildQuery encodes the parameters for the upload query string.
func BuildQuery(p Parameters) url.Values {
	q := url.Values{}
	q.Set(queryWidth, strconv.Itoa(p.Width))
	q.Set(queryHeight, strconv.Itoa(p.Height))
	q.Set(queryExtension, string(p.Extension))
	return q
}

// ParseQuery decodes parameters previously encoded by BuildQuery.
func ParseQuery(q url.Values) (Parameters, error) {
	width, err := strconv.Atoi(q.Get(queryWidth))
	if err != nil {
		return Parameters{}, fmt.Errorf("parse width: %w", err)
	}
	height, err := strconv.Atoi(q.Get(queryHeight))
	if err != nil {
		return Parameters{}, fmt.Errorf("parse height: %w", err)
	}
	p := Parameters{
		Width:     width,
		Height:    height,
		Extension: Format(q.Get(queryExtension)),
	}
	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

func queryMap(q url.Values) map[string]string {
	out := make(map[string]string, len(q))
	for k := range q {
		out[k] = q.Get(k)
	}
	return out
}
