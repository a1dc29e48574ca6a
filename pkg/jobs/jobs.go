// Package jobs loads the list of resize jobs the batch runner executes.
package jobs

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic fingerprint
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/samvad-hq/imgresize-client/pkg/resize"
)

// Job is a single resize declared in a jobs file.
type Job struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	Mode        string `json:"mode" yaml:"mode" validate:"oneof=upload command"`
	Source      string `json:"source" yaml:"source" validate:"required"`
	Destination string `json:"destination" yaml:"destination" validate:"required"`
	Width       int    `json:"width" yaml:"width" validate:"gt=0"`
	Height      int    `json:"height" yaml:"height" validate:"gt=0"`
	Extension   string `json:"extension" yaml:"extension" validate:"required_if=Mode upload"`
	Quality     int    `json:"quality" yaml:"quality" validate:"gte=0,lte=100"`
	Enabled     *bool  `json:"enabled" yaml:"enabled"`
}

// EnabledValue returns enabled flag defaulting to true.
func (j Job) EnabledValue() bool {
	if j.Enabled == nil {
		return true
	}
	return *j.Enabled
}

// ResizeMode returns the parsed transport mode.
func (j Job) ResizeMode() (resize.Mode, error) {
	return resize.ParseMode(j.Mode)
}

// Parameters returns the resize parameters of the job.
func (j Job) Parameters() resize.Parameters {
	return resize.Parameters{
		Width:     j.Width,
		Height:    j.Height,
		Extension: resize.Format(j.Extension),
	}
}

// Fingerprint identifies the job's effective request; editing any field yields a new one.
func (j Job) Fingerprint() string {
	parts := []string{
		j.Mode,
		j.Source,
		j.Destination,
		strconv.Itoa(j.Width),
		strconv.Itoa(j.Height),
		j.Extension,
		strconv.Itoa(j.Quality),
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}

func (j Job) String() string {
	return fmt.Sprintf("%s[%s %s -> %s %dx%d]", j.ID, j.Mode, j.Source, j.Destination, j.Width, j.Height)
}
