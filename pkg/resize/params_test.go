package resize

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestQueryRoundTrip(t *testing.T) {
	cases := []Parameters{
		{Width: 200, Height: 200, Extension: FormatJPEG},
		{Width: 1, Height: 4096, Extension: FormatWEBP},
		{Width: 640, Height: 1, Extension: FormatPNG},
		{Width: 100, Height: 100, Extension: Format("tiff")},
	}
	for _, want := range cases {
		encoded := BuildQuery(want).Encode()
		parsed, err := url.ParseQuery(encoded)
		if err != nil {
			t.Fatalf("ParseQuery(%q): %v", encoded, err)
		}
		got, err := ParseQuery(parsed)
		if err != nil {
			t.Fatalf("ParseQuery: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestBuildQueryEncodesStrings(t *testing.T) {
	q := BuildQuery(Parameters{Width: 200, Height: 150, Extension: FormatJPEG})
	if got := q.Encode(); got != "extension=jpeg&height=150&width=200" {
		t.Fatalf("Encode() = %q", got)
	}
}

func TestParseQueryRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"non numeric width": "width=abc&height=1&extension=png",
		"zero height":       "width=1&height=0&extension=png",
		"missing extension": "width=1&height=1",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			q, _ := url.ParseQuery(raw)
			if _, err := ParseQuery(q); err == nil {
				t.Fatalf("expected error for %q", raw)
			}
		})
	}
}

func TestParametersValidate(t *testing.T) {
	err := Parameters{Width: -1, Height: 10, Extension: FormatPNG}.Validate()
	var perr *ParameterError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParameterError, got %T (%v)", err, err)
	}
	if perr.Error() != "invalid resize parameters: width failed on the 'gt' tag" {
		t.Fatalf("message = %q", perr.Error())
	}

	if err := (Parameters{Width: 10, Height: 10}).validateDimensions(); err != nil {
		t.Fatalf("dimensions-only validation should ignore extension: %v", err)
	}
}

func TestFormatMediaType(t *testing.T) {
	cases := map[Format]string{
		FormatJPEG:     "image/jpeg",
		FormatJPG:      "image/jpeg",
		"JFIF":         "image/jpeg",
		FormatPNG:      "image/png",
		FormatWEBP:     "image/webp",
		FormatGIF:      "image/gif",
		FormatAVIF:     "image/avif",
		Format("tiff"): "application/octet-stream",
	}
	for f, want := range cases {
		if got := f.MediaType(); got != want {
			t.Errorf("%s.MediaType() = %q, want %q", f, got, want)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{
		"./images/logo_small.jpeg": FormatJPEG,
		"photo.JPG":                FormatJPG,
		"a/b/c.webp":               FormatWEBP,
		"noext":                    "",
	}
	for path, want := range cases {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}
