package resize

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error { b.closed = true; return nil }

func TestIsSuccess(t *testing.T) {
	cases := map[int]bool{
		199: false,
		200: true,
		204: true,
		299: true,
		302: false,
		400: false,
		500: false,
	}
	for status, want := range cases {
		if got := IsSuccess(status); got != want {
			t.Errorf("IsSuccess(%d) = %v, want %v", status, got, want)
		}
	}
}

func TestCheckResponseReadsDiagnosticBeforeClose(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader("  resize failed\n")}
	err := CheckResponse(&stubResponse{status: http.StatusBadGateway, body: body})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err.Error() != "  resize failed\n" {
		t.Fatalf("diagnostic altered: %q", err.Error())
	}
	if !body.closed {
		t.Fatalf("failure body not closed")
	}
}

func TestCheckResponseSuccessLeavesBodyOpen(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader("image")}
	if err := CheckResponse(&stubResponse{status: http.StatusOK, body: body}); err != nil {
		t.Fatalf("CheckResponse: %v", err)
	}
	if body.closed {
		t.Fatalf("success body closed by validation")
	}
}

func TestTransportErrorEmptyDiagnostic(t *testing.T) {
	err := CheckResponse(&stubResponse{status: http.StatusNotFound, body: &trackingBody{Reader: strings.NewReader("")}})
	if got := err.Error(); got != "resize service returned Not Found" {
		t.Fatalf("Error() = %q", got)
	}
}
