// Command resize sends a single image to the resize service.
//
//	resize [--service-url URL] [--timeout 30s] upload --width W --height H [--extension E] SRC DST
//	resize [--service-url URL] [--timeout 30s] command --width W --height H [--quality Q] SRC DST
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samvad-hq/imgresize-client/internal/config"
	"github.com/samvad-hq/imgresize-client/internal/logger"
	"github.com/samvad-hq/imgresize-client/pkg/httpclient"
	"github.com/samvad-hq/imgresize-client/pkg/resize"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

type request struct {
	mode        resize.Mode
	source      string
	destination string
	params      resize.Parameters
	quality     int
	timeout     time.Duration
	timeoutSet  bool
	globalFlags *pflag.FlagSet
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	req, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.LoadWithFlags(req.globalFlags)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if req.timeoutSet {
		cfg.RequestTimeout = req.timeout
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	client := httpclient.NewRestyClient(cfg.RequestTimeout)
	transport, err := resize.NewTransport(req.mode, client, cfg.ServiceURL,
		resize.WithLogger(log),
		resize.WithQuality(req.quality),
	)
	if err != nil {
		return err
	}

	// The returned error text is the service diagnostic when the service refused.
	return transport.Resize(ctx, req.source, req.destination, req.params)
}

func parseArgs(args []string, stderr io.Writer) (request, error) {
	var req request

	global := pflag.NewFlagSet("resize", pflag.ContinueOnError)
	global.SetOutput(stderr)
	global.SetInterspersed(false)
	global.String("service-url", "", "base URL of the resize service (default from SERVICE_URL)")
	global.String("log-level", "", "log level (debug, info, warn, error)")
	timeout := global.Duration("timeout", 0, "per-request deadline; 0 disables it (default from REQUEST_TIMEOUT_SECONDS)")
	if err := global.Parse(args); err != nil {
		return req, err
	}

	rest := global.Args()
	if len(rest) == 0 {
		return req, errors.New("usage: resize [flags] upload|command --width W --height H SRC DST")
	}
	mode, err := resize.ParseMode(rest[0])
	if err != nil {
		return req, err
	}

	sub := pflag.NewFlagSet(string(mode), pflag.ContinueOnError)
	sub.SetOutput(stderr)
	width := sub.Int("width", 0, "target width in pixels")
	height := sub.Int("height", 0, "target height in pixels")
	var extension *string
	var quality *int
	if mode == resize.ModeUpload {
		extension = sub.String("extension", "", "output format token (default from DST extension)")
	} else {
		quality = sub.Int("quality", 0, "output quality; 0 leaves it to the service")
	}
	if err := sub.Parse(rest[1:]); err != nil {
		return req, err
	}
	if sub.NArg() != 2 {
		return req, fmt.Errorf("%s requires SRC and DST", mode)
	}

	req.mode = mode
	req.source = sub.Arg(0)
	req.destination = sub.Arg(1)
	req.params = resize.Parameters{Width: *width, Height: *height}
	if extension != nil {
		req.params.Extension = resize.Format(*extension)
		if req.params.Extension == "" {
			req.params.Extension = resize.FormatFromPath(req.destination)
		}
	}
	if quality != nil {
		req.quality = *quality
	}
	req.timeout = *timeout
	req.timeoutSet = global.Changed("timeout")

	// only service-url and log-level map onto config keys
	req.globalFlags = pflag.NewFlagSet("config", pflag.ContinueOnError)
	for _, name := range []string{"service-url", "log-level"} {
		if global.Changed(name) {
			req.globalFlags.AddFlag(global.Lookup(name))
		}
	}
	return req, nil
}
