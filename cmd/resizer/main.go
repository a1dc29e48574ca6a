package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/imgresize-client/internal/app"
	"github.com/samvad-hq/imgresize-client/internal/config"
	"github.com/samvad-hq/imgresize-client/internal/logger"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "resizer failed: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("resizer", pflag.ContinueOnError)
	flags.String("jobs-file", "", "path to the jobs file (YAML or JSON)")
	flags.String("notifiers-file", "", "path to the notifiers file (YAML or JSON)")
	flags.String("service-url", "", "base URL of the resize service")
	flags.Int64("run-interval", 0, "seconds between passes; 0 runs once")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadWithFlags(changedOnly(flags))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("resizer starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resizer, err := app.NewResizer(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize resizer", "error", err)
		return err
	}

	if err := resizer.Run(ctx); err != nil {
		return fmt.Errorf("resizer run: %w", err)
	}
	return nil
}

// changedOnly keeps flags the user set so unset ones do not mask env or defaults.
func changedOnly(flags *pflag.FlagSet) *pflag.FlagSet {
	out := pflag.NewFlagSet(flags.Name(), pflag.ContinueOnError)
	flags.Visit(func(f *pflag.Flag) { out.AddFlag(f) })
	return out
}
