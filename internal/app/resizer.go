package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/imgresize-client/internal/config"
	"github.com/samvad-hq/imgresize-client/internal/logger"
	"github.com/samvad-hq/imgresize-client/internal/runner"
	"github.com/samvad-hq/imgresize-client/internal/storage"
	"github.com/samvad-hq/imgresize-client/pkg/httpclient"
	"github.com/samvad-hq/imgresize-client/pkg/jobs"
	"github.com/samvad-hq/imgresize-client/pkg/notifiers"
)

// Resizer is the batch runtime. It loads the jobs file, opens the completed-job
// ledger, builds notifiers, and drives the runner once or on an interval.
type Resizer struct {
	cfg         *config.Config
	jobReg      *jobs.Registry
	fanout      *notifiers.Fanout
	service     *runner.Service
	runInterval time.Duration
	log         logger.Logger
	store       storage.Store
}

// NewResizer builds a resizer runtime from config files.
func NewResizer(ctx context.Context, cfg *config.Config, log logger.Logger) (*Resizer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	jobReg, err := jobs.LoadRegistry(cfg.JobsFile)
	if err != nil {
		return nil, fmt.Errorf("load jobs registry: %w", err)
	}
	jobList := jobReg.All()
	jobIDs := make([]string, 0, len(jobList))
	for _, j := range jobList {
		jobIDs = append(jobIDs, j.ID)
	}
	log.InfoObj("jobs registry loaded", "jobs_meta", map[string]any{
		"count":   len(jobIDs),
		"enabled": len(jobReg.Enabled()),
		"ids":     jobIDs,
	})

	fanout, err := buildFanout(ctx, cfg.NotifiersFile, log)
	if err != nil {
		return nil, err
	}

	storeOpts := storage.Options{
		JobTTL:          cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"job_ttl_seconds":          int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	client := httpclient.NewRestyClient(cfg.RequestTimeout)
	factory := runner.NewTransportFactory(client, cfg.ServiceURL, log)

	return &Resizer{
		cfg:         cfg,
		jobReg:      jobReg,
		fanout:      fanout,
		service:     runner.NewService(factory, store, fanout, log),
		runInterval: cfg.RunInterval,
		log:         log,
		store:       store,
	}, nil
}

// buildFanout returns an empty fanout when no notifiers file is configured.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*notifiers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		log.InfoObj("no notifiers configured", "notifiers_meta", map[string]any{"count": 0})
		return notifiers.NewFanout(nil), nil
	}

	cfgReg, err := notifiers.LoadConfigRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load notifiers registry: %w", err)
	}
	enabled := cfgReg.Enabled()
	built, err := notifiers.BuildAll(ctx, notifiers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build notifiers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	log.InfoObj("notifiers registry loaded", "notifiers_meta", map[string]any{
		"count":     len(summaries),
		"notifiers": summaries,
	})
	return notifiers.NewFanout(built), nil
}

// Run executes one pass over the enabled jobs. With a run interval it keeps
// repeating until the context is cancelled, logging failed passes.
func (r *Resizer) Run(ctx context.Context) error {
	if r == nil || r.service == nil {
		return fmt.Errorf("resizer is not initialized")
	}
	defer r.close()

	enabled := r.jobReg.Enabled()
	if len(enabled) == 0 {
		r.log.WarnObj("no enabled jobs; nothing to do", "jobs_file", r.cfg.JobsFile)
		return nil
	}

	if r.runInterval <= 0 {
		return r.runOnce(ctx, enabled)
	}

	r.log.InfoObj("resizer loop starting", "resizer_state", map[string]any{
		"jobs_count":      len(enabled),
		"notifiers_count": r.fanout.Size(),
		"run_interval":    r.runInterval.String(),
	})

	if err := r.runOnce(ctx, enabled); err != nil {
		r.log.ErrorObj("initial pass failed", "error", err)
	}

	ticker := time.NewTicker(r.runInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.InfoObj("resizer loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := r.runOnce(ctx, enabled); err != nil {
				r.log.ErrorObj("scheduled pass failed", "error", err)
			}
		}
	}
}

func (r *Resizer) runOnce(ctx context.Context, list []jobs.Job) error {
	start := time.Now()
	r.log.InfoObj("resize pass started", "pass_meta", map[string]any{
		"jobs_count": len(list),
		"started_at": start.UTC(),
	})
	if err := r.service.Run(ctx, list); err != nil {
		return err
	}
	r.log.InfoObj("resize pass completed", "pass_meta", map[string]any{
		"jobs_count": len(list),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

// close releases the ledger and notifier connections, logging any errors encountered.
func (r *Resizer) close() {
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.log.ErrorObj("storage close failed", "error", err)
		}
	}
	if err := r.fanout.Close(); err != nil {
		r.log.ErrorObj("notifiers close failed", "error", err)
	}
}
