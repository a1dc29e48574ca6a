// Package runner executes resize jobs one after another against the resize service.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/imgresize-client/internal/logger"
	"github.com/samvad-hq/imgresize-client/internal/storage"
	"github.com/samvad-hq/imgresize-client/pkg/httpclient"
	"github.com/samvad-hq/imgresize-client/pkg/jobs"
	"github.com/samvad-hq/imgresize-client/pkg/notifiers"
	"github.com/samvad-hq/imgresize-client/pkg/resize"
)

// TransportFactory resolves the transport that executes job.
type TransportFactory func(job jobs.Job) (resize.Transport, error)

// EventNotifier delivers job outcome events downstream.
type EventNotifier interface {
	Notify(ctx context.Context, evt notifiers.Event) (int, error)
}

// Service coordinates resize jobs, the completed-job ledger, and notifiers.
type Service struct {
	transports TransportFactory
	store      storage.Store
	notifier   EventNotifier
	log        logger.Logger
}

// Summary counts the outcome of a Run.
type Summary struct {
	Completed int
	Skipped   int
	Failed    int
}

// NewTransportFactory builds transports that talk to baseURL through client.
func NewTransportFactory(client httpclient.Client, baseURL string, log logger.Logger) TransportFactory {
	return func(job jobs.Job) (resize.Transport, error) {
		mode, err := job.ResizeMode()
		if err != nil {
			return nil, err
		}
		opts := []resize.Option{resize.WithQuality(job.Quality)}
		if log != nil {
			opts = append(opts, resize.WithLogger(log))
		}
		return resize.NewTransport(mode, client, baseURL, opts...)
	}
}

// NewService wires a runner. A nil store or notifier disables that concern.
func NewService(transports TransportFactory, store storage.Store, notifier EventNotifier, log logger.Logger) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	if store == nil {
		store, _ = storage.NewStore(storage.TypeNone, "", storage.Options{})
	}
	return &Service{
		transports: transports,
		store:      store,
		notifier:   notifier,
		log:        log,
	}
}

// Run executes jobs in order. Failed jobs do not stop the pass; their errors are joined.
func (s *Service) Run(ctx context.Context, list []jobs.Job) error {
	_, err := s.RunWithSummary(ctx, list)
	return err
}

// RunWithSummary is Run that also reports per-outcome counts.
func (s *Service) RunWithSummary(ctx context.Context, list []jobs.Job) (Summary, error) {
	var sum Summary
	if s == nil || s.transports == nil {
		return sum, fmt.Errorf("runner service is not initialized")
	}
	if len(list) == 0 {
		return sum, fmt.Errorf("no jobs configured")
	}

	var errs []error
	for _, job := range list {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		skipped, err := s.runJob(ctx, job)
		switch {
		case err != nil:
			sum.Failed++
			errs = append(errs, err)
			s.log.ErrorObj("resize job failed", "job_error", map[string]any{
				"job_id": job.ID,
				"error":  err.Error(),
			})
		case skipped:
			sum.Skipped++
		default:
			sum.Completed++
		}
	}

	s.log.InfoObj("resize pass finished", "run_summary", sum)
	return sum, errors.Join(errs...)
}

func (s *Service) runJob(ctx context.Context, job jobs.Job) (bool, error) {
	fp := job.Fingerprint()
	done, err := s.store.Completed(fp)
	if err != nil {
		s.log.WarnObj("ledger lookup failed; running job", "ledger_error", map[string]any{
			"job_id": job.ID,
			"error":  err.Error(),
		})
	}
	if done {
		s.log.DebugObj("resize job already completed", "job_skipped", map[string]any{
			"job_id":      job.ID,
			"fingerprint": fp,
		})
		return true, nil
	}

	transport, err := s.transports(job)
	if err != nil {
		err = fmt.Errorf("job %s: resolve transport: %w", job.ID, err)
		s.notify(ctx, notifiers.NewFailedEvent(job, err))
		return false, err
	}

	if err := transport.Resize(ctx, job.Source, job.Destination, job.Parameters()); err != nil {
		s.notify(ctx, notifiers.NewFailedEvent(job, err))
		return false, fmt.Errorf("job %s: %w", job.ID, err)
	}

	if err := s.store.MarkCompleted(fp, job.ID); err != nil {
		s.log.WarnObj("ledger update failed", "ledger_error", map[string]any{
			"job_id": job.ID,
			"error":  err.Error(),
		})
	}
	s.log.InfoObj("resize job completed", "job_result", map[string]any{
		"job_id":      job.ID,
		"mode":        job.Mode,
		"destination": job.Destination,
	})
	s.notify(ctx, notifiers.NewCompletedEvent(job))
	return false, nil
}

func (s *Service) notify(ctx context.Context, evt notifiers.Event) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Notify(ctx, evt); err != nil {
		s.log.WarnObj("event notification failed", "notify_error", map[string]any{
			"job_id": evt.JobID,
			"event":  evt.Type,
			"error":  err.Error(),
		})
	}
}
