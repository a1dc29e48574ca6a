package runner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/samvad-hq/imgresize-client/pkg/jobs"
	"github.com/samvad-hq/imgresize-client/pkg/notifiers"
	"github.com/samvad-hq/imgresize-client/pkg/resize"
)

// fakeTransport records calls and fails for configured sources.
type fakeTransport struct {
	mode   resize.Mode
	failOn map[string]error
	calls  *[]string
}

func (f *fakeTransport) Mode() resize.Mode { return f.mode }
func (f *fakeTransport) Resize(_ context.Context, src, _ string, _ resize.Parameters) error {
	*f.calls = append(*f.calls, src)
	return f.failOn[src]
}

func fakeFactory(calls *[]string, failOn map[string]error) TransportFactory {
	return func(job jobs.Job) (resize.Transport, error) {
		mode, err := job.ResizeMode()
		if err != nil {
			return nil, err
		}
		return &fakeTransport{mode: mode, failOn: failOn, calls: calls}, nil
	}
}

// fakeStore is an in-memory ledger.
type fakeStore struct {
	mu      sync.Mutex
	done    map[string]string
	lookErr error
}

func newFakeStore() *fakeStore { return &fakeStore{done: map[string]string{}} }

func (f *fakeStore) Close() error { return nil }
func (f *fakeStore) Completed(fp string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookErr != nil {
		return false, f.lookErr
	}
	_, ok := f.done[fp]
	return ok, nil
}
func (f *fakeStore) MarkCompleted(fp, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.done[fp] = id
	return nil
}
func (f *fakeStore) Forget(fp string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.done, fp)
	return nil
}

// fakeNotifier records events and can inject errors.
type fakeNotifier struct {
	events []notifiers.Event
	err    error
}

func (f *fakeNotifier) Notify(_ context.Context, evt notifiers.Event) (int, error) {
	f.events = append(f.events, evt)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

func job(id, mode, src string) jobs.Job {
	return jobs.Job{ID: id, Mode: mode, Source: src, Destination: src + ".out", Width: 10, Height: 10, Extension: "png"}
}

func TestRunExecutesJobsInOrderAndMarksLedger(t *testing.T) {
	var calls []string
	store := newFakeStore()
	notifier := &fakeNotifier{}
	svc := NewService(fakeFactory(&calls, nil), store, notifier, nil)

	list := []jobs.Job{job("a", "upload", "a.png"), job("b", "command", "b.png")}
	sum, err := svc.RunWithSummary(context.Background(), list)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum != (Summary{Completed: 2}) {
		t.Fatalf("summary = %+v", sum)
	}
	if strings.Join(calls, ",") != "a.png,b.png" {
		t.Fatalf("calls = %v", calls)
	}
	if len(store.done) != 2 {
		t.Fatalf("ledger has %d entries", len(store.done))
	}
	if len(notifier.events) != 2 || notifier.events[0].Type != notifiers.EventResizeCompleted {
		t.Fatalf("events = %#v", notifier.events)
	}
}

func TestRunSkipsCompletedJobs(t *testing.T) {
	var calls []string
	store := newFakeStore()
	done := job("a", "upload", "a.png")
	_ = store.MarkCompleted(done.Fingerprint(), done.ID)

	svc := NewService(fakeFactory(&calls, nil), store, nil, nil)
	sum, err := svc.RunWithSummary(context.Background(), []jobs.Job{done, job("b", "upload", "b.png")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Skipped != 1 || sum.Completed != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if len(calls) != 1 || calls[0] != "b.png" {
		t.Fatalf("calls = %v", calls)
	}
}

func TestRunAggregatesFailuresAndContinues(t *testing.T) {
	var calls []string
	store := newFakeStore()
	notifier := &fakeNotifier{}
	diag := &resize.TransportError{StatusCode: 500, Diagnostic: "resize failed"}
	svc := NewService(fakeFactory(&calls, map[string]error{"a.png": diag}), store, notifier, nil)

	sum, err := svc.RunWithSummary(context.Background(), []jobs.Job{job("a", "command", "a.png"), job("b", "command", "b.png")})
	if err == nil {
		t.Fatalf("expected error")
	}
	var te *resize.TransportError
	if !errors.As(err, &te) || te.Diagnostic != "resize failed" {
		t.Fatalf("transport error not preserved: %v", err)
	}
	if sum.Failed != 1 || sum.Completed != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if len(store.done) != 1 {
		t.Fatalf("failed job must not be marked completed")
	}
	if notifier.events[0].Type != notifiers.EventResizeFailed || notifier.events[0].Error != "resize failed" {
		t.Fatalf("failed event = %#v", notifier.events[0])
	}
}

func TestRunNotificationFailureDoesNotFailJob(t *testing.T) {
	var calls []string
	svc := NewService(fakeFactory(&calls, nil), newFakeStore(), &fakeNotifier{err: errors.New("down")}, nil)
	if err := svc.Run(context.Background(), []jobs.Job{job("a", "upload", "a.png")}); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunLedgerLookupErrorStillRuns(t *testing.T) {
	var calls []string
	store := newFakeStore()
	store.lookErr = errors.New("disk")
	svc := NewService(fakeFactory(&calls, nil), store, nil, nil)
	if err := svc.Run(context.Background(), []jobs.Job{job("a", "upload", "a.png")}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("job should run when ledger is unavailable")
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	var calls []string
	svc := NewService(fakeFactory(&calls, nil), nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.Run(ctx, []jobs.Job{job("a", "upload", "a.png")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("no job should run after cancellation")
	}
}

func TestRunRejectsEmptyInput(t *testing.T) {
	var calls []string
	if err := NewService(fakeFactory(&calls, nil), nil, nil, nil).Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty job list")
	}
	var nilSvc *Service
	if err := nilSvc.Run(context.Background(), []jobs.Job{job("a", "upload", "a")}); err == nil {
		t.Fatalf("expected error for nil service")
	}
}

func TestTransportFactoryResolvesMode(t *testing.T) {
	factory := NewTransportFactory(nil, "http://localhost:3000", nil)
	_, err := factory(job("a", "upload", "a.png"))
	if err == nil {
		t.Fatalf("nil client should be rejected")
	}
	if _, err := factory(job("a", "ftp", "a.png")); err == nil {
		t.Fatalf("unknown mode should be rejected")
	}
}
