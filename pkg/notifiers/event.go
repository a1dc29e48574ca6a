package notifiers

import (
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/imgresize-client/pkg/jobs"
)

// Event types emitted by the batch runner.
const (
	EventResizeCompleted = "resize.completed"
	EventResizeFailed    = "resize.failed"
)

// Event represents the payload sent downstream once a job settles.
type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	JobID       string    `json:"job_id"`
	Mode        string    `json:"mode"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Extension   string    `json:"extension,omitempty"`
	Error       string    `json:"error,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewCompletedEvent constructs a resize.completed event for job.
func NewCompletedEvent(job jobs.Job) Event {
	return newEvent(EventResizeCompleted, job)
}

// NewFailedEvent constructs a resize.failed event carrying the failure text.
func NewFailedEvent(job jobs.Job, cause error) Event {
	evt := newEvent(EventResizeFailed, job)
	if cause != nil {
		evt.Error = cause.Error()
	}
	return evt
}

func newEvent(typ string, job jobs.Job) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        typ,
		JobID:       job.ID,
		Mode:        job.Mode,
		Source:      job.Source,
		Destination: job.Destination,
		Width:       job.Width,
		Height:      job.Height,
		Extension:   job.Extension,
		OccurredAt:  time.Now().UTC(),
	}
}

// attributes are attached to broker messages so subscribers can filter without decoding.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_type": e.Type,
		"job_id":     e.JobID,
	}
}
