package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/samvad-hq/imgresize-client/pkg/resize"
	"gopkg.in/yaml.v3"
)

// configFile represents the structure of the jobs file.
type configFile struct {
	Jobs []Job `json:"jobs" yaml:"jobs"`
}

// Registry materializes job definitions loaded from a jobs file.
type Registry struct {
	mu   sync.RWMutex
	jobs []Job
	idx  map[string]Job
}

// LoadRegistry loads the jobs registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("jobs file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jobs file: %w", err)
	}

	file, err := parseJobsFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return NewRegistry(file.Jobs)
}

// NewRegistry validates jobs and indexes them by id, keeping file order.
func NewRegistry(jobs []Job) (*Registry, error) {
	if len(jobs) == 0 {
		return nil, errors.New("jobs file contains no jobs entries")
	}

	validate := validator.New()
	reg := &Registry{
		jobs: make([]Job, len(jobs)),
		idx:  make(map[string]Job, len(jobs)),
	}
	for i := range jobs {
		job := sanitizeJob(jobs[i])
		if err := validate.Struct(job); err != nil {
			return nil, fmt.Errorf("jobs[%d]: %w", i, describeValidation(job.ID, err))
		}
		if _, exists := reg.idx[job.ID]; exists {
			return nil, fmt.Errorf("duplicate job id %q", job.ID)
		}
		reg.jobs[i] = job
		reg.idx[job.ID] = job
	}
	return reg, nil
}

// parseJobsFile decodes the jobs file content, choosing the decoder by extension.
func parseJobsFile(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var file configFile
		if err := d.fn(data, &file); err == nil {
			return file, nil
		}
	}

	return configFile{}, errors.New("jobs file format not recognized (expected YAML or JSON)")
}

// sanitizeJob trims fields and fills the upload extension from the destination path.
func sanitizeJob(job Job) Job {
	job.ID = strings.TrimSpace(job.ID)
	job.Mode = strings.ToLower(strings.TrimSpace(job.Mode))
	job.Source = strings.TrimSpace(job.Source)
	job.Destination = strings.TrimSpace(job.Destination)
	job.Extension = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(job.Extension), "."))

	if job.Mode == "" {
		job.Mode = string(resize.ModeUpload)
	}
	if job.Extension == "" && job.Mode == string(resize.ModeUpload) {
		job.Extension = string(resize.FormatFromPath(job.Destination))
	}
	if job.Enabled == nil {
		def := true
		job.Enabled = &def
	}
	return job
}

func describeValidation(id string, err error) error {
	var valErrors validator.ValidationErrors
	if !errors.As(err, &valErrors) {
		return err
	}
	msgs := make([]string, 0, len(valErrors))
	for _, fe := range valErrors {
		msgs = append(msgs, fmt.Sprintf("field %s failed on the '%s' tag", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("job %q: %s", id, strings.Join(msgs, "; "))
}

// ByID returns the job by id.
func (r *Registry) ByID(id string) (Job, bool) {
	if r == nil {
		return Job{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return Job{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.idx[id]
	return job, ok
}

// All returns all configured jobs in file order.
func (r *Registry) All() []Job {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Job, len(r.jobs))
	copy(out, r.jobs)
	return out
}

// Enabled returns jobs that are enabled.
func (r *Registry) Enabled() []Job {
	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]Job, 0, len(all))
	for _, job := range all {
		if job.EnabledValue() {
			out = append(out, job)
		}
	}
	return out
}
