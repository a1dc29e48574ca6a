// Package storage keeps the local ledger of completed resize jobs.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Store records which job fingerprints already completed so reruns can skip them.
type Store interface {
	Close() error
	Completed(fingerprint string) (bool, error)
	MarkCompleted(fingerprint, jobID string) error
	Forget(fingerprint string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	JobTTL          time.Duration
	CleanupInterval time.Duration
}

// Supported store types.
const (
	TypeNone  = "none"
	TypeBBolt = "bbolt"
)

const (
	defaultJobTTL          = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.JobTTL <= 0 {
		opts.JobTTL = defaultJobTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                       { return nil }
func (noopStore) Completed(string) (bool, error)     { return false, nil }
func (noopStore) MarkCompleted(string, string) error { return nil }
func (noopStore) Forget(string) error                { return nil }
