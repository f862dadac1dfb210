package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrNoQueuedJobs        = errors.New("no jobs in queue")
	ErrProviderUnavailable = errors.New("provider not configured")
	ErrUnknownJobType      = errors.New("unknown job type")
	ErrStoreUnreachable    = errors.New("job store unreachable")
)
