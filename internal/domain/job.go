package domain

import "time"

// Job is the transient, process-local record of one in-flight generation.
// It lives only in the job registry; nothing about it survives a restart.
//
// InvocationARN is set once when the provider accepts the request and never
// changes afterwards. Exactly one of MediaURL/Error is populated once the
// status leaves processing.
type Job struct {
	ID            string
	Kind          GenerationKind
	Status        GenerationStatus
	Progress      int
	InvocationARN string
	MediaURL      string
	MediaType     string
	Metadata      map[string]any
	Error         string
	CreatedAt     time.Time
}
