package domain

import "time"

// HistoryRecord is the durable row describing one completed generation.
// Its ID is minted at insert time and is unrelated to the transient job ID.
type HistoryRecord struct {
	ID            string           `json:"id"`
	Kind          GenerationKind   `json:"type"`
	Prompt        string           `json:"prompt"`
	SourceFileURL string           `json:"sourceFileUrl,omitempty"`
	MediaURL      string           `json:"mediaUrl"`
	MediaType     string           `json:"mediaType"`
	Status        GenerationStatus `json:"status"`
	ErrorMessage  string           `json:"errorMessage,omitempty"`
	Metadata      map[string]any   `json:"metadata,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// SaveGenerationInput carries the fields persisted for a finished request.
type SaveGenerationInput struct {
	Kind           GenerationKind
	Prompt         string
	SourceFilePath string
	MediaFilePath  string
	MediaType      string
	Status         GenerationStatus
	ErrorMessage   string
	Metadata       map[string]any
}
