package domain

// GenerationKind enumerates supported generation request types.
type GenerationKind string

const (
	KindTextToVideo  GenerationKind = "text-to-video"
	KindImageToVideo GenerationKind = "image-to-video"
	KindTextToImage  GenerationKind = "text-to-image"
)

// Valid reports whether the kind is one of the supported request types.
func (k GenerationKind) Valid() bool {
	switch k {
	case KindTextToVideo, KindImageToVideo, KindTextToImage:
		return true
	}
	return false
}

// GenerationStatus enumerates job lifecycle states. Completed and failed
// are terminal.
type GenerationStatus string

const (
	StatusProcessing GenerationStatus = "processing"
	StatusCompleted  GenerationStatus = "completed"
	StatusFailed     GenerationStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s GenerationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// GenerationParams carries the optional knobs accepted by the generate
// endpoints. Video requests use Duration and AspectRatio; image requests
// use Width, Height and CfgScale. Quality applies to both.
type GenerationParams struct {
	Duration    int     `json:"duration,omitempty"`
	AspectRatio string  `json:"aspectRatio,omitempty"`
	Quality     string  `json:"quality,omitempty"`
	Width       int     `json:"width,omitempty"`
	Height      int     `json:"height,omitempty"`
	CfgScale    float64 `json:"cfgScale,omitempty"`
}

// GenerationResult is the immediate response to a generate request. Async
// video requests return only JobID and a processing status; the
// synchronous image path fills in the media fields.
type GenerationResult struct {
	JobID     string           `json:"jobId"`
	Status    GenerationStatus `json:"status"`
	MediaURL  string           `json:"mediaUrl,omitempty"`
	MediaType string           `json:"mediaType,omitempty"`
	Metadata  map[string]any   `json:"metadata,omitempty"`
}
