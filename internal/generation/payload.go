package generation

// Model input shapes for the Nova family. Field names follow the
// provider's JSON contract.

type videoModelInput struct {
	TaskType              string                `json:"taskType"`
	TextToVideoParams     *textToVideoParams    `json:"textToVideoParams,omitempty"`
	ImageToVideoParams    *imageToVideoParams   `json:"imageToVideoParams,omitempty"`
	VideoGenerationConfig videoGenerationConfig `json:"videoGenerationConfig"`
}

type textToVideoParams struct {
	Text string `json:"text"`
}

type imageToVideoParams struct {
	Text   string   `json:"text"`
	Images []string `json:"images"`
}

type videoGenerationConfig struct {
	FPS             int    `json:"fps"`
	DurationSeconds int    `json:"durationSeconds"`
	Dimension       string `json:"dimension"`
	Seed            int    `json:"seed"`
}

type imageModelInput struct {
	TaskType              string                `json:"taskType"`
	TextToImageParams     textToImageParams     `json:"textToImageParams"`
	ImageGenerationConfig imageGenerationConfig `json:"imageGenerationConfig"`
}

type textToImageParams struct {
	Text         string `json:"text"`
	NegativeText string `json:"negativeText,omitempty"`
}

type imageGenerationConfig struct {
	NumberOfImages int     `json:"numberOfImages"`
	Quality        string  `json:"quality"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	CfgScale       float64 `json:"cfgScale"`
	Seed           int     `json:"seed"`
}

// dimensionFor maps an aspect ratio to the provider's video dimension
// string. Unknown or empty ratios fall back to landscape.
func dimensionFor(aspectRatio string) string {
	switch aspectRatio {
	case "16:9":
		return "1280x720"
	case "9:16":
		return "720x1280"
	case "1:1":
		return "1024x1024"
	default:
		return "1280x720"
	}
}
