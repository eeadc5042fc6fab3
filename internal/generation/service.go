// Package generation orchestrates media generation requests: prompt
// validation and enhancement, provider submission, the background polling
// loop for async video jobs, result materialization, and history
// recording.
package generation

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/jobs"
	"server/internal/providers/bedrock"
	"server/internal/providers/prompt"
	"server/internal/storage"
)

const (
	videoModelID = "amazon.nova-reel-v1:0"
	imageModelID = "amazon.nova-canvas-v1:0"

	maxSeed = 2147483646

	timeoutMessage = "Generation timed out. Please try again with a simpler prompt."

	mediaURLPrefix = "/api/media/"
)

// ModelInvoker is the provider contract the orchestrator depends on.
type ModelInvoker interface {
	InvokeModel(ctx context.Context, modelID string, payload any) ([]byte, error)
	StartAsyncInvoke(ctx context.Context, modelID string, payload any, outputS3URI string) (string, error)
	GetAsyncInvoke(ctx context.Context, invocationArn string) (*bedrock.AsyncInvokeStatus, error)
}

// AssetDownloader materializes a completed remote result locally.
type AssetDownloader interface {
	Download(ctx context.Context, s3URI, subdir, filename string) (string, error)
}

// HistoryRecorder appends one durable record per completed generation.
type HistoryRecorder interface {
	SaveGeneration(ctx context.Context, input domain.SaveGenerationInput) (string, error)
}

// Options wires the orchestrator's collaborators and tuning knobs.
type Options struct {
	Invoker    ModelInvoker
	Downloader AssetDownloader
	History    HistoryRecorder
	Registry   *jobs.Registry
	Store      *storage.FileStore
	Logger     infra.Logger

	OutputS3URI     string
	MaxPromptTokens int
	Timeout         time.Duration
	PollInterval    time.Duration
	MaxPollAttempts int
}

// Service drives the generation state machine for all three request kinds.
type Service struct {
	invoker    ModelInvoker
	downloader AssetDownloader
	history    HistoryRecorder
	registry   *jobs.Registry
	store      *storage.FileStore
	logger     infra.Logger

	outputS3URI     string
	maxPromptTokens int
	timeout         time.Duration
	pollInterval    time.Duration
	maxPollAttempts int
}

// NewService constructs the orchestrator, applying defaults for unset knobs.
func NewService(opts Options) *Service {
	s := &Service{
		invoker:         opts.Invoker,
		downloader:      opts.Downloader,
		history:         opts.History,
		registry:        opts.Registry,
		store:           opts.Store,
		logger:          opts.Logger,
		outputS3URI:     opts.OutputS3URI,
		maxPromptTokens: opts.MaxPromptTokens,
		timeout:         opts.Timeout,
		pollInterval:    opts.PollInterval,
		maxPollAttempts: opts.MaxPollAttempts,
	}
	if s.maxPromptTokens <= 0 {
		s.maxPromptTokens = 512
	}
	if s.timeout <= 0 {
		s.timeout = 5 * time.Minute
	}
	if s.pollInterval <= 0 {
		s.pollInterval = 15 * time.Second
	}
	if s.maxPollAttempts <= 0 {
		s.maxPollAttempts = 120
	}
	return s
}

// historyInfo carries the request fields echoed into the history row once
// the job completes.
type historyInfo struct {
	kind       domain.GenerationKind
	prompt     string
	sourcePath string
}

// TextToVideo validates the prompt and submits an async video job. The
// returned result carries only the job ID; completion is observed through
// JobStatus.
func (s *Service) TextToVideo(ctx context.Context, rawPrompt string, params domain.GenerationParams) (*domain.GenerationResult, error) {
	cleaned, err := s.validatePrompt(rawPrompt)
	if err != nil {
		return nil, err
	}

	enhanced := prompt.Enhance(cleaned, prompt.Options{
		Style:     prompt.StyleCinematic,
		Quality:   qualityOrDefault(params.Quality),
		MediaKind: "video",
	})
	input := videoModelInput{
		TaskType:          "TEXT_VIDEO",
		TextToVideoParams: &textToVideoParams{Text: enhanced},
		VideoGenerationConfig: videoGenerationConfig{
			FPS:             24,
			DurationSeconds: durationOrDefault(params.Duration),
			Dimension:       dimensionFor(params.AspectRatio),
			Seed:            rand.Intn(maxSeed),
		},
	}

	jobID := s.registry.Create(domain.KindTextToVideo)
	s.registry.ArmTimeout(jobID, s.timeout, timeoutMessage)
	s.logger.Info().Str("job_id", jobID).Str("dimension", input.VideoGenerationConfig.Dimension).
		Msg("generation: text-to-video submitted")

	go s.runVideoJob(context.WithoutCancel(ctx), jobID, input, historyInfo{
		kind:   domain.KindTextToVideo,
		prompt: rawPrompt,
	})

	return &domain.GenerationResult{JobID: jobID, Status: domain.StatusProcessing}, nil
}

// ImageToVideo validates the prompt and submits an async video job seeded
// with the uploaded image. sourcePath is recorded in history on completion.
func (s *Service) ImageToVideo(ctx context.Context, image []byte, sourcePath, rawPrompt string, params domain.GenerationParams) (*domain.GenerationResult, error) {
	cleaned, err := s.validatePrompt(rawPrompt)
	if err != nil {
		return nil, err
	}

	enhanced := prompt.Enhance(cleaned, prompt.Options{
		Style:     prompt.StyleCinematic,
		Quality:   qualityOrDefault(params.Quality),
		MediaKind: "video",
	})
	input := videoModelInput{
		TaskType: "IMAGE_VIDEO",
		ImageToVideoParams: &imageToVideoParams{
			Text:   enhanced,
			Images: []string{base64.StdEncoding.EncodeToString(image)},
		},
		VideoGenerationConfig: videoGenerationConfig{
			FPS:             24,
			DurationSeconds: durationOrDefault(params.Duration),
			Dimension:       dimensionFor(params.AspectRatio),
			Seed:            rand.Intn(maxSeed),
		},
	}

	jobID := s.registry.Create(domain.KindImageToVideo)
	s.registry.ArmTimeout(jobID, s.timeout, timeoutMessage)
	s.logger.Info().Str("job_id", jobID).Int("image_bytes", len(image)).
		Msg("generation: image-to-video submitted")

	go s.runVideoJob(context.WithoutCancel(ctx), jobID, input, historyInfo{
		kind:       domain.KindImageToVideo,
		prompt:     rawPrompt,
		sourcePath: sourcePath,
	})

	return &domain.GenerationResult{JobID: jobID, Status: domain.StatusProcessing}, nil
}

// TextToImage performs a synchronous generation: the model is invoked
// inline and the caller receives the completed result directly.
func (s *Service) TextToImage(ctx context.Context, rawPrompt string, params domain.GenerationParams) (*domain.GenerationResult, error) {
	cleaned, err := s.validatePrompt(rawPrompt)
	if err != nil {
		return nil, err
	}

	enhanced := prompt.Enhance(cleaned, prompt.Options{
		Style:     prompt.StylePhotorealistic,
		Quality:   qualityOrDefault(params.Quality),
		MediaKind: "image",
	})
	seed := rand.Intn(maxSeed)
	input := imageModelInput{
		TaskType: "TEXT_IMAGE",
		TextToImageParams: textToImageParams{
			Text:         enhanced,
			NegativeText: prompt.NegativePrompt(),
		},
		ImageGenerationConfig: imageGenerationConfig{
			NumberOfImages: 1,
			Quality:        qualityOrDefault(params.Quality),
			Height:         sizeOrDefault(params.Height),
			Width:          sizeOrDefault(params.Width),
			CfgScale:       cfgScaleOrDefault(params.CfgScale),
			Seed:           seed,
		},
	}

	jobID := s.registry.Create(domain.KindTextToImage)

	result, err := s.generateImage(ctx, jobID, input)
	if err != nil {
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("generation: text-to-image failed")
		s.registry.Fail(jobID, failureMessage(err))
		return nil, err
	}

	metadata := map[string]any{"model": imageModelID, "seed": seed}
	s.registry.Complete(jobID, result.url, "image/png", metadata)
	s.recordHistory(ctx, historyInfo{kind: domain.KindTextToImage, prompt: rawPrompt},
		result.localPath, "image/png", metadata)

	return &domain.GenerationResult{
		JobID:     jobID,
		Status:    domain.StatusCompleted,
		MediaURL:  result.url,
		MediaType: "image/png",
		Metadata:  metadata,
	}, nil
}

// JobStatus reports the current state of a tracked job.
func (s *Service) JobStatus(jobID string) (*domain.Job, error) {
	job, ok := s.registry.Get(jobID)
	if !ok {
		return nil, domain.NewNotFound("Job not found: " + jobID)
	}
	return &job, nil
}

func (s *Service) validatePrompt(rawPrompt string) (string, error) {
	cleaned, err := prompt.ValidateAndClean(rawPrompt)
	if err != nil {
		return "", err
	}
	if err := prompt.ValidateTokens(cleaned, s.maxPromptTokens); err != nil {
		return "", err
	}
	return cleaned, nil
}

// runVideoJob is the detached background task owning one async job. Any
// failure is captured into the job's failure reason; nothing escapes to
// the HTTP layer.
func (s *Service) runVideoJob(ctx context.Context, jobID string, input videoModelInput, rec historyInfo) {
	if err := s.processVideo(ctx, jobID, input, rec); err != nil {
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("generation: video job failed")
		s.registry.Fail(jobID, failureMessage(err))
	}
}

func (s *Service) processVideo(ctx context.Context, jobID string, input videoModelInput, rec historyInfo) error {
	invocationArn, err := s.invoker.StartAsyncInvoke(ctx, videoModelID, input, s.outputS3URI)
	if err != nil {
		return err
	}
	s.registry.SetInvocation(jobID, invocationArn)
	s.logger.Debug().Str("job_id", jobID).Str("invocation_arn", invocationArn).
		Msg("generation: async invocation started")

	for attempts := 1; attempts <= s.maxPollAttempts; attempts++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.pollInterval):
		}

		status, err := s.invoker.GetAsyncInvoke(ctx, invocationArn)
		if err != nil {
			return err
		}
		switch status.Status {
		case bedrock.AsyncStatusCompleted:
			return s.finishVideo(ctx, jobID, status.OutputS3URI, rec)
		case bedrock.AsyncStatusFailed:
			msg := status.FailureMessage
			if msg == "" {
				msg = "Video generation failed"
			}
			return &domain.Error{Code: domain.CodeGenerationFailed, Message: msg}
		}
		s.registry.SetProgress(jobID, min(90, attempts*2))
	}
	return &domain.Error{Code: domain.CodeModelTimeout, Message: "Job polling timed out", Retryable: true}
}

// finishVideo materializes the result and flips the job to completed. If
// the deadline timeout won the race in the meantime, the late result is
// discarded.
func (s *Service) finishVideo(ctx context.Context, jobID, outputS3URI string, rec historyInfo) error {
	videoURI := strings.TrimSuffix(outputS3URI, "/") + "/output.mp4"
	localPath, err := s.downloader.Download(ctx, videoURI, storage.SubdirVideos, jobID+".mp4")
	if err != nil {
		return err
	}

	mediaURL := mediaURLPrefix + filepath.Base(localPath)
	if !s.registry.Complete(jobID, mediaURL, "video/mp4", nil) {
		s.logger.Warn().Str("job_id", jobID).Msg("generation: job already terminal, dropping late result")
		return nil
	}
	s.logger.Info().Str("job_id", jobID).Str("media_url", mediaURL).Msg("generation: video job completed")

	s.recordHistory(ctx, rec, localPath, "video/mp4", nil)
	return nil
}

// recordHistory appends the durable record for a completed generation.
// Recording failures are logged, never surfaced: the media already exists
// and the job already reads completed.
func (s *Service) recordHistory(ctx context.Context, rec historyInfo, localPath, mediaType string, metadata map[string]any) {
	if s.history == nil {
		return
	}
	_, err := s.history.SaveGeneration(ctx, domain.SaveGenerationInput{
		Kind:           rec.kind,
		Prompt:         rec.prompt,
		SourceFilePath: rec.sourcePath,
		MediaFilePath:  localPath,
		MediaType:      mediaType,
		Status:         domain.StatusCompleted,
		Metadata:       metadata,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("kind", string(rec.kind)).Msg("generation: failed to record history")
	}
}

type imageResult struct {
	url       string
	localPath string
}

func (s *Service) generateImage(ctx context.Context, jobID string, input imageModelInput) (*imageResult, error) {
	body, err := s.invoker.InvokeModel(ctx, imageModelID, input)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Images []string `json:"images"`
		Error  string   `json:"error"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, domain.NewInternalError(err)
	}
	if len(decoded.Images) == 0 {
		cause := errors.New("no images returned from model")
		if decoded.Error != "" {
			cause = errors.New(decoded.Error)
		}
		return nil, domain.NewInternalError(cause)
	}

	data, err := base64.StdEncoding.DecodeString(decoded.Images[0])
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	localPath, err := s.store.Save(storage.SubdirImages, jobID+".png", data)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	return &imageResult{url: mediaURLPrefix + filepath.Base(localPath), localPath: localPath}, nil
}

// failureMessage maps an error to the human-readable reason stored on the
// job. Raw error text from unexpected failures never reaches callers.
func failureMessage(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "Generation failed unexpectedly. Please try again."
}

func qualityOrDefault(q string) string {
	if q == "" {
		return "standard"
	}
	return q
}

func durationOrDefault(d int) int {
	if d <= 0 {
		return 6
	}
	return d
}

func sizeOrDefault(px int) int {
	if px <= 0 {
		return 1024
	}
	return px
}

func cfgScaleOrDefault(v float64) float64 {
	if v <= 0 {
		return 8.0
	}
	return v
}
