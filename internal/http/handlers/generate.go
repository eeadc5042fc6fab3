package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/storage"
)

// maxMultipartMemory bounds how much of an upload is buffered in memory
// before spilling to disk.
const maxMultipartMemory = 32 << 20

type generateRequest struct {
	Prompt string `json:"prompt"`
	domain.GenerationParams
}

type jobStatusResponse struct {
	JobID     string                  `json:"jobId"`
	Status    domain.GenerationStatus `json:"status"`
	Progress  int                     `json:"progress"`
	MediaURL  string                  `json:"mediaUrl,omitempty"`
	MediaType string                  `json:"mediaType,omitempty"`
	Metadata  map[string]any          `json:"metadata,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

func (a *App) GenerateTextToVideo(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, domain.NewInvalidRequest("Invalid JSON body"))
		return
	}
	result, err := a.Generator.TextToVideo(r.Context(), req.Prompt, req.GenerationParams)
	if err != nil {
		a.error(w, err)
		return
	}
	a.json(w, http.StatusAccepted, result)
}

func (a *App) GenerateImageToVideo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		a.error(w, domain.NewInvalidRequest("Invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, domain.NewInvalidFile("Image file is required"))
		return
	}
	defer file.Close()

	if err := a.Store.ValidateUpload(header.Header.Get("Content-Type"), header.Size); err != nil {
		a.error(w, err)
		return
	}
	image, err := io.ReadAll(file)
	if err != nil {
		a.error(w, domain.NewInternalError(err))
		return
	}

	// Persist the source image so history can link back to it.
	sourcePath, err := a.Store.Save(storage.SubdirUploads, uploadFilename(header.Filename), image)
	if err != nil {
		a.error(w, domain.NewInternalError(err))
		return
	}

	result, err := a.Generator.ImageToVideo(r.Context(), image, sourcePath, r.FormValue("prompt"), formParams(r))
	if err != nil {
		a.error(w, err)
		return
	}
	a.json(w, http.StatusAccepted, result)
}

func (a *App) GenerateTextToImage(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, domain.NewInvalidRequest("Invalid JSON body"))
		return
	}
	result, err := a.Generator.TextToImage(r.Context(), req.Prompt, req.GenerationParams)
	if err != nil {
		a.error(w, err)
		return
	}
	a.json(w, http.StatusOK, result)
}

func (a *App) GenerateStatus(w http.ResponseWriter, r *http.Request) {
	job, err := a.Generator.JobStatus(chi.URLParam(r, "jobID"))
	if err != nil {
		a.error(w, err)
		return
	}
	a.json(w, http.StatusOK, jobStatusResponse{
		JobID:     job.ID,
		Status:    job.Status,
		Progress:  job.Progress,
		MediaURL:  job.MediaURL,
		MediaType: job.MediaType,
		Metadata:  job.Metadata,
		Error:     job.Error,
	})
}

// formParams reads the optional generation knobs sent as multipart fields.
func formParams(r *http.Request) domain.GenerationParams {
	var params domain.GenerationParams
	if v := r.FormValue("duration"); v != "" {
		params.Duration, _ = strconv.Atoi(v)
	}
	params.AspectRatio = r.FormValue("aspectRatio")
	params.Quality = r.FormValue("quality")
	return params
}

// uploadFilename mints a collision-free name for a stored upload, keeping
// the original extension when it looks sane.
func uploadFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
	default:
		ext = ".png"
	}
	return uuid.NewString() + ext
}
