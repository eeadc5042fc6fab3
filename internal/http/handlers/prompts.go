package handlers

import (
	"encoding/json"
	"net/http"

	"server/internal/domain"
	"server/internal/providers/prompt"
)

type enhanceRequest struct {
	Prompt    string `json:"prompt"`
	Style     string `json:"style"`
	Quality   string `json:"quality"`
	MediaKind string `json:"mediaKind"`
}

type enhanceResponse struct {
	Original    string   `json:"original"`
	Enhanced    string   `json:"enhanced"`
	Suggestions []string `json:"suggestions"`
}

func (a *App) PromptEnhance(w http.ResponseWriter, r *http.Request) {
	var req enhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, domain.NewInvalidRequest("Invalid JSON body"))
		return
	}
	cleaned, err := prompt.ValidateAndClean(req.Prompt)
	if err != nil {
		a.error(w, err)
		return
	}
	enhanced := prompt.Enhance(cleaned, prompt.Options{
		Style:     prompt.Style(req.Style),
		Quality:   req.Quality,
		MediaKind: req.MediaKind,
	})
	suggestions := prompt.Suggestions(cleaned)
	if suggestions == nil {
		suggestions = []string{}
	}
	a.json(w, http.StatusOK, enhanceResponse{
		Original:    req.Prompt,
		Enhanced:    enhanced,
		Suggestions: suggestions,
	})
}
