package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/rumera-ai/rumera/internal/application/models"
	"github.com/rumera-ai/rumera/internal/domain/inference"
)

type modelReport struct {
	models.Info
	Status inference.Status `json:"status"`
}

var analyzeEndpoints = map[string]string{
	"text_analysis":  "POST /analyze/text",
	"image_analysis": "POST /analyze/image",
	"audio_analysis": "POST /analyze/audio",
	"video_analysis": "POST /analyze/video",
	"explanation":    "POST /analyze/explain",
	"history":        "GET /analyze/history",
}

var features = []string{
	"Text toxicity detection",
	"Hate speech detection",
	"AI-generated image detection",
	"Deepfake detection",
	"Audio transcription",
	"Content classification",
	"Trust scoring",
}

// GET /analyze/health
// Loads every pipeline once (cached afterwards) and reports ready/fallback.
func (rt *Router) handleModelHealth(w http.ResponseWriter, req *http.Request) error {
	ctx, cancel := context.WithTimeout(req.Context(), rt.healthTimeout)
	defer cancel()

	statuses := rt.models.Initialize(ctx)
	report := make(map[inference.Modality]modelReport, len(inference.AllModalities))
	for _, m := range inference.AllModalities {
		st, found := statuses[m]
		if !found {
			st = inference.StatusPending
		}
		report[m] = modelReport{Info: rt.models.Describe(m), Status: st}
	}

	return writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"status":    "operational",
		"timestamp": time.Now().UTC(),
		"models":    report,
		"endpoints": analyzeEndpoints,
		"features":  features,
	})
}
