package models

import "github.com/rumera-ai/rumera/internal/domain/inference"

// Info describes a modality for the health report.
type Info struct {
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
	Version string `json:"version"`
}

type catalogEntry struct {
	spec inference.Spec
	info Info
}

var catalog = []catalogEntry{
	{
		spec: inference.Spec{Modality: inference.ModalityWhisper, Task: inference.TaskSpeechRecognition, ModelID: "openai/whisper-tiny.en"},
		info: Info{Name: "OpenAI Whisper", Purpose: "Audio transcription"},
	},
	{
		spec: inference.Spec{Modality: inference.ModalityCLIP, Task: inference.TaskZeroShotImage, ModelID: "openai/clip-vit-base-patch32"},
		info: Info{Name: "OpenAI CLIP", Purpose: "Image-text understanding & AI detection"},
	},
	{
		spec: inference.Spec{Modality: inference.ModalityTextClassifier, Task: inference.TaskTextClassification, ModelID: "distilbert/distilbert-base-uncased-finetuned-sst-2-english"},
		info: Info{Name: "Hugging Face Transformers", Purpose: "Text classification & general NLP"},
	},
	{
		spec: inference.Spec{Modality: inference.ModalityToxicity, Task: inference.TaskTextClassification, ModelID: "unitary/toxic-bert"},
		info: Info{Name: "ToxicBERT", Purpose: "Hate speech & toxicity detection"},
	},
	{
		spec: inference.Spec{Modality: inference.ModalityXception, Task: inference.TaskImageClassification, ModelID: "google/vit-base-patch16-224"},
		info: Info{Name: "Deepfake proxy classifier", Purpose: "Deepfake & manipulation likelihood"},
	},
}

// DefaultSpecs returns the five modality specs. overrides maps a modality
// name to a replacement model id.
func DefaultSpecs(overrides map[string]string) []inference.Spec {
	specs := make([]inference.Spec, 0, len(catalog))
	for _, c := range catalog {
		s := c.spec
		if id, ok := overrides[string(s.Modality)]; ok && id != "" {
			s.ModelID = id
		}
		specs = append(specs, s)
	}
	return specs
}

// Describe returns display info for m; Version is the configured model id.
func (r *Registry) Describe(m inference.Modality) Info {
	var info Info
	for _, c := range catalog {
		if c.spec.Modality == m {
			info = c.info
			break
		}
	}
	if s, ok := r.Spec(m); ok {
		info.Version = s.ModelID
	}
	return info
}
