package inference

// Modality names one of the fixed inference pipelines.
type Modality string

const (
	ModalityWhisper        Modality = "whisper"
	ModalityCLIP           Modality = "clip"
	ModalityTextClassifier Modality = "text-classifier"
	ModalityToxicity       Modality = "toxicity"
	ModalityXception       Modality = "xception-proxy"
)

// AllModalities in the order the health endpoint reports them.
var AllModalities = []Modality{
	ModalityWhisper,
	ModalityCLIP,
	ModalityTextClassifier,
	ModalityToxicity,
	ModalityXception,
}

// Task enum (Hugging Face pipeline task names)
type Task string

const (
	TaskSpeechRecognition   Task = "automatic-speech-recognition"
	TaskZeroShotImage       Task = "zero-shot-image-classification"
	TaskTextClassification  Task = "text-classification"
	TaskImageClassification Task = "image-classification"
	TaskImageToText         Task = "image-to-text"
)

// Spec describes how a modality is loaded.
type Spec struct {
	Modality Modality
	Task     Task
	ModelID  string
}

// Status of a modality as reported by the registry.
type Status string

const (
	StatusReady    Status = "ready"
	StatusFallback Status = "fallback"
	StatusPending  Status = "not_loaded"
)

// Prediction is one label/score pair, score in 0..1.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Input for a pipeline run. Which fields matter depends on the task.
type Input struct {
	Text            string
	Data            []byte
	ContentType     string
	CandidateLabels []string
}

// Output of a pipeline run.
type Output struct {
	Text        string
	Predictions []Prediction
}

// Top returns the highest scoring prediction.
func (o Output) Top() (Prediction, bool) {
	if len(o.Predictions) == 0 {
		return Prediction{}, false
	}
	best := o.Predictions[0]
	for _, p := range o.Predictions[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	return best, true
}
