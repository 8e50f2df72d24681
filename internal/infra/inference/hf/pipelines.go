package hf

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rumera-ai/rumera/internal/domain/inference"
)

var errEmptyInput = errors.New("empty pipeline input")

type textClassifier struct {
	c     *client
	model string
}

func (p *textClassifier) Run(ctx context.Context, in inference.Input) (inference.Output, error) {
	if in.Text == "" {
		return inference.Output{}, errEmptyInput
	}
	var raw json.RawMessage
	payload := map[string]any{
		"inputs":     in.Text,
		"parameters": map[string]any{"top_k": 10},
	}
	if err := p.c.postJSON(ctx, p.model, payload, &raw); err != nil {
		return inference.Output{}, err
	}
	preds, err := decodePredictions(raw)
	return inference.Output{Predictions: preds}, err
}

type zeroShotImage struct {
	c     *client
	model string
}

func (p *zeroShotImage) Run(ctx context.Context, in inference.Input) (inference.Output, error) {
	if len(in.Data) == 0 {
		return inference.Output{}, errEmptyInput
	}
	payload := map[string]any{
		"inputs":     base64.StdEncoding.EncodeToString(in.Data),
		"parameters": map[string]any{"candidate_labels": in.CandidateLabels},
	}
	var raw json.RawMessage
	if err := p.c.postJSON(ctx, p.model, payload, &raw); err != nil {
		return inference.Output{}, err
	}
	preds, err := decodePredictions(raw)
	return inference.Output{Predictions: preds}, err
}

type imageClassifier struct {
	c     *client
	model string
}

func (p *imageClassifier) Run(ctx context.Context, in inference.Input) (inference.Output, error) {
	if len(in.Data) == 0 {
		return inference.Output{}, errEmptyInput
	}
	var raw json.RawMessage
	if err := p.c.do(ctx, http.MethodPost, p.model, contentTypeOr(in.ContentType, "image/jpeg"), in.Data, &raw); err != nil {
		return inference.Output{}, err
	}
	preds, err := decodePredictions(raw)
	return inference.Output{Predictions: preds}, err
}

type speechRecognizer struct {
	c     *client
	model string
}

func (p *speechRecognizer) Run(ctx context.Context, in inference.Input) (inference.Output, error) {
	if len(in.Data) == 0 {
		return inference.Output{}, errEmptyInput
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := p.c.do(ctx, http.MethodPost, p.model, contentTypeOr(in.ContentType, "audio/wav"), in.Data, &out); err != nil {
		return inference.Output{}, err
	}
	return inference.Output{Text: out.Text}, nil
}

type imageToText struct {
	c     *client
	model string
}

func (p *imageToText) Run(ctx context.Context, in inference.Input) (inference.Output, error) {
	if len(in.Data) == 0 {
		return inference.Output{}, errEmptyInput
	}
	var raw json.RawMessage
	if err := p.c.do(ctx, http.MethodPost, p.model, contentTypeOr(in.ContentType, "image/jpeg"), in.Data, &raw); err != nil {
		return inference.Output{}, err
	}
	return inference.Output{Text: decodeGeneratedText(raw)}, nil
}

func contentTypeOr(ct, def string) string {
	if ct == "" {
		return def
	}
	return ct
}

// decodePredictions accepts both [{label,score}] and [[{label,score}]].
func decodePredictions(raw json.RawMessage) ([]inference.Prediction, error) {
	var flat []inference.Prediction
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}
	var nested [][]inference.Prediction
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, err
	}
	var out []inference.Prediction
	for _, row := range nested {
		out = append(out, row...)
	}
	return out, nil
}

// decodeGeneratedText accepts [{generated_text}] and {generated_text}.
func decodeGeneratedText(raw json.RawMessage) string {
	var list []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) > 0 {
			return list[0].GeneratedText
		}
		return ""
	}
	var one struct {
		GeneratedText string `json:"generated_text"`
	}
	_ = json.Unmarshal(raw, &one)
	return one.GeneratedText
}
