package hf

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rumera-ai/rumera/internal/domain/inference"
)

// fakeHub serves GET probes for known models and canned POST replies.
func fakeHub(t *testing.T, replies map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		model := strings.TrimPrefix(r.URL.Path, "/")
		reply, ok := replies[model]
		if !ok {
			http.Error(w, `{"error":"Model not found"}`, http.StatusNotFound)
			return
		}
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"loaded":true}`))
			return
		}
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
}

func newTestLoader(url string) *Loader {
	return NewLoader(Config{Enabled: true, Endpoint: url, Token: "hf_test"}, zap.NewNop())
}

func TestInit_Disabled(t *testing.T) {
	l := NewLoader(Config{Enabled: false}, nil)
	assert.ErrorIs(t, l.Init(context.Background()), ErrDisabled)
}

func TestInit_RequiresToken(t *testing.T) {
	l := NewLoader(Config{Enabled: true, Endpoint: "http://localhost"}, nil)
	assert.Error(t, l.Init(context.Background()))
}

func TestInit_RejectsBadEndpoint(t *testing.T) {
	l := NewLoader(Config{Enabled: true, Endpoint: "::not a url", Token: "x"}, nil)
	assert.Error(t, l.Init(context.Background()))
}

func TestLoad_UnknownModelFails(t *testing.T) {
	srv := fakeHub(t, nil)
	defer srv.Close()

	l := newTestLoader(srv.URL)
	_, err := l.Load(context.Background(), inference.Spec{
		Modality: inference.ModalityToxicity,
		Task:     inference.TaskTextClassification,
		ModelID:  "unitary/toxic-bert",
	})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Status)
}

func TestTextClassification_NestedPredictions(t *testing.T) {
	srv := fakeHub(t, map[string]string{
		"unitary/toxic-bert": `[[{"label":"toxic","score":0.93},{"label":"insult","score":0.61}]]`,
	})
	defer srv.Close()

	l := newTestLoader(srv.URL)
	p, err := l.Load(context.Background(), inference.Spec{
		Modality: inference.ModalityToxicity,
		Task:     inference.TaskTextClassification,
		ModelID:  "unitary/toxic-bert",
	})
	require.NoError(t, err)

	out, err := p.Run(context.Background(), inference.Input{Text: "you idiot"})
	require.NoError(t, err)
	require.Len(t, out.Predictions, 2)
	top, ok := out.Top()
	require.True(t, ok)
	assert.Equal(t, "toxic", top.Label)
	assert.InDelta(t, 0.93, top.Score, 1e-9)

	_, err = p.Run(context.Background(), inference.Input{})
	assert.ErrorIs(t, err, errEmptyInput)
}

func TestZeroShotImage_SendsCandidateLabels(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			_, _ = w.Write([]byte(`[{"label":"an AI generated image","score":0.8},{"label":"a real photograph","score":0.2}]`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	l := NewLoader(Config{Enabled: true, Endpoint: srv.URL, Token: "t"}, nil)
	p, err := l.Load(context.Background(), inference.Spec{Task: inference.TaskZeroShotImage, ModelID: "openai/clip-vit-base-patch32"})
	require.NoError(t, err)

	out, err := p.Run(context.Background(), inference.Input{Data: []byte{1, 2, 3}, CandidateLabels: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Len(t, out.Predictions, 2)
	assert.Equal(t, "AQID", body["inputs"])
	params := body["parameters"].(map[string]any)
	assert.Equal(t, []any{"a", "b"}, params["candidate_labels"])
}

func TestSpeechRecognition(t *testing.T) {
	srv := fakeHub(t, map[string]string{"openai/whisper-tiny.en": `{"text":" hello world"}`})
	defer srv.Close()

	l := newTestLoader(srv.URL)
	p, err := l.Load(context.Background(), inference.Spec{Task: inference.TaskSpeechRecognition, ModelID: "openai/whisper-tiny.en"})
	require.NoError(t, err)

	out, err := p.Run(context.Background(), inference.Input{Data: []byte("RIFF"), ContentType: "audio/wav"})
	require.NoError(t, err)
	assert.Equal(t, " hello world", out.Text)
}

func TestLoad_UnsupportedTask(t *testing.T) {
	srv := fakeHub(t, map[string]string{"m": `{}`})
	defer srv.Close()

	_, err := newTestLoader(srv.URL).Load(context.Background(), inference.Spec{Task: "summarization", ModelID: "m"})
	assert.ErrorContains(t, err, "unsupported task")
}

func TestOCR(t *testing.T) {
	srv := fakeHub(t, map[string]string{DefaultOCRModel: `[{"generated_text":"  STOP  "}]`})
	defer srv.Close()

	ocr := NewOCR(newTestLoader(srv.URL), "", 0, nil)
	text, err := ocr.Extract(context.Background(), []byte{0xff, 0xd8}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "STOP", text)
}

func TestOCR_DegradesWhenUnavailable(t *testing.T) {
	ocr := NewOCR(NewLoader(Config{Enabled: false}, nil), "", 0, nil)
	text, err := ocr.Extract(context.Background(), []byte{1}, "image/png")
	require.NoError(t, err)
	assert.Equal(t, NoTextExtracted, text)
}

func TestDecodeGeneratedText(t *testing.T) {
	assert.Equal(t, "a", decodeGeneratedText(json.RawMessage(`[{"generated_text":"a"}]`)))
	assert.Equal(t, "b", decodeGeneratedText(json.RawMessage(`{"generated_text":"b"}`)))
	assert.Equal(t, "", decodeGeneratedText(json.RawMessage(`[]`)))
}
