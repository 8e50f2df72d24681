package models

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rumera-ai/rumera/internal/domain/inference"
)

type stubPipeline struct{ name string }

func (s stubPipeline) Run(ctx context.Context, in inference.Input) (inference.Output, error) {
	return inference.Output{Text: s.name}, nil
}

type fakeLoader struct {
	initErr   error
	failing   map[inference.Modality]bool
	initCalls atomic.Int32
	loadCalls sync.Map // modality -> *atomic.Int32
	delay     time.Duration
}

func (f *fakeLoader) Init(ctx context.Context) error {
	f.initCalls.Add(1)
	return f.initErr
}

func (f *fakeLoader) Load(ctx context.Context, spec inference.Spec) (inference.Pipeline, error) {
	c, _ := f.loadCalls.LoadOrStore(spec.Modality, &atomic.Int32{})
	c.(*atomic.Int32).Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.failing[spec.Modality] {
		return nil, errors.New("model download failed")
	}
	return stubPipeline{name: spec.ModelID}, nil
}

func (f *fakeLoader) loads(m inference.Modality) int32 {
	c, ok := f.loadCalls.Load(m)
	if !ok {
		return 0
	}
	return c.(*atomic.Int32).Load()
}

func testSpecs() []inference.Spec {
	return []inference.Spec{
		{Modality: inference.ModalityWhisper, Task: inference.TaskSpeechRecognition, ModelID: "asr"},
		{Modality: inference.ModalityCLIP, Task: inference.TaskZeroShotImage, ModelID: "clip"},
		{Modality: inference.ModalityTextClassifier, Task: inference.TaskTextClassification, ModelID: "sst2"},
		{Modality: inference.ModalityToxicity, Task: inference.TaskTextClassification, ModelID: "toxic-bert"},
		{Modality: inference.ModalityXception, Task: inference.TaskImageClassification, ModelID: "vit"},
	}
}

func TestRegistry_LoadsOnceAndReuses(t *testing.T) {
	loader := &fakeLoader{}
	r := NewRegistry(loader, testSpecs(), nil, time.Second)

	p1, ok := r.Get(context.Background(), inference.ModalityToxicity)
	require.True(t, ok)
	p2, ok := r.Get(context.Background(), inference.ModalityToxicity)
	require.True(t, ok)

	assert.Equal(t, p1, p2)
	assert.Equal(t, int32(1), loader.loads(inference.ModalityToxicity))
	assert.Equal(t, int32(1), loader.initCalls.Load())
}

func TestRegistry_FailureIsPermanent(t *testing.T) {
	loader := &fakeLoader{failing: map[inference.Modality]bool{inference.ModalityCLIP: true}}
	r := NewRegistry(loader, testSpecs(), nil, time.Second)

	for i := 0; i < 5; i++ {
		p, ok := r.Get(context.Background(), inference.ModalityCLIP)
		assert.False(t, ok)
		assert.Nil(t, p)
	}
	assert.Equal(t, int32(1), loader.loads(inference.ModalityCLIP))
	assert.Equal(t, inference.StatusFallback, r.Status()[inference.ModalityCLIP])
}

func TestRegistry_RuntimeGateFailureDisablesAll(t *testing.T) {
	loader := &fakeLoader{initErr: errors.New("no endpoint")}
	r := NewRegistry(loader, testSpecs(), nil, time.Second)

	status := r.Initialize(context.Background())
	for _, m := range inference.AllModalities {
		assert.Equal(t, inference.StatusFallback, status[m], m)
		assert.Equal(t, int32(0), loader.loads(m))
	}
	assert.Equal(t, int32(1), loader.initCalls.Load())
}

func TestRegistry_ConcurrentFirstUse(t *testing.T) {
	loader := &fakeLoader{delay: 20 * time.Millisecond}
	r := NewRegistry(loader, testSpecs(), nil, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := r.Get(context.Background(), inference.ModalityWhisper)
			assert.True(t, ok)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), loader.loads(inference.ModalityWhisper))
}

func TestRegistry_CanceledCallerDoesNotPoisonModality(t *testing.T) {
	loader := &fakeLoader{delay: 10 * time.Millisecond}
	r := NewRegistry(loader, testSpecs(), nil, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := r.Get(ctx, inference.ModalityXception)
	assert.True(t, ok)
}

func TestRegistry_StatusAndInitialize(t *testing.T) {
	loader := &fakeLoader{failing: map[inference.Modality]bool{inference.ModalityWhisper: true}}
	r := NewRegistry(loader, testSpecs(), nil, time.Second)

	for _, s := range r.Status() {
		assert.Equal(t, inference.StatusPending, s)
	}

	status := r.Initialize(context.Background())
	assert.Equal(t, inference.StatusFallback, status[inference.ModalityWhisper])
	assert.Equal(t, inference.StatusReady, status[inference.ModalityCLIP])
	assert.Equal(t, inference.StatusReady, status[inference.ModalityTextClassifier])
	assert.Equal(t, inference.StatusReady, status[inference.ModalityToxicity])
	assert.Equal(t, inference.StatusReady, status[inference.ModalityXception])
}

func TestRegistry_UnknownModality(t *testing.T) {
	r := NewRegistry(&fakeLoader{}, testSpecs()[:1], nil, time.Second)
	_, ok := r.Get(context.Background(), inference.ModalityCLIP)
	assert.False(t, ok)
}

func TestDefaultSpecs_Overrides(t *testing.T) {
	specs := DefaultSpecs(map[string]string{"toxicity": "martin-ha/toxic-comment-model"})
	require.Len(t, specs, len(inference.AllModalities))
	for i, m := range inference.AllModalities {
		assert.Equal(t, m, specs[i].Modality)
	}
	assert.Equal(t, "martin-ha/toxic-comment-model", specs[3].ModelID)
	assert.Equal(t, "openai/whisper-tiny.en", specs[0].ModelID)

	r := NewRegistry(&fakeLoader{}, specs, nil, 0)
	info := r.Describe(inference.ModalityToxicity)
	assert.Equal(t, "ToxicBERT", info.Name)
	assert.Equal(t, "martin-ha/toxic-comment-model", info.Version)
}

func TestRegistry_InitializeStopsWaitingAtDeadline(t *testing.T) {
	loader := &fakeLoader{delay: 200 * time.Millisecond}
	r := NewRegistry(loader, testSpecs(), nil, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	start := time.Now()
	statuses := r.Initialize(ctx)

	assert.Less(t, time.Since(start), 150*time.Millisecond)
	require.Len(t, statuses, 5)
	for _, s := range statuses {
		assert.Equal(t, inference.StatusPending, s)
	}

	// the loads were detached from ctx and finish on their own
	assert.Eventually(t, func() bool {
		for _, s := range r.Status() {
			if s != inference.StatusReady {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), loader.loads(inference.ModalityWhisper))
}
