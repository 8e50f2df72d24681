package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rumera-ai/rumera/internal/domain/ai"
)

type scriptedClient struct {
	name    string
	replies []string
	errs    []error
	calls   int
}

func (c *scriptedClient) Name() string { return c.name }

func (c *scriptedClient) Complete(ctx context.Context, req ai.Request) (string, error) {
	i := c.calls
	c.calls++
	var err error
	if i < len(c.errs) {
		err = c.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(c.replies) {
		return c.replies[i], nil
	}
	return c.replies[len(c.replies)-1], nil
}

type verdict struct {
	TrustScore     int      `json:"trust_score"`
	Classification string   `json:"classification"`
	Flags          []string `json:"flags"`
}

func TestExtractJSON(t *testing.T) {
	raw, err := ExtractJSON("Sure! ```json\n{\"trust_score\": 80, \"details\": {\"a\": 1}}\n``` hope this helps")
	require.NoError(t, err)
	assert.Equal(t, `{"trust_score": 80, "details": {"a": 1}}`, raw)

	_, err = ExtractJSON("no json here")
	assert.ErrorIs(t, err, ai.ErrMalformedResponse)

	_, err = ExtractJSON("} backwards {")
	assert.ErrorIs(t, err, ai.ErrMalformedResponse)
}

func TestDecodeJSON_InvalidObject(t *testing.T) {
	var v verdict
	err := DecodeJSON("{trust_score: eighty}", &v)
	assert.ErrorIs(t, err, ai.ErrMalformedResponse)
}

func TestCompleteJSON_NotConfigured(t *testing.T) {
	s := NewService(nil)
	var v verdict
	_, err := s.CompleteJSON(context.Background(), ai.Request{}, &v)
	assert.ErrorIs(t, err, ai.ErrNotConfigured)
	assert.False(t, s.Configured())
}

func TestCompleteJSON_PrimaryRetriesThenSucceeds(t *testing.T) {
	primary := &scriptedClient{
		name:    "groq",
		errs:    []error{ai.ErrProviderUnavailable, nil},
		replies: []string{"", `{"trust_score": 77}`},
	}
	s := NewService([]ai.Client{primary}, WithRetries(2, time.Millisecond))

	var v verdict
	name, err := s.CompleteJSON(context.Background(), ai.Request{}, &v)
	require.NoError(t, err)
	assert.Equal(t, "groq", name)
	assert.Equal(t, 77, v.TrustScore)
	assert.Equal(t, 2, primary.calls)
}

func TestCompleteJSON_MalformedFallsThroughToSecondary(t *testing.T) {
	primary := &scriptedClient{name: "groq", replies: []string{"I cannot help with that"}}
	secondary := &scriptedClient{name: "gemini", replies: []string{`{"trust_score": 12}`}}
	s := NewService([]ai.Client{primary, nil, secondary})

	var v verdict
	name, err := s.CompleteJSON(context.Background(), ai.Request{}, &v)
	require.NoError(t, err)
	assert.Equal(t, "gemini", name)
	assert.Equal(t, 12, v.TrustScore)
	assert.Equal(t, []string{"groq", "gemini"}, s.Providers())
}

func TestCompleteJSON_AllFail(t *testing.T) {
	boom := errors.New("boom")
	primary := &scriptedClient{name: "groq", errs: []error{boom}}
	s := NewService([]ai.Client{primary}, WithRetries(3, time.Millisecond))

	var v verdict
	_, err := s.CompleteJSON(context.Background(), ai.Request{}, &v)
	assert.ErrorIs(t, err, boom)
	// non-transient errors are not retried
	assert.Equal(t, 1, primary.calls)
}

func TestCompleteJSON_RejectedReplyDoesNotLeak(t *testing.T) {
	// trust_score decodes before flags fails on its type
	primary := &scriptedClient{name: "groq", replies: []string{`{"trust_score": 95, "flags": "none"}`}}
	secondary := &scriptedClient{name: "gemini", replies: []string{`{"classification": "Suspicious", "flags": ["hate"]}`}}
	s := NewService([]ai.Client{primary, secondary})

	var v verdict
	name, err := s.CompleteJSON(context.Background(), ai.Request{}, &v)
	require.NoError(t, err)
	assert.Equal(t, "gemini", name)
	assert.Equal(t, 0, v.TrustScore)
	assert.Equal(t, "Suspicious", v.Classification)
	assert.Equal(t, []string{"hate"}, v.Flags)
}

func TestCompleteJSON_AllRejectedLeavesOutUntouched(t *testing.T) {
	primary := &scriptedClient{name: "groq", replies: []string{`{"trust_score": 95, "flags": "none"}`}}
	s := NewService([]ai.Client{primary})

	v := verdict{TrustScore: 50}
	_, err := s.CompleteJSON(context.Background(), ai.Request{}, &v)
	assert.ErrorIs(t, err, ai.ErrMalformedResponse)
	assert.Equal(t, 50, v.TrustScore)
}

func TestCompleteJSON_RequiresPointer(t *testing.T) {
	s := NewService([]ai.Client{&scriptedClient{name: "groq", replies: []string{`{}`}}})
	_, err := s.CompleteJSON(context.Background(), ai.Request{}, verdict{})
	assert.Error(t, err)
}
