package gemini

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"

	"github.com/rumera-ai/rumera/internal/domain/ai"
)

func TestClassify(t *testing.T) {
	quota := fmt.Errorf("wrapped: %w", genai.APIError{Code: 429, Message: "quota"})
	assert.ErrorIs(t, classify(quota), ai.ErrQuotaExceeded)

	down := genai.APIError{Code: 503, Message: "overloaded"}
	assert.ErrorIs(t, classify(down), ai.ErrProviderUnavailable)

	bad := genai.APIError{Code: 400, Message: "bad request"}
	got := classify(bad)
	assert.False(t, errors.Is(got, ai.ErrQuotaExceeded))
	assert.False(t, errors.Is(got, ai.ErrProviderUnavailable))

	plain := errors.New("dial tcp: refused")
	assert.Equal(t, plain, classify(plain))
}
