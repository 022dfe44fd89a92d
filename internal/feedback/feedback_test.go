package feedback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprouthq/recording-pipeline/internal/llm"
	"github.com/sprouthq/recording-pipeline/internal/types"
)

type fakeClient struct {
	resp string
	err  error
}

func (f *fakeClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.resp, f.err
}

func (f *fakeClient) Close() error { return nil }

func sampleCounts() types.TagCounts {
	return types.TagCounts{
		types.CodePraise:   4,
		types.CodeQuestion: 2,
	}
}

func TestGenerate_ParsesWellFormedResponse(t *testing.T) {
	client := &fakeClient{resp: `{
		"highlight": "You praised specific actions, like the tower your child built.",
		"tip": "Try reflecting back more of what your child says.",
		"encouragement": "You're building a warm routine together."
	}`}

	fb, err := Generate(context.Background(), sampleCounts(), nil, client)
	require.NoError(t, err)
	assert.Contains(t, fb.Highlight, "praised")
	assert.NotEmpty(t, fb.Tip)
	assert.NotEmpty(t, fb.Encouragement)
}

func TestGenerate_ClientErrorDegradesToFallback(t *testing.T) {
	client := &fakeClient{err: errors.New("upstream unavailable")}

	fb, err := Generate(context.Background(), sampleCounts(), nil, client)
	assert.Error(t, err)
	assert.Equal(t, Fallback(), fb)
}

func TestGenerate_InvalidShapeDegradesToFallback(t *testing.T) {
	// Missing required fields.
	client := &fakeClient{resp: `{"highlight": "nice work"}`}

	fb, err := Generate(context.Background(), sampleCounts(), nil, client)
	assert.Error(t, err)
	assert.Equal(t, Fallback(), fb)
}

func TestFallback_AlwaysComplete(t *testing.T) {
	fb := Fallback()
	assert.NotEmpty(t, fb.Highlight)
	assert.NotEmpty(t, fb.Tip)
	assert.NotEmpty(t, fb.Encouragement)
}
