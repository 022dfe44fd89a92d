package coding

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
	resp  string
	err   error
	calls int
}

func (f *fakeClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.calls++
	return f.resp, f.err
}

func (f *fakeClient) Close() error { return nil }

func TestCodeUtterances_AssignsAndAggregates(t *testing.T) {
	utts := []types.Utterance{
		adultUtt(0, "Great job with the blue one!"),
		childUtt(1, "more blocks"),
		adultUtt(2, "You're stacking the blocks."),
		adultUtt(3, "Can you find the red one?"),
	}
	client := &fakeClient{resp: `{"codes":[
		{"order":0,"code":"praise"},
		{"order":2,"code":"description"},
		{"order":3,"code":"question"}
	]}`}

	result, err := CodeUtterances(context.Background(), types.ModeChildLed, utts, client)
	require.NoError(t, err)

	assert.Equal(t, types.CodePraise, result.Codes[0])
	assert.Equal(t, types.CodeDescription, result.Codes[2])
	assert.Equal(t, types.CodeQuestion, result.Codes[3])
	// The child utterance is never coded.
	_, ok := result.Codes[1]
	assert.False(t, ok)

	assert.Equal(t, 1, result.Counts[types.CodePraise])
	assert.Equal(t, 1, result.Counts[types.CodeDescription])
	assert.Equal(t, 1, result.Counts[types.CodeQuestion])
	assert.Equal(t, 0, result.Counts[types.CodeCommand])
	assert.Equal(t, 3, result.Counts.Total())
}

func TestCodeUtterances_UnrecognizedLabelsCoercedToNeutral(t *testing.T) {
	utts := []types.Utterance{adultUtt(0, "hm interesting")}
	client := &fakeClient{resp: `{"codes":[{"order":0,"code":"musing"}]}`}

	result, err := CodeUtterances(context.Background(), types.ModeChildLed, utts, client)
	require.NoError(t, err)
	assert.Equal(t, types.CodeNeutral, result.Codes[0])
	assert.Equal(t, 1, result.Counts[types.CodeNeutral])
}

func TestCodeUtterances_SkippedUtterancesDefaultToNeutral(t *testing.T) {
	utts := []types.Utterance{
		adultUtt(0, "first"),
		adultUtt(1, "second"),
	}
	client := &fakeClient{resp: `{"codes":[{"order":0,"code":"praise"}]}`}

	result, err := CodeUtterances(context.Background(), types.ModeParentLed, utts, client)
	require.NoError(t, err)
	assert.Equal(t, types.CodePraise, result.Codes[0])
	assert.Equal(t, types.CodeNeutral, result.Codes[1])
}

func TestCodeUtterances_NoAdultsSkipsClassifier(t *testing.T) {
	utts := []types.Utterance{childUtt(0, "vroom vroom")}
	client := &fakeClient{resp: `{"codes":[]}`}

	result, err := CodeUtterances(context.Background(), types.ModeChildLed, utts, client)
	require.NoError(t, err)
	assert.Empty(t, result.Codes)
	assert.Equal(t, 0, result.Counts.Total())
	assert.Zero(t, client.calls)
}

func TestCodeUtterances_MalformedResponseFails(t *testing.T) {
	utts := []types.Utterance{adultUtt(0, "hello")}

	_, err := CodeUtterances(context.Background(), types.ModeChildLed, utts, &fakeClient{resp: `{"labels":[]}`})
	assert.Error(t, err)

	_, err = CodeUtterances(context.Background(), types.ModeChildLed, utts, &fakeClient{resp: `not json`})
	assert.Error(t, err)
}

func TestCodeUtterances_ClientErrorPropagates(t *testing.T) {
	utts := []types.Utterance{adultUtt(0, "hello")}
	client := &fakeClient{err: errors.New("upstream unavailable")}

	_, err := CodeUtterances(context.Background(), types.ModeChildLed, utts, client)
	assert.Error(t, err)
}
