package roles

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

func utt(order int, speaker, text string) types.Utterance {
	return types.Utterance{Order: order, Speaker: speaker, Text: text}
}

func TestIdentify_MapsEverySpeaker(t *testing.T) {
	utts := []types.Utterance{
		utt(0, "0", "Wow, you built a tall tower!"),
		utt(1, "1", "more blocks"),
		utt(2, "0", "You're stacking the red one."),
	}
	client := &fakeClient{resp: `{"speakers":[
		{"speaker":"0","role":"adult"},
		{"speaker":"1","role":"child"}
	]}`}

	result, err := Identify(context.Background(), utts, client)
	require.NoError(t, err)

	assert.Equal(t, types.RoleAdult, result.Roles["0"])
	assert.Equal(t, types.RoleChild, result.Roles["1"])
	assert.True(t, result.HasAdult)
	assert.Len(t, result.Roles, 2)
}

func TestIdentify_ClampsUnrecognizedLabels(t *testing.T) {
	utts := []types.Utterance{utt(0, "0", "hello there")}
	client := &fakeClient{resp: `{"speakers":[{"speaker":"0","role":"grandparent"}]}`}

	result, err := Identify(context.Background(), utts, client)
	require.NoError(t, err)
	assert.Equal(t, types.RoleUnknown, result.Roles["0"])
	assert.False(t, result.HasAdult)
}

func TestIdentify_OmittedSpeakerBecomesUnknown(t *testing.T) {
	utts := []types.Utterance{
		utt(0, "0", "hi"),
		utt(1, "1", "hi back"),
	}
	client := &fakeClient{resp: `{"speakers":[{"speaker":"0","role":"adult"}]}`}

	result, err := Identify(context.Background(), utts, client)
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdult, result.Roles["0"])
	assert.Equal(t, types.RoleUnknown, result.Roles["1"])
	assert.True(t, result.HasAdult)
}

func TestIdentify_NoUtterancesSkipsClassifier(t *testing.T) {
	client := &fakeClient{resp: `{"speakers":[]}`}

	result, err := Identify(context.Background(), nil, client)
	require.NoError(t, err)
	assert.Empty(t, result.Roles)
	assert.False(t, result.HasAdult)
	assert.Zero(t, client.calls)
}

func TestIdentify_MalformedResponseFails(t *testing.T) {
	utts := []types.Utterance{utt(0, "0", "hello")}

	_, err := Identify(context.Background(), utts, &fakeClient{resp: `{"roles":{}}`})
	assert.Error(t, err)

	_, err = Identify(context.Background(), utts, &fakeClient{resp: `not json`})
	assert.Error(t, err)
}

func TestIdentify_ClientErrorPropagates(t *testing.T) {
	utts := []types.Utterance{utt(0, "0", "hello")}
	client := &fakeClient{err: errors.New("upstream unavailable")}

	_, err := Identify(context.Background(), utts, client)
	assert.Error(t, err)
}
