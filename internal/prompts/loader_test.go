package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	prompt, err := Get("roles.json", "identify")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Transcript}}")

	_, err = Get("roles.json", "missing-key")
	assert.Error(t, err)

	_, err = Get("missing.json", "identify")
	assert.Error(t, err)
}

func TestMustGet_PanicsOnMissing(t *testing.T) {
	assert.NotEmpty(t, MustGet("coding.json", "code_utterances"))
	assert.Panics(t, func() { MustGet("coding.json", "missing-key") })
}

func TestFormat(t *testing.T) {
	out := Format("mode={{.Mode}} n={{.N}}", map[string]string{
		"Mode": "child_led",
		"N":    "3",
	})
	assert.Equal(t, "mode=child_led n=3", out)

	// Placeholders without a value are left intact.
	assert.Equal(t, "{{.Other}}", Format("{{.Other}}", nil))
}

func TestEmbeddedPromptsAreComplete(t *testing.T) {
	for _, p := range []struct{ file, key string }{
		{"roles.json", "identify"},
		{"coding.json", "code_utterances"},
		{"feedback.json", "session_feedback"},
	} {
		prompt, err := Get(p.file, p.key)
		require.NoError(t, err, "%s/%s", p.file, p.key)
		assert.Contains(t, prompt, "JSON only", "%s/%s", p.file, p.key)
	}
}
