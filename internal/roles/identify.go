// Package roles identifies which diarized speaker channels belong to the
// adult caregiver and which to the child.
package roles

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sprouthq/recording-pipeline/internal/llm"
	"github.com/sprouthq/recording-pipeline/internal/prompts"
	"github.com/sprouthq/recording-pipeline/internal/schemas"
	"github.com/sprouthq/recording-pipeline/internal/types"
)

// Result holds the speaker-to-role mapping for one recording.
type Result struct {
	// Roles maps every distinct speaker id observed in the transcript to a
	// role from the closed vocabulary.
	Roles map[string]types.Role
	// HasAdult reports whether at least one speaker resolved to adult. When
	// false the recording still advances but is marked for manual review.
	HasAdult bool
}

// rolesResponse mirrors the expected JSON response from the classifier.
type rolesResponse struct {
	Speakers []struct {
		Speaker string `json:"speaker"`
		Role    string `json:"role"`
	} `json:"speakers"`
}

// Identify classifies every distinct speaker in the utterance list. The
// classifier's labels are validated against the response schema and clamped to
// the closed role vocabulary; a speaker the classifier omits or mislabels
// becomes unknown, never an error.
func Identify(ctx context.Context, utts []types.Utterance, client llm.Client) (*Result, error) {
	if len(utts) == 0 {
		return &Result{Roles: map[string]types.Role{}}, nil
	}

	prompt := buildPrompt(utts)
	raw, err := client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("role classification failed: %w", err)
	}

	if err := schemas.Validate(schemas.RolesResponse, raw); err != nil {
		return nil, fmt.Errorf("role classification returned unexpected shape: %w", err)
	}

	var resp rolesResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse role response: %w", err)
	}

	labeled := make(map[string]types.Role, len(resp.Speakers))
	for _, s := range resp.Speakers {
		labeled[s.Speaker] = types.CoerceRole(s.Role)
	}

	result := &Result{Roles: make(map[string]types.Role)}
	for _, u := range utts {
		if _, seen := result.Roles[u.Speaker]; seen {
			continue
		}
		role, ok := labeled[u.Speaker]
		if !ok {
			role = types.RoleUnknown
		}
		result.Roles[u.Speaker] = role
		if role == types.RoleAdult {
			result.HasAdult = true
		}
	}

	return result, nil
}

// buildPrompt renders the transcript with speaker ids for the classifier.
func buildPrompt(utts []types.Utterance) string {
	var lines []string
	for _, u := range utts {
		lines = append(lines, fmt.Sprintf("[speaker %s] %s", u.Speaker, u.Text))
	}
	template := prompts.MustGet("roles.json", "identify")
	return prompts.Format(template, map[string]string{
		"Transcript": strings.Join(lines, "\n"),
	})
}
