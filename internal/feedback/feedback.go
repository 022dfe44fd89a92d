// Package feedback produces the short qualitative report for a completed
// session. The stage is advisory: any failure degrades to a templated
// fallback instead of failing the recording.
package feedback

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

// maxSampleUtterances bounds how many coded utterances are quoted in the
// prompt. Long sessions do not need the full transcript for a short report.
const maxSampleUtterances = 20

// Generate builds the qualitative feedback from tag counts and a sample of
// coded utterances. On any failure it returns Fallback() alongside the error;
// the caller may log the degradation but the pipeline proceeds.
func Generate(ctx context.Context, counts types.TagCounts, utts []types.Utterance, client llm.Client) (types.Feedback, error) {
	prompt := buildPrompt(counts, utts)

	raw, err := client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return Fallback(), fmt.Errorf("feedback generation failed: %w", err)
	}

	if err := schemas.Validate(schemas.FeedbackResponse, raw); err != nil {
		return Fallback(), fmt.Errorf("feedback response failed validation: %w", err)
	}

	var fb types.Feedback
	if err := json.Unmarshal([]byte(raw), &fb); err != nil {
		return Fallback(), fmt.Errorf("failed to parse feedback response: %w", err)
	}

	return fb, nil
}

// Fallback is the generic report used when feedback generation fails.
func Fallback() types.Feedback {
	return types.Feedback{
		Highlight:     "You showed up and spent focused one-on-one time with your child. That consistency is what builds connection.",
		Tip:           "Next session, try narrating what your child is doing out loud, like a sportscaster. It keeps attention on their play without taking over.",
		Encouragement: "Keep going. Every session you record is a step toward easier, warmer time together.",
	}
}

// buildPrompt renders the tallies and sampled utterances for the model.
func buildPrompt(counts types.TagCounts, utts []types.Utterance) string {
	var countLines []string
	for _, code := range types.AllCodes {
		countLines = append(countLines, fmt.Sprintf("- %s: %d", code, counts[code]))
	}

	var samples []string
	for _, u := range utts {
		if u.Code == nil {
			continue
		}
		samples = append(samples, fmt.Sprintf("[%s] %s", *u.Code, u.Text))
		if len(samples) >= maxSampleUtterances {
			break
		}
	}
	if len(samples) == 0 {
		samples = append(samples, "(no coded utterances)")
	}

	template := prompts.MustGet("feedback.json", "session_feedback")
	return prompts.Format(template, map[string]string{
		"Counts":  strings.Join(countLines, "\n"),
		"Samples": strings.Join(samples, "\n"),
	})
}
