// Package coding tags adult utterances with codes from the fixed behavioral
// taxonomy and screens them for safety-critical content.
package coding

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

// Result holds the per-utterance codes and aggregated tag counts for one
// recording.
type Result struct {
	// Codes maps utterance order to its assigned code. Only adult utterances
	// appear; child and unknown utterances are never coded.
	Codes map[int]types.Code
	// Counts tallies every taxonomy code, including zero entries, so the
	// scoring engine reads a complete map.
	Counts types.TagCounts
}

// codingResponse mirrors the expected JSON response from the classifier.
type codingResponse struct {
	Codes []struct {
		Order int    `json:"order"`
		Code  string `json:"code"`
	} `json:"codes"`
}

// CodeUtterances assigns one taxonomy code to every adult utterance. The
// classifier response is schema-validated, then each label is coerced onto the
// closed taxonomy; an utterance the classifier skips or mislabels falls into
// the neutral bucket so a partially malformed response never aborts the stage.
func CodeUtterances(ctx context.Context, mode types.Mode, utts []types.Utterance, client llm.Client) (*Result, error) {
	adults := make([]types.Utterance, 0, len(utts))
	for _, u := range utts {
		if u.IsAdult() {
			adults = append(adults, u)
		}
	}

	result := &Result{Codes: make(map[int]types.Code), Counts: emptyCounts()}
	if len(adults) == 0 {
		return result, nil
	}

	prompt := buildPrompt(mode, adults)
	raw, err := client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("behavioral coding failed: %w", err)
	}

	if err := schemas.Validate(schemas.CodingResponse, raw); err != nil {
		return nil, fmt.Errorf("behavioral coding returned unexpected shape: %w", err)
	}

	var resp codingResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse coding response: %w", err)
	}

	labeled := make(map[int]types.Code, len(resp.Codes))
	for _, c := range resp.Codes {
		labeled[c.Order] = types.CoerceCode(c.Code)
	}

	for _, u := range adults {
		code, ok := labeled[u.Order]
		if !ok {
			code = types.CodeNeutral
		}
		result.Codes[u.Order] = code
		result.Counts[code]++
	}

	return result, nil
}

// emptyCounts returns a tag-count map with every taxonomy code present at zero.
func emptyCounts() types.TagCounts {
	counts := make(types.TagCounts, len(types.AllCodes))
	for _, c := range types.AllCodes {
		counts[c] = 0
	}
	return counts
}

// buildPrompt renders the adult utterances with their order numbers.
func buildPrompt(mode types.Mode, adults []types.Utterance) string {
	var lines []string
	for _, u := range adults {
		lines = append(lines, fmt.Sprintf("%d. %s", u.Order, u.Text))
	}
	template := prompts.MustGet("coding.json", "code_utterances")
	return prompts.Format(template, map[string]string{
		"Mode":       string(mode),
		"Utterances": strings.Join(lines, "\n"),
	})
}
