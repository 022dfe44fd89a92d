// Package transcript converts raw speech-to-text token payloads into ordered
// utterance records.
package transcript

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sprouthq/recording-pipeline/internal/transcribe"
	"github.com/sprouthq/recording-pipeline/internal/types"
)

// MalformedPayloadError indicates the provider payload did not have the
// expected shape. It is never retried; the raw payload is kept for inspection.
type MalformedPayloadError struct {
	Reason string
	Cause  error
}

func (e *MalformedPayloadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed upstream payload: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("malformed upstream payload: %s", e.Reason)
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Cause
}

// terminalRunes are the sentence-final punctuation marks that close an
// utterance even without a speaker change. Covers Latin and CJK forms.
var terminalRunes = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true, '．': true, '…': true,
}

// endsAtSentence reports whether the accumulated text ends in terminal
// punctuation.
func endsAtSentence(text string) bool {
	trimmed := strings.TrimRight(text, " \t")
	runes := []rune(trimmed)
	if len(runes) == 0 {
		return false
	}
	return terminalRunes[runes[len(runes)-1]]
}

// Normalize decodes a raw provider payload and folds its word tokens into
// ordered utterances. An utterance closes on a speaker change or when its text
// ends at a sentence boundary; empty utterances are discarded. Order values
// are contiguous from zero.
func Normalize(raw []byte) ([]types.Utterance, string, error) {
	var payload struct {
		Tokens   []transcribe.Token `json:"tokens"`
		Language string             `json:"language"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, "", &MalformedPayloadError{Reason: "payload is not valid JSON", Cause: err}
	}
	if payload.Tokens == nil {
		return nil, "", &MalformedPayloadError{Reason: "missing token array"}
	}

	var utts []types.Utterance
	var buf strings.Builder
	var speaker string
	var startMs, endMs int64
	open := false

	flush := func() {
		if !open {
			return
		}
		text := strings.TrimSpace(buf.String())
		buf.Reset()
		open = false
		if text == "" {
			return
		}
		end := float64(endMs) / 1000
		start := float64(startMs) / 1000
		if end < start {
			end = start
		}
		utts = append(utts, types.Utterance{
			Order:    len(utts),
			Speaker:  speaker,
			Text:     text,
			StartSec: start,
			EndSec:   end,
		})
	}

	for _, tok := range payload.Tokens {
		if tok.Type == transcribe.TokenSpacing {
			continue
		}
		if open && tok.Speaker != speaker {
			flush()
		}
		if !open {
			speaker = tok.Speaker
			startMs = tok.StartMs
			open = true
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(tok.Text)
		endMs = tok.EndMs
		if endsAtSentence(buf.String()) {
			flush()
		}
	}
	flush()

	return utts, payload.Language, nil
}

// Format renders a human-readable transcript for display and export.
func Format(utts []types.Utterance) string {
	var sb strings.Builder
	for _, u := range utts {
		label := "Speaker " + u.Speaker
		if u.Role != nil && *u.Role != types.RoleUnknown {
			label = strings.ToUpper(string(*u.Role)[:1]) + string(*u.Role)[1:]
		}
		fmt.Fprintf(&sb, "[%s] %s\n", label, u.Text)
	}
	return sb.String()
}
