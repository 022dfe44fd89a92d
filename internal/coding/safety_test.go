package coding

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sprouthq/recording-pipeline/internal/types"
)

func adultUtt(order int, text string) types.Utterance {
	role := types.RoleAdult
	return types.Utterance{Order: order, Speaker: "0", Role: &role, Text: text}
}

func childUtt(order int, text string) types.Utterance {
	role := types.RoleChild
	return types.Utterance{Order: order, Speaker: "1", Role: &role, Text: text}
}

func TestScanSafety_FlagsHostileUtterances(t *testing.T) {
	hostile := []string{
		"I hate you, just stop it",
		"You're so stupid, why can't you do anything",
		"I'll smack you if you do that again",
		"Nobody loves you when you act like this",
	}
	for _, text := range hostile {
		excerpts := ScanSafety([]types.Utterance{adultUtt(0, text)})
		assert.NotEmpty(t, excerpts, "expected flag for %q", text)
	}
}

func TestScanSafety_IgnoresOrdinaryFrustration(t *testing.T) {
	benign := []string{
		"No, don't touch that please",
		"Stop throwing the blocks",
		"I hate mondays",
		"That puzzle is stupid hard",
		"We don't hit the table",
	}
	for _, text := range benign {
		excerpts := ScanSafety([]types.Utterance{adultUtt(0, text)})
		assert.Empty(t, excerpts, "unexpected flag for %q", text)
	}
}

func TestScanSafety_OnlyScansAdultUtterances(t *testing.T) {
	utts := []types.Utterance{
		childUtt(0, "I hate you daddy"),
		{Order: 1, Speaker: "2", Text: "I hate you"}, // unresolved role
	}
	assert.Empty(t, ScanSafety(utts))
}

func TestScanSafety_ReturnsEachFlaggedExcerptOnce(t *testing.T) {
	utts := []types.Utterance{
		adultUtt(0, "I hate you and you're so useless"), // two patterns, one excerpt
		adultUtt(1, "Let's build a tower"),
		adultUtt(2, "I'll hit you"),
	}
	excerpts := ScanSafety(utts)
	assert.Len(t, excerpts, 2)
	assert.Contains(t, excerpts, "I hate you and you're so useless")
	assert.Contains(t, excerpts, "I'll hit you")
}
