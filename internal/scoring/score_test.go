package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sprouthq/recording-pipeline/internal/types"
)

func counts(praise, reflection, description, question, command, criticism, negative, neutral int) types.TagCounts {
	return types.TagCounts{
		types.CodePraise:         praise,
		types.CodeReflection:     reflection,
		types.CodeDescription:    description,
		types.CodeQuestion:       question,
		types.CodeCommand:        command,
		types.CodeCriticism:      criticism,
		types.CodeNegativePhrase: negative,
		types.CodeNeutral:        neutral,
	}
}

func TestScore_AllTargetsMetNoDirectives(t *testing.T) {
	score, breakdown := Score(counts(10, 10, 10, 0, 0, 0, 0, 0))
	assert.Equal(t, 100, score)
	assert.Equal(t, 25.0, breakdown.Positive[types.CodePraise])
	assert.Equal(t, 25.0, breakdown.Positive[types.CodeReflection])
	assert.Equal(t, 25.0, breakdown.Positive[types.CodeDescription])
	assert.Equal(t, 25.0, breakdown.Directive)
}

func TestScore_ZeroCodedUtterances(t *testing.T) {
	score, _ := Score(counts(0, 0, 0, 0, 0, 0, 0, 0))
	assert.Equal(t, 0, score)

	score, _ = Score(types.TagCounts{})
	assert.Equal(t, 0, score)

	score, _ = Score(nil)
	assert.Equal(t, 0, score)
}

func TestScore_ExceedingTargetEarnsNoBonus(t *testing.T) {
	atTarget, _ := Score(counts(10, 10, 10, 0, 0, 0, 0, 0))
	beyond, _ := Score(counts(50, 30, 12, 0, 0, 0, 0, 0))
	assert.Equal(t, atTarget, beyond)
}

func TestScore_PartialPositiveCountsScaleLinearly(t *testing.T) {
	score, breakdown := Score(counts(5, 0, 0, 0, 0, 0, 0, 0))
	assert.Equal(t, 12.5, breakdown.Positive[types.CodePraise])
	// 12.5 positive + full 25 directive allotment, rounded.
	assert.Equal(t, 38, score)
}

func TestScore_DirectivesWithinToleranceNoPenalty(t *testing.T) {
	clean, _ := Score(counts(10, 10, 10, 0, 0, 0, 0, 0))
	tolerated, _ := Score(counts(10, 10, 10, 2, 1, 0, 0, 0))
	assert.Equal(t, clean, tolerated)
}

func TestScore_DirectivesBeyondTolerancePenalized(t *testing.T) {
	// 7 directives = 4 beyond tolerance = 20 points of penalty.
	score, breakdown := Score(counts(10, 10, 10, 3, 2, 1, 1, 0))
	assert.Equal(t, 5.0, breakdown.Directive)
	assert.Equal(t, 80, score)
	assert.Less(t, score, 100)
	assert.GreaterOrEqual(t, score, 0)
}

func TestScore_DirectivePenaltyFloorsAtZero(t *testing.T) {
	score, breakdown := Score(counts(10, 10, 10, 20, 20, 0, 0, 0))
	assert.Equal(t, 0.0, breakdown.Directive)
	assert.Equal(t, 75, score)
}

func TestScore_AlwaysWithinBounds(t *testing.T) {
	extremes := []types.TagCounts{
		counts(1000, 1000, 1000, 0, 0, 0, 0, 0),
		counts(0, 0, 0, 1000, 1000, 1000, 1000, 0),
		counts(0, 0, 0, 0, 0, 0, 0, 1000),
		counts(1, 0, 0, 0, 0, 0, 0, 0),
	}
	for _, tc := range extremes {
		score, _ := Score(tc)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
	}
}

func TestScore_NeutralOnlySessionKeepsAllotment(t *testing.T) {
	// Neutral codes neither earn nor penalize, but the session was coded, so
	// the directive allotment stands.
	score, _ := Score(counts(0, 0, 0, 0, 0, 0, 0, 12))
	assert.Equal(t, 25, score)
}
