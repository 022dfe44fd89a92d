// Package scoring converts behavioral tag counts into a bounded composite
// score. Pure computation, no external calls.
package scoring

import (
	"math"

	"github.com/sprouthq/recording-pipeline/internal/types"
)

// Scoring constants. Three positive categories each earn up to positiveMax
// points against positiveTarget occurrences; the directive allotment starts at
// directiveAllotment and loses directivePenalty per occurrence beyond
// directiveTolerance, floored at zero.
const (
	positiveTarget     = 10
	positiveMax        = 25.0
	directiveAllotment = 25.0
	directiveTolerance = 3
	directivePenalty   = 5.0
)

// Breakdown itemizes how the composite score was assembled.
type Breakdown struct {
	Positive  map[types.Code]float64 `json:"positive"`
	Directive float64                `json:"directive"`
}

// Score computes the composite score and its breakdown from tag counts.
// A recording with no coded utterances scores exactly zero; the result is
// always within [0, 100].
func Score(counts types.TagCounts) (int, Breakdown) {
	breakdown := Breakdown{Positive: make(map[types.Code]float64, len(types.PositiveCodes))}

	if counts.Total() == 0 {
		for _, code := range types.PositiveCodes {
			breakdown.Positive[code] = 0
		}
		return 0, breakdown
	}

	total := 0.0
	for _, code := range types.PositiveCodes {
		sub := positiveSubScore(counts[code])
		breakdown.Positive[code] = sub
		total += sub
	}

	breakdown.Directive = directiveSubScore(counts.DirectiveTotal())
	total += breakdown.Directive

	score := int(math.Round(total))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, breakdown
}

// positiveSubScore scales a count against the target, capped at the maximum.
// Exceeding the target earns no bonus.
func positiveSubScore(count int) float64 {
	if count <= 0 {
		return 0
	}
	if count >= positiveTarget {
		return positiveMax
	}
	return positiveMax * float64(count) / float64(positiveTarget)
}

// directiveSubScore reduces the starting allotment once the directive count
// exceeds the tolerance, floored at zero.
func directiveSubScore(count int) float64 {
	if count <= directiveTolerance {
		return directiveAllotment
	}
	excess := float64(count - directiveTolerance)
	remaining := directiveAllotment - excess*directivePenalty
	if remaining < 0 {
		return 0
	}
	return remaining
}
