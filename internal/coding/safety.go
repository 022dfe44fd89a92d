package coding

import (
	"regexp"

	"github.com/sprouthq/recording-pipeline/internal/types"
)

// safetyPatterns is the fixed list of high-severity expressions that trip the
// content-safety screen. Matching is case-insensitive against adult utterance
// text. The list is deliberately narrow: it targets intense hostility or harm
// directed at the child, not ordinary frustration.
var safetyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bi hate you\b`),
	regexp.MustCompile(`(?i)\byou(?:'re| are)\s+(?:so\s+)?(?:stupid|worthless|useless|pathetic)\b`),
	regexp.MustCompile(`(?i)\b(?:i'?ll|i am going to|i'?m going to|gonna)\s+(?:hit|hurt|smack|slap|beat)\s+you\b`),
	regexp.MustCompile(`(?i)\bshut\s+up\b.*\bor else\b`),
	regexp.MustCompile(`(?i)\bwish you (?:were never born|didn'?t exist)\b`),
	regexp.MustCompile(`(?i)\bnobody (?:loves|likes|wants) you\b`),
}

// ScanSafety checks adult utterances against the fixed safety patterns and
// returns the matching excerpts. Any match short-circuits the pipeline to the
// flagged state; the excerpts go to the notification collaborator.
func ScanSafety(utts []types.Utterance) []string {
	var excerpts []string
	for _, u := range utts {
		if !u.IsAdult() {
			continue
		}
		for _, p := range safetyPatterns {
			if p.MatchString(u.Text) {
				excerpts = append(excerpts, u.Text)
				break
			}
		}
	}
	return excerpts
}
