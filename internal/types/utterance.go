package types

import "github.com/google/uuid"

// Role classifies who produced an utterance.
type Role string

const (
	RoleAdult   Role = "adult"
	RoleChild   Role = "child"
	RoleUnknown Role = "unknown"
)

// CoerceRole maps an arbitrary label onto the closed role vocabulary. Anything
// unrecognized degrades to unknown rather than erroring.
func CoerceRole(label string) Role {
	switch Role(label) {
	case RoleAdult:
		return RoleAdult
	case RoleChild:
		return RoleChild
	default:
		return RoleUnknown
	}
}

// Code is one category of the behavioral taxonomy applied to adult utterances.
type Code string

const (
	CodePraise         Code = "praise"
	CodeReflection     Code = "reflection"
	CodeDescription    Code = "description"
	CodeQuestion       Code = "question"
	CodeCommand        Code = "command"
	CodeCriticism      Code = "criticism"
	CodeNegativePhrase Code = "negative_phrase"
	CodeNeutral        Code = "neutral"
)

// PositiveCodes are the categories that earn score toward the composite.
var PositiveCodes = []Code{CodePraise, CodeReflection, CodeDescription}

// DirectiveCodes are the categories counted against the directive allotment.
var DirectiveCodes = []Code{CodeQuestion, CodeCommand, CodeCriticism, CodeNegativePhrase}

// AllCodes lists every taxonomy category in display order.
var AllCodes = []Code{
	CodePraise, CodeReflection, CodeDescription,
	CodeQuestion, CodeCommand, CodeCriticism, CodeNegativePhrase,
	CodeNeutral,
}

// CoerceCode maps an arbitrary classifier label onto the closed taxonomy.
// Anything unrecognized lands in the neutral bucket.
func CoerceCode(label string) Code {
	for _, c := range AllCodes {
		if Code(label) == c {
			return c
		}
	}
	return CodeNeutral
}

// Utterance is one contiguous stretch of speech by a single speaker. Role and
// Code are nil until the corresponding stage has run.
type Utterance struct {
	RecordingID uuid.UUID `json:"recording_id"`
	Order       int       `json:"order"`
	Speaker     string    `json:"speaker"`
	Role        *Role     `json:"role,omitempty"`
	Text        string    `json:"text"`
	StartSec    float64   `json:"start_sec"`
	EndSec      float64   `json:"end_sec"`
	Code        *Code     `json:"code,omitempty"`
}

// IsAdult reports whether the utterance has been attributed to the adult
// speaker. Unresolved roles count as not adult.
func (u *Utterance) IsAdult() bool {
	return u.Role != nil && *u.Role == RoleAdult
}
