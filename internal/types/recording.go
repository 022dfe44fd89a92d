// Package types defines the core domain model shared by every pipeline stage:
// recordings, utterances, the processing status machine, and the closed
// behavioral taxonomy.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Status is a recording's position in the processing state machine.
type Status string

const (
	StatusPending         Status = "pending"
	StatusTranscribed     Status = "transcribed"
	StatusRolesIdentified Status = "roles_identified"
	StatusCoded           Status = "coded"
	StatusScored          Status = "scored"
	StatusFailed          Status = "failed"
	StatusFlagged         Status = "flagged"
)

// AllStatuses lists every status in the state machine.
var AllStatuses = []Status{
	StatusPending, StatusTranscribed, StatusRolesIdentified,
	StatusCoded, StatusScored, StatusFailed, StatusFlagged,
}

// stageRank orders the progress states. Terminal failure states carry no rank.
var stageRank = map[Status]int{
	StatusPending:         0,
	StatusTranscribed:     1,
	StatusRolesIdentified: 2,
	StatusCoded:           3,
	StatusScored:          4,
}

// Terminal reports whether no further stage may run from this status.
func (s Status) Terminal() bool {
	return s == StatusScored || s == StatusFailed || s == StatusFlagged
}

// AtOrAfter reports whether s is at least as far along the progress order as
// other. Terminal failure states carry no rank and always report false.
func (s Status) AtOrAfter(other Status) bool {
	sr, ok := stageRank[s]
	if !ok {
		return false
	}
	or, ok := stageRank[other]
	if !ok {
		return false
	}
	return sr >= or
}

// CanTransition reports whether a recording may move from one status to
// another. Progress is strictly forward, one stage at a time; any in-flight
// state may fail, and only the coding-adjacent states may be flagged by the
// safety screen.
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusFailed {
		return true
	}
	if to == StatusFlagged {
		return from == StatusRolesIdentified || from == StatusCoded
	}
	fromRank, ok := stageRank[from]
	if !ok {
		return false
	}
	toRank, ok := stageRank[to]
	if !ok {
		return false
	}
	return toRank == fromRank+1
}

// Mode is the interaction style the session was recorded under. It steers the
// coding prompt, not the state machine.
type Mode string

const (
	ModeChildLed  Mode = "child_led"
	ModeParentLed Mode = "parent_led"
)

// TagCounts tallies coded adult utterances per taxonomy category.
type TagCounts map[Code]int

// Total returns the number of coded utterances across all categories.
func (tc TagCounts) Total() int {
	total := 0
	for _, n := range tc {
		total += n
	}
	return total
}

// DirectiveTotal returns the combined count of the directive categories.
func (tc TagCounts) DirectiveTotal() int {
	total := 0
	for _, code := range DirectiveCodes {
		total += tc[code]
	}
	return total
}

// Feedback is the short qualitative report produced for a scored session.
type Feedback struct {
	Highlight     string `json:"highlight"`
	Tip           string `json:"tip"`
	Encouragement string `json:"encouragement"`
}

// Recording is one analysis job: the uploaded audio plus every stage output
// accumulated so far. Nullable columns map to pointers or zero values.
type Recording struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Mode       Mode      `json:"mode"`
	AudioPath  string    `json:"audio_path"`
	DurationMs int64     `json:"duration_ms"`
	Status     Status    `json:"status"`

	FailedStage string `json:"failed_stage,omitempty"`
	FailureMsg  string `json:"failure_msg,omitempty"`

	// RawTranscript is the verbatim provider payload, kept even when it failed
	// to normalize.
	RawTranscript  []byte    `json:"-"`
	TranscriptText string    `json:"transcript_text,omitempty"`
	Language       string    `json:"language,omitempty"`
	ReviewRequired bool      `json:"review_required"`
	TagCounts      TagCounts `json:"tag_counts,omitempty"`
	Score          *int      `json:"score,omitempty"`
	Feedback       *Feedback `json:"feedback,omitempty"`

	CreatedAt     time.Time  `json:"created_at"`
	TranscribedAt *time.Time `json:"transcribed_at,omitempty"`
	CodedAt       *time.Time `json:"coded_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}
