package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sprouthq/recording-pipeline/internal/types"
)

// ErrStaleStatus is returned when a stage write finds the recording no longer
// in the status the stage started from. Status only moves forward, so a stale
// write is dropped instead of applied.
var ErrStaleStatus = errors.New("recording status changed since stage started")

// statusesAllowing returns every status from which the transition table
// permits a move to target. Status-guarded writes derive their WHERE clauses
// from this so the table in types stays the single source of truth.
func statusesAllowing(target types.Status) []string {
	var from []string
	for _, s := range types.AllStatuses {
		if types.CanTransition(s, target) {
			from = append(from, string(s))
		}
	}
	return from
}

const recordingColumns = `id, owner_id, mode, audio_path, duration_ms, status,
	failed_stage, failure_msg, raw_transcript, transcript_text, language,
	review_required, tag_counts, score, feedback, created_at, transcribed_at,
	coded_at, completed_at`

// CreateRecording inserts a new recording in the pending state and returns it.
func (db *DB) CreateRecording(ctx context.Context, ownerID string, mode types.Mode, audioPath string, durationMs int64) (*types.Recording, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO recordings (owner_id, mode, audio_path, duration_ms, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+recordingColumns,
		ownerID, mode, audioPath, durationMs, types.StatusPending,
	)
	rec, err := scanRecording(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}
	return rec, nil
}

// GetRecording retrieves a recording by ID. Returns nil without error when the
// recording does not exist.
func (db *DB) GetRecording(ctx context.Context, id uuid.UUID) (*types.Recording, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+recordingColumns+` FROM recordings WHERE id = $1`, id)
	rec, err := scanRecording(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recording: %w", err)
	}
	return rec, nil
}

// SaveRawTranscript stores the verbatim provider payload. Called before
// normalization so a malformed payload is still available for inspection.
func (db *DB) SaveRawTranscript(ctx context.Context, id uuid.UUID, payload []byte) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE recordings SET raw_transcript = $1 WHERE id = $2`, payload, id)
	if err != nil {
		return fmt.Errorf("failed to save raw transcript: %w", err)
	}
	return nil
}

// SaveTranscription persists the normalized transcript and replaces all
// utterances for the recording, then advances the status to transcribed.
func (db *DB) SaveTranscription(ctx context.Context, id uuid.UUID, text, language string, utts []types.Utterance) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE recordings
		 SET transcript_text = $1, language = $2, status = $3, transcribed_at = NOW()
		 WHERE id = $4 AND status = ANY($5)`,
		text, language, types.StatusTranscribed, id, statusesAllowing(types.StatusTranscribed),
	)
	if err != nil {
		return fmt.Errorf("failed to update recording: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleStatus
	}

	if _, err := tx.Exec(ctx, `DELETE FROM utterances WHERE recording_id = $1`, id); err != nil {
		return fmt.Errorf("failed to clear utterances: %w", err)
	}
	for _, u := range utts {
		_, err := tx.Exec(ctx,
			`INSERT INTO utterances (recording_id, ord, speaker, text, start_sec, end_sec)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id, u.Order, u.Speaker, u.Text, u.StartSec, u.EndSec,
		)
		if err != nil {
			return fmt.Errorf("failed to insert utterance %d: %w", u.Order, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transcription: %w", err)
	}
	return nil
}

// SaveRoles applies the speaker-to-role mapping to every utterance sharing a
// speaker id and advances the status to roles_identified.
func (db *DB) SaveRoles(ctx context.Context, id uuid.UUID, roles map[string]types.Role, reviewRequired bool) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for speaker, role := range roles {
		_, err := tx.Exec(ctx,
			`UPDATE utterances SET role = $1 WHERE recording_id = $2 AND speaker = $3`,
			role, id, speaker,
		)
		if err != nil {
			return fmt.Errorf("failed to set role for speaker %s: %w", speaker, err)
		}
	}

	tag, err := tx.Exec(ctx,
		`UPDATE recordings SET status = $1, review_required = $2
		 WHERE id = $3 AND status = ANY($4)`,
		types.StatusRolesIdentified, reviewRequired, id, statusesAllowing(types.StatusRolesIdentified),
	)
	if err != nil {
		return fmt.Errorf("failed to update recording: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleStatus
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit roles: %w", err)
	}
	return nil
}

// SaveCodes writes the per-utterance codes (keyed by utterance order) and the
// aggregated tag counts, then advances the status to coded.
func (db *DB) SaveCodes(ctx context.Context, id uuid.UUID, codes map[int]types.Code, counts types.TagCounts) error {
	countsJSON, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("failed to marshal tag counts: %w", err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for ord, code := range codes {
		_, err := tx.Exec(ctx,
			`UPDATE utterances SET code = $1
			 WHERE recording_id = $2 AND ord = $3 AND role = $4`,
			code, id, ord, types.RoleAdult,
		)
		if err != nil {
			return fmt.Errorf("failed to set code for utterance %d: %w", ord, err)
		}
	}

	tag, err := tx.Exec(ctx,
		`UPDATE recordings SET tag_counts = $1, status = $2, coded_at = NOW()
		 WHERE id = $3 AND status = ANY($4)`,
		countsJSON, types.StatusCoded, id, statusesAllowing(types.StatusCoded),
	)
	if err != nil {
		return fmt.Errorf("failed to update recording: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleStatus
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit codes: %w", err)
	}
	return nil
}

// SaveResults writes the composite score and qualitative feedback in one
// atomic update and moves the recording to its terminal scored state. The
// score column is only ever populated by this write, so a non-null score
// implies scoring completed.
func (db *DB) SaveResults(ctx context.Context, id uuid.UUID, score int, fb types.Feedback) error {
	fbJSON, err := json.Marshal(fb)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback: %w", err)
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE recordings SET score = $1, feedback = $2, status = $3, completed_at = NOW()
		 WHERE id = $4 AND status = ANY($5)`,
		score, fbJSON, types.StatusScored, id, statusesAllowing(types.StatusScored),
	)
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleStatus
	}
	return nil
}

// MarkFailed records a fatal stage error and moves the recording to the
// terminal failed state. A recording already terminal is left untouched and
// reported as stale.
func (db *DB) MarkFailed(ctx context.Context, id uuid.UUID, stage, cause string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE recordings SET status = $1, failed_stage = $2, failure_msg = $3
		 WHERE id = $4 AND status = ANY($5)`,
		types.StatusFailed, stage, cause, id, statusesAllowing(types.StatusFailed),
	)
	if err != nil {
		return fmt.Errorf("failed to mark recording failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleStatus
	}
	return nil
}

// MarkFlagged moves the recording to the terminal flagged state after the
// safety screen trips.
func (db *DB) MarkFlagged(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE recordings SET status = $1, completed_at = NOW()
		 WHERE id = $2 AND status = ANY($3)`,
		types.StatusFlagged, id, statusesAllowing(types.StatusFlagged),
	)
	if err != nil {
		return fmt.Errorf("failed to mark recording flagged: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleStatus
	}
	return nil
}

// ResetToStatus rewinds a recording for a forced re-run: the status is set
// back and every output computed at or after the target status is cleared,
// since downstream stages derive from the overwritten one.
func (db *DB) ResetToStatus(ctx context.Context, id uuid.UUID, status types.Status) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Clear outputs from the most derived stage back to the reset point.
	_, err = tx.Exec(ctx,
		`UPDATE recordings SET score = NULL, feedback = NULL, completed_at = NULL,
		 failed_stage = NULL, failure_msg = NULL WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to clear results: %w", err)
	}

	if !status.AtOrAfter(types.StatusCoded) {
		if _, err := tx.Exec(ctx,
			`UPDATE recordings SET tag_counts = NULL, coded_at = NULL WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear codes: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE utterances SET code = NULL WHERE recording_id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear utterance codes: %w", err)
		}
	}
	if !status.AtOrAfter(types.StatusRolesIdentified) {
		if _, err := tx.Exec(ctx,
			`UPDATE recordings SET review_required = FALSE WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear review flag: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE utterances SET role = NULL WHERE recording_id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear utterance roles: %w", err)
		}
	}
	if !status.AtOrAfter(types.StatusTranscribed) {
		if _, err := tx.Exec(ctx,
			`UPDATE recordings SET transcript_text = NULL, language = NULL, transcribed_at = NULL
			 WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear transcript: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM utterances WHERE recording_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete utterances: %w", err)
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE recordings SET status = $1 WHERE id = $2`, status, id); err != nil {
		return fmt.Errorf("failed to reset status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}
	return nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecording(row rowScanner) (*types.Recording, error) {
	var rec types.Recording
	var failedStage, failureMsg, transcriptText, language *string
	var countsJSON, fbJSON []byte

	err := row.Scan(
		&rec.ID, &rec.OwnerID, &rec.Mode, &rec.AudioPath, &rec.DurationMs,
		&rec.Status, &failedStage, &failureMsg, &rec.RawTranscript,
		&transcriptText, &language, &rec.ReviewRequired, &countsJSON,
		&rec.Score, &fbJSON, &rec.CreatedAt, &rec.TranscribedAt,
		&rec.CodedAt, &rec.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if failedStage != nil {
		rec.FailedStage = *failedStage
	}
	if failureMsg != nil {
		rec.FailureMsg = *failureMsg
	}
	if transcriptText != nil {
		rec.TranscriptText = *transcriptText
	}
	if language != nil {
		rec.Language = *language
	}
	if len(countsJSON) > 0 {
		counts := types.TagCounts{}
		if err := json.Unmarshal(countsJSON, &counts); err != nil {
			return nil, fmt.Errorf("failed to decode tag counts: %w", err)
		}
		rec.TagCounts = counts
	}
	if len(fbJSON) > 0 {
		var fb types.Feedback
		if err := json.Unmarshal(fbJSON, &fb); err != nil {
			return nil, fmt.Errorf("failed to decode feedback: %w", err)
		}
		rec.Feedback = &fb
	}

	return &rec, nil
}
