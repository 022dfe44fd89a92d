package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sprouthq/recording-pipeline/internal/types"
)

// Utterances retrieves every utterance for a recording in order.
func (db *DB) Utterances(ctx context.Context, recordingID uuid.UUID) ([]types.Utterance, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT recording_id, ord, speaker, role, text, start_sec, end_sec, code
		 FROM utterances WHERE recording_id = $1 ORDER BY ord ASC`,
		recordingID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list utterances: %w", err)
	}
	defer rows.Close()

	var utts []types.Utterance
	for rows.Next() {
		var u types.Utterance
		var role, code *string
		if err := rows.Scan(&u.RecordingID, &u.Order, &u.Speaker, &role,
			&u.Text, &u.StartSec, &u.EndSec, &code); err != nil {
			return nil, fmt.Errorf("failed to scan utterance: %w", err)
		}
		if role != nil {
			r := types.Role(*role)
			u.Role = &r
		}
		if code != nil {
			c := types.Code(*code)
			u.Code = &c
		}
		utts = append(utts, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate utterances: %w", err)
	}
	return utts, nil
}
