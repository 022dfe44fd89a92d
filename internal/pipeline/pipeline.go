// Package pipeline orchestrates the recording analysis stages: transcription,
// role identification, behavioral coding, and scoring. All status transitions
// happen here; adapters never mutate pipeline state themselves.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/sprouthq/recording-pipeline/internal/coding"
	"github.com/sprouthq/recording-pipeline/internal/db"
	"github.com/sprouthq/recording-pipeline/internal/feedback"
	"github.com/sprouthq/recording-pipeline/internal/llm"
	"github.com/sprouthq/recording-pipeline/internal/notify"
	"github.com/sprouthq/recording-pipeline/internal/roles"
	"github.com/sprouthq/recording-pipeline/internal/scoring"
	"github.com/sprouthq/recording-pipeline/internal/storage"
	"github.com/sprouthq/recording-pipeline/internal/transcribe"
	"github.com/sprouthq/recording-pipeline/internal/transcript"
	"github.com/sprouthq/recording-pipeline/internal/types"
)

// Stage names recorded on failure and accepted by Rerun.
const (
	StageTranscription      = "transcription"
	StageRoleIdentification = "role_identification"
	StageCoding             = "coding"
	StageScoring            = "scoring"
)

// Store is the persistence contract the orchestrator depends on. *db.DB
// satisfies it; tests inject fakes.
type Store interface {
	GetRecording(ctx context.Context, id uuid.UUID) (*types.Recording, error)
	SaveRawTranscript(ctx context.Context, id uuid.UUID, payload []byte) error
	SaveTranscription(ctx context.Context, id uuid.UUID, text, language string, utts []types.Utterance) error
	SaveRoles(ctx context.Context, id uuid.UUID, roles map[string]types.Role, reviewRequired bool) error
	SaveCodes(ctx context.Context, id uuid.UUID, codes map[int]types.Code, counts types.TagCounts) error
	SaveResults(ctx context.Context, id uuid.UUID, score int, fb types.Feedback) error
	MarkFailed(ctx context.Context, id uuid.UUID, stage, cause string) error
	MarkFlagged(ctx context.Context, id uuid.UUID) error
	ResetToStatus(ctx context.Context, id uuid.UUID, status types.Status) error
	Utterances(ctx context.Context, id uuid.UUID) ([]types.Utterance, error)
}

// Transcriber is the speech-to-text contract. *transcribe.Client satisfies it.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) ([]byte, *transcribe.Result, error)
}

// Orchestrator advances recordings through the pipeline. All collaborators are
// injected; it holds no hidden globals.
type Orchestrator struct {
	store    Store
	objects  storage.ObjectStore
	stt      Transcriber
	llm      llm.Client
	notifier notify.Notifier
	retry    RetryPolicy
	log      *logrus.Logger

	// flights guarantees at most one in-flight execution per recording id;
	// concurrent callers for the same id wait and share the result.
	flights singleflight.Group
}

// New constructs an orchestrator.
func New(store Store, objects storage.ObjectStore, stt Transcriber, client llm.Client, notifier notify.Notifier, retry RetryPolicy, log *logrus.Logger) *Orchestrator {
	if log == nil {
		log = logrus.New()
	}
	return &Orchestrator{
		store:    store,
		objects:  objects,
		stt:      stt,
		llm:      client,
		notifier: notifier,
		retry:    retry,
		log:      log,
	}
}

// Advance runs every stage still pending for the recording, persisting each
// stage's output before moving on. It is idempotent: a recording already in a
// terminal state is returned untouched, and a completed stage is never
// re-executed. Stage failures are recorded on the row, not returned; the only
// errors surfaced here are an unknown id or a persistence fault.
func (o *Orchestrator) Advance(ctx context.Context, id uuid.UUID) (types.Status, error) {
	v, err, _ := o.flights.Do(id.String(), func() (any, error) {
		return o.advance(ctx, id)
	})
	if err != nil {
		return "", err
	}
	return v.(types.Status), nil
}

// stageResets maps each stage name to the status a recording rewinds to
// before that stage re-runs.
var stageResets = map[string]types.Status{
	StageTranscription:      types.StatusPending,
	StageRoleIdentification: types.StatusTranscribed,
	StageCoding:             types.StatusRolesIdentified,
	StageScoring:            types.StatusCoded,
}

// Rerun forces a stage to run again. The recording is rewound to the stage's
// predecessor state, which clears that stage's output and everything derived
// from it, then the pipeline advances normally. A stage the recording never
// reached cannot be re-run.
func (o *Orchestrator) Rerun(ctx context.Context, id uuid.UUID, stage string) (types.Status, error) {
	reset, ok := stageResets[stage]
	if !ok {
		return "", fmt.Errorf("unknown stage %q", stage)
	}

	v, err, _ := o.flights.Do(id.String(), func() (any, error) {
		rec, err := o.store.GetRecording(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, ErrNotFound
		}
		if !furthestProgress(rec).AtOrAfter(reset) {
			return nil, fmt.Errorf("stage %s has not run for recording %s", stage, id)
		}
		if err := o.store.ResetToStatus(ctx, id, reset); err != nil {
			return nil, err
		}
		o.log.WithFields(logrus.Fields{"recording_id": id, "stage": stage}).
			Info("recording rewound for forced re-run")
		return o.advance(ctx, id)
	})
	if err != nil {
		return "", err
	}
	return v.(types.Status), nil
}

// furthestProgress returns the last progress state the recording actually
// reached. A failed recording never completed the stage that failed; a
// flagged one completed coding only if its tag counts were persisted.
func furthestProgress(rec *types.Recording) types.Status {
	switch rec.Status {
	case types.StatusFailed:
		if s, ok := stageResets[rec.FailedStage]; ok {
			return s
		}
		return types.StatusPending
	case types.StatusFlagged:
		if rec.TagCounts != nil {
			return types.StatusCoded
		}
		return types.StatusRolesIdentified
	default:
		return rec.Status
	}
}

// advance is the single-flight body: it loops from the recording's current
// status, executing exactly the next pending stage each iteration.
func (o *Orchestrator) advance(ctx context.Context, id uuid.UUID) (types.Status, error) {
	rec, err := o.store.GetRecording(ctx, id)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", ErrNotFound
	}

	for !rec.Status.Terminal() {
		stageErr := o.runStage(ctx, rec)
		if stageErr != nil {
			var stage *StageError
			switch {
			case errors.As(stageErr, &stage):
				o.log.WithFields(logrus.Fields{
					"recording_id": rec.ID,
					"stage":        stage.Stage,
				}).WithError(stage.Cause).Error("stage failed")
				err := o.store.MarkFailed(ctx, rec.ID, stage.Stage, stage.Cause.Error())
				if err == nil {
					return types.StatusFailed, nil
				}
				if !errors.Is(err, db.ErrStaleStatus) {
					return "", err
				}
			case !errors.Is(stageErr, db.ErrStaleStatus):
				return "", stageErr
			}
			// Another writer advanced the recording; fall through to re-read
			// and observe whatever state it reached.
		}

		rec, err = o.store.GetRecording(ctx, id)
		if err != nil {
			return "", err
		}
		if rec == nil {
			return "", ErrNotFound
		}
	}

	return rec.Status, nil
}

// runStage executes the single stage that follows the recording's current
// status. A *StageError marks a fatal stage failure; other errors are
// persistence faults.
func (o *Orchestrator) runStage(ctx context.Context, rec *types.Recording) error {
	switch rec.Status {
	case types.StatusPending:
		return o.runTranscription(ctx, rec)
	case types.StatusTranscribed:
		return o.runRoleIdentification(ctx, rec)
	case types.StatusRolesIdentified:
		return o.runCoding(ctx, rec)
	case types.StatusCoded:
		return o.runScoring(ctx, rec)
	default:
		return fmt.Errorf("no stage runnable from status %s", rec.Status)
	}
}

func (o *Orchestrator) runTranscription(ctx context.Context, rec *types.Recording) error {
	log := o.stageLog(rec, StageTranscription)
	log.Info("transcribing audio")

	audio, err := o.objects.Get(rec.AudioPath)
	if err != nil {
		return &StageError{Stage: StageTranscription, Cause: err}
	}

	var raw []byte
	err = o.retry.Do(ctx, log, func() error {
		var callErr error
		raw, _, callErr = o.stt.Transcribe(ctx, audio)
		return callErr
	})
	// The raw payload is persisted even when the call or decode failed, so a
	// malformed response can be inspected offline.
	if len(raw) > 0 {
		if saveErr := o.store.SaveRawTranscript(ctx, rec.ID, raw); saveErr != nil {
			return saveErr
		}
	}
	if err != nil {
		return &StageError{Stage: StageTranscription, Cause: err}
	}

	utts, language, err := transcript.Normalize(raw)
	if err != nil {
		return &StageError{Stage: StageTranscription, Cause: err}
	}

	text := transcript.Format(utts)
	if err := o.store.SaveTranscription(ctx, rec.ID, text, language, utts); err != nil {
		return err
	}
	log.WithField("utterances", len(utts)).Info("transcription complete")
	return nil
}

func (o *Orchestrator) runRoleIdentification(ctx context.Context, rec *types.Recording) error {
	log := o.stageLog(rec, StageRoleIdentification)
	log.Info("identifying speaker roles")

	utts, err := o.store.Utterances(ctx, rec.ID)
	if err != nil {
		return err
	}

	var result *roles.Result
	err = o.retry.Do(ctx, log, func() error {
		var callErr error
		result, callErr = roles.Identify(ctx, utts, o.llm)
		return callErr
	})
	if err != nil {
		return &StageError{Stage: StageRoleIdentification, Cause: err}
	}

	reviewRequired := !result.HasAdult && len(utts) > 0
	if reviewRequired {
		log.Warn("no adult speaker resolved, marking for manual review")
	}
	if err := o.store.SaveRoles(ctx, rec.ID, result.Roles, reviewRequired); err != nil {
		return err
	}
	return nil
}

func (o *Orchestrator) runCoding(ctx context.Context, rec *types.Recording) error {
	log := o.stageLog(rec, StageCoding)
	log.Info("coding adult utterances")

	utts, err := o.store.Utterances(ctx, rec.ID)
	if err != nil {
		return err
	}

	// The safety screen runs before the coding call so a flagged recording
	// never spends coding tokens.
	if excerpts := coding.ScanSafety(utts); len(excerpts) > 0 {
		log.WithField("excerpts", len(excerpts)).Warn("safety screen tripped, flagging recording")
		if err := o.store.MarkFlagged(ctx, rec.ID); err != nil {
			return err
		}
		if o.notifier != nil {
			if err := o.notifier.Notify(ctx, rec.ID, excerpts); err != nil {
				log.WithError(err).Error("safety notification failed")
			}
		}
		return nil
	}

	var result *coding.Result
	err = o.retry.Do(ctx, log, func() error {
		var callErr error
		result, callErr = coding.CodeUtterances(ctx, rec.Mode, utts, o.llm)
		return callErr
	})
	if err != nil {
		return &StageError{Stage: StageCoding, Cause: err}
	}

	if err := o.store.SaveCodes(ctx, rec.ID, result.Codes, result.Counts); err != nil {
		return err
	}
	log.WithField("coded", len(result.Codes)).Info("coding complete")
	return nil
}

func (o *Orchestrator) runScoring(ctx context.Context, rec *types.Recording) error {
	log := o.stageLog(rec, StageScoring)

	score, _ := scoring.Score(rec.TagCounts)
	log.WithField("score", score).Info("composite score computed")

	utts, err := o.store.Utterances(ctx, rec.ID)
	if err != nil {
		return err
	}

	var fb types.Feedback
	fbErr := o.retry.Do(ctx, log, func() error {
		var callErr error
		fb, callErr = feedback.Generate(ctx, rec.TagCounts, utts, o.llm)
		return callErr
	})
	if fbErr != nil {
		// Advisory stage: degrade to the fallback report, never fail the run.
		log.WithError(fbErr).Warn("feedback degraded to fallback")
		fb = feedback.Fallback()
	}

	if err := o.store.SaveResults(ctx, rec.ID, score, fb); err != nil {
		return err
	}
	return nil
}

func (o *Orchestrator) stageLog(rec *types.Recording, stage string) *logrus.Entry {
	return o.log.WithFields(logrus.Fields{
		"recording_id": rec.ID,
		"stage":        stage,
	})
}
