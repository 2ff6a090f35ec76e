package stageexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"reelpipe/internal/config"
	"reelpipe/internal/logging"
	"reelpipe/internal/services"
	"reelpipe/internal/session"
)

// ExecuteFunc performs the stage work and returns the artifacts it produced.
type ExecuteFunc func(ctx context.Context) ([]string, error)

// Options controls stage execution and manifest persistence.
type Options struct {
	Logger  *slog.Logger
	Manager *session.Manager
	Session *session.Session
	Stage   config.StageName
	Timeout time.Duration
	Execute ExecuteFunc
}

// Run moves a stage through running to succeeded or failed, persisting the
// session after each transition. The stage error is returned unchanged
// except for a timeout annotation; persistence failures are returned
// wrapped when the stage itself succeeded.
func Run(ctx context.Context, opts Options) ([]string, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}
	if opts.Execute == nil {
		return nil, fmt.Errorf("stage executor unavailable: %s", opts.Stage)
	}

	stageCtx := services.WithStage(ctx, string(opts.Stage))
	logger := logging.WithContext(stageCtx, opts.Logger)

	started := opts.Manager.Now()
	outcome := session.StageOutcome{
		Name:      opts.Stage,
		State:     session.StageRunning,
		StartedAt: &started,
	}
	if err := opts.Manager.RecordStage(stageCtx, opts.Session, outcome); err != nil {
		return nil, fmt.Errorf("persist running transition: %w", err)
	}
	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	execCtx := stageCtx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(stageCtx, opts.Timeout)
		defer cancel()
	}

	artifacts, stageErr := opts.Execute(execCtx)
	if stageErr != nil && opts.Timeout > 0 && errors.Is(execCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		stageErr = fmt.Errorf("stage timed out after %s: %w", opts.Timeout, stageErr)
	}

	finished := opts.Manager.Now()
	outcome.FinishedAt = &finished
	outcome.DurationSeconds = finished.Sub(started).Seconds()

	if stageErr != nil {
		return nil, handleFailure(stageCtx, logger, opts, outcome, stageErr)
	}

	outcome.State = session.StageSucceeded
	outcome.Artifacts = artifacts
	if err := opts.Manager.RecordStage(stageCtx, opts.Session, outcome); err != nil {
		return nil, fmt.Errorf("persist stage result: %w", err)
	}
	logger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Strings("artifacts", artifacts),
		logging.Duration("elapsed", finished.Sub(started)),
	)
	return artifacts, nil
}

// Skip records a stage as substituted by an existing artifact.
func Skip(ctx context.Context, opts Options, artifact string) error {
	if err := validate(opts); err != nil {
		return err
	}
	stageCtx := services.WithStage(ctx, string(opts.Stage))
	now := opts.Manager.Now()
	outcome := session.StageOutcome{
		Name:       opts.Stage,
		State:      session.StageSkipped,
		Artifacts:  []string{artifact},
		StartedAt:  &now,
		FinishedAt: &now,
	}
	if err := opts.Manager.RecordStage(stageCtx, opts.Session, outcome); err != nil {
		return fmt.Errorf("persist skip transition: %w", err)
	}
	logging.WithContext(stageCtx, opts.Logger).Info(
		"stage substituted",
		logging.String(logging.FieldEventType, "stage_skip"),
		logging.String("artifact", artifact),
	)
	return nil
}

// Fail records a stage failure that happened outside Run, such as a missing
// substitute or a cancellation observed between stages.
func Fail(ctx context.Context, opts Options, stageErr error) error {
	if err := validate(opts); err != nil {
		return err
	}
	stageCtx := services.WithStage(ctx, string(opts.Stage))
	now := opts.Manager.Now()
	outcome := session.StageOutcome{
		Name:       opts.Stage,
		StartedAt:  &now,
		FinishedAt: &now,
	}
	return handleFailure(stageCtx, logging.WithContext(stageCtx, opts.Logger), opts, outcome, stageErr)
}

func handleFailure(ctx context.Context, logger *slog.Logger, opts Options, outcome session.StageOutcome, stageErr error) error {
	outcome.State = session.StageFailed
	outcome.Error = strings.TrimSpace(stageErr.Error())
	outcome.ErrorKind = services.Kind(stageErr)

	logging.ErrorWithContext(
		logger,
		"stage failed",
		"stage_failure",
		logging.String("error_kind", outcome.ErrorKind),
		logging.String(logging.FieldErrorHint, hintFor(outcome.ErrorKind, opts.Stage)),
		logging.Error(stageErr),
	)
	// The failure must reach the manifest even when ctx is already cancelled.
	if err := opts.Manager.RecordStage(context.WithoutCancel(ctx), opts.Session, outcome); err != nil {
		logger.Error("failed to persist stage failure", logging.Error(err))
	}
	return stageErr
}

func hintFor(kind string, stage config.StageName) string {
	switch kind {
	case services.KindMissingArtifact:
		return "check the --existing-* path for this stage or run it instead of skipping"
	case services.KindInsufficientContent:
		return "widen the reading-time window, add subreddits, or lower --num-reels"
	case services.KindCancelled:
		return "resume the session to continue from this stage"
	case services.KindAcquire:
		return "check network access and Reddit credentials, or supply --existing-content"
	case services.KindBuild, services.KindRender:
		return "check ffmpeg output in the session log"
	case services.KindSynthesis:
		return "check that the kokoro command works for the selected voice"
	default:
		return fmt.Sprintf("inspect session.log for the %s stage", stage)
	}
}

func validate(opts Options) error {
	if opts.Manager == nil {
		return errors.New("session manager is required")
	}
	if opts.Session == nil {
		return errors.New("session is required")
	}
	if opts.Stage == "" {
		return errors.New("stage name is required")
	}
	return nil
}
