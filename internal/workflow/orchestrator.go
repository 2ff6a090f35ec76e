package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"reelpipe/internal/config"
	"reelpipe/internal/logging"
	"reelpipe/internal/services"
	"reelpipe/internal/session"
	"reelpipe/internal/stage"
	"reelpipe/internal/stageexec"
)

// Orchestrator runs sessions against a set of collaborators.
type Orchestrator struct {
	sessions *session.Manager
	collab   stage.Collaborators
	logger   *slog.Logger
}

// New constructs an Orchestrator.
func New(sessions *session.Manager, collab stage.Collaborators, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		sessions: sessions,
		collab:   collab,
		logger:   logger,
	}
}

// Run creates a session for cfg and executes it. The session is returned
// even when a stage fails so callers can report where it stopped.
func (o *Orchestrator) Run(ctx context.Context, cfg *config.Config) (*session.Session, error) {
	if cfg == nil {
		return nil, errors.New("workflow: configuration is required")
	}
	s, err := o.sessions.Create(ctx, *cfg)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return s, o.Execute(ctx, s)
}

// Execute drives an existing session through every stage using the
// configuration stored on the session.
func (o *Orchestrator) Execute(ctx context.Context, s *session.Session) error {
	ctx = services.WithSessionID(ctx, s.ID)
	ctx = services.WithRunID(ctx, s.RunID)

	logger := o.logger
	if sessionLog, err := logging.OpenSessionLog(s.LogPath(), s.Config.Logging.Level); err == nil {
		defer sessionLog.Close()
		logger = sessionLog.Attach(logger)
	} else {
		logging.WarnWithContext(o.logger, "session log unavailable", "session_log",
			logging.String(logging.FieldImpact, "this run is only logged to the console"),
			logging.Error(err),
		)
	}
	logger = logging.WithContext(ctx, logger)
	started := time.Now()
	logger.Info("session started",
		logging.String(logging.FieldEventType, "session_start"),
		logging.String("session_dir", s.Dir),
		logging.String("background_plan", s.Config.Stages.Background.String()),
		logging.String("content_plan", s.Config.Stages.Content.String()),
		logging.String("reels_plan", s.Config.Stages.Reels.String()),
	)

	if name, err := CheckSubstitutes(&s.Config); err != nil {
		_ = stageexec.Fail(ctx, o.stageOptions(logger, s, name), err)
		return o.abort(ctx, logger, s, err)
	}

	for _, name := range config.StageOrder {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err := services.Wrap(services.ErrCancelled, string(name), "start", "run cancelled before stage started", ctxErr)
			_ = stageexec.Fail(ctx, o.stageOptions(logger, s, name), err)
			return o.abort(ctx, logger, s, err)
		}

		opts := o.stageOptions(logger, s, name)
		plan := s.Config.Stages.Plan(name)
		if plan.Substitute() {
			adoptArtifact(s, name, plan.Path)
			if err := stageexec.Skip(ctx, opts, plan.Path); err != nil {
				return o.abort(ctx, logger, s, err)
			}
			continue
		}

		opts.Execute = o.executorFor(logger, s, name)
		if _, err := stageexec.Run(ctx, opts); err != nil {
			return o.abort(ctx, logger, s, err)
		}
	}

	if err := o.sessions.Finish(context.WithoutCancel(ctx), s, session.StatusCompleted, nil, ""); err != nil {
		return fmt.Errorf("persist completed session: %w", err)
	}
	logger.Info("session completed",
		logging.String(logging.FieldEventType, "session_complete"),
		logging.Int("clips", len(s.Clips)),
		logging.String("reels_path", s.ReelsPath),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (o *Orchestrator) stageOptions(logger *slog.Logger, s *session.Session, name config.StageName) stageexec.Options {
	return stageexec.Options{
		Logger:  logger,
		Manager: o.sessions,
		Session: s,
		Stage:   name,
		Timeout: time.Duration(s.Config.Workflow.StageTimeout) * time.Second,
	}
}

func (o *Orchestrator) executorFor(logger *slog.Logger, s *session.Session, name config.StageName) stageexec.ExecuteFunc {
	switch name {
	case config.StageBackground:
		return func(ctx context.Context) ([]string, error) { return o.buildBackground(ctx, logger, s) }
	case config.StageContent:
		return func(ctx context.Context) ([]string, error) { return o.acquireContent(ctx, logger, s) }
	case config.StageReels:
		return func(ctx context.Context) ([]string, error) { return o.renderReels(ctx, logger, s) }
	default:
		return nil
	}
}

func (o *Orchestrator) abort(ctx context.Context, logger *slog.Logger, s *session.Session, cause error) error {
	kind := services.Kind(cause)
	if err := o.sessions.Finish(context.WithoutCancel(ctx), s, session.StatusAborted, cause, kind); err != nil {
		logger.Error("failed to persist aborted session", logging.Error(err))
	}
	logging.ErrorWithContext(logger, "session aborted", "session_abort",
		logging.String("error_kind", kind),
		logging.Error(cause),
	)
	return cause
}

func adoptArtifact(s *session.Session, name config.StageName, path string) {
	switch name {
	case config.StageBackground:
		s.BackgroundPath = path
	case config.StageContent:
		s.ContentPath = path
	case config.StageReels:
		s.ReelsPath = path
	}
}
