package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"reelpipe/internal/allocator"
	"reelpipe/internal/content"
	"reelpipe/internal/logging"
	"reelpipe/internal/services"
	"reelpipe/internal/session"
	"reelpipe/internal/stage"
	"reelpipe/internal/textutil"
)

func (o *Orchestrator) renderReels(ctx context.Context, logger *slog.Logger, s *session.Session) ([]string, error) {
	if o.collab.Narrator == nil || o.collab.Renderer == nil {
		return nil, services.Wrap(services.ErrRender, "reels", "render", "narrator and renderer must both be configured", nil)
	}
	if s.BackgroundPath == "" {
		return nil, services.Wrap(services.ErrMissingArtifact, "reels", "render", "no background video available", nil)
	}
	if s.ContentPath == "" {
		return nil, services.Wrap(services.ErrMissingArtifact, "reels", "load content", "no content export available", nil)
	}
	cfg := s.Config

	items, err := content.Load(s.ContentPath)
	if err != nil {
		return nil, services.Wrap(services.ErrMissingArtifact, "reels", "load content",
			fmt.Sprintf("content export %s is unreadable", s.ContentPath), err)
	}

	filtered := content.Filter(items, cfg.Content.MinReadingTime, cfg.Content.MaxReadingTime)
	logger.Info("content filtered",
		logging.Int("loaded", len(items)),
		logging.Int("passing", filtered.Passing),
		logging.Int("rejected", filtered.Rejected),
		logging.Float64("min_reading_time", cfg.Content.MinReadingTime),
		logging.Float64("max_reading_time", cfg.Content.MaxReadingTime),
	)
	if filtered.Passing < cfg.Reels.NumReels {
		logging.WarnWithContext(logger, "fewer passing items than requested reels", "content_shortfall",
			logging.Int("passing", filtered.Passing),
			logging.Int("requested", cfg.Reels.NumReels),
			logging.String(logging.FieldImpact, "allocation will fail unless enough items qualify"),
		)
	}

	alloc, allocErr := allocator.Allocate(filtered.Candidates, allocator.Request{
		NumReels:        cfg.Reels.NumReels,
		MaxReelDuration: cfg.Reels.MaxDuration,
		VoiceSpeed:      cfg.Reels.VoiceSpeed,
		TextStyle:       cfg.Reels.TextStyle,
		TextAnimation:   cfg.Reels.TextAnimation,
		Voices:          cfg.Voices(),
	})
	s.Rejections = alloc.Rejections
	for _, r := range alloc.Rejections {
		logger.Debug("candidate rejected",
			logging.Int("rank", r.Rank),
			logging.String("item", r.ItemKey),
			logging.String("reason", r.Reason),
		)
	}
	if allocErr != nil {
		return nil, allocErr
	}
	s.Assignments = alloc.Assignments
	if err := o.sessions.Persist(ctx, s); err != nil {
		return nil, fmt.Errorf("persist assignments: %w", err)
	}

	workers := max(cfg.Reels.Workers, 1)
	logger.Info("rendering reels",
		logging.Int("reels", len(alloc.Assignments)),
		logging.Int("workers", workers),
	)

	clips := make([]session.Clip, len(alloc.Assignments))
	done := make([]bool, len(alloc.Assignments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, a := range alloc.Assignments {
		g.Go(func() error {
			clip, err := o.produceClip(gctx, logger, s, a)
			if err != nil {
				return err
			}
			clips[i] = clip
			done[i] = true
			return nil
		})
	}
	waitErr := g.Wait()

	s.Clips = s.Clips[:0]
	for i, ok := range done {
		if ok {
			s.Clips = append(s.Clips, clips[i])
		}
	}
	if waitErr != nil {
		return nil, waitErr
	}
	s.ReelsPath = s.ReelsDir()
	return []string{s.ReelsPath}, nil
}

func (o *Orchestrator) produceClip(ctx context.Context, logger *slog.Logger, s *session.Session, a allocator.Assignment) (session.Clip, error) {
	ctx = services.WithRequestID(ctx, uuid.NewString())
	clipLogger := logging.WithContext(ctx, logger).With(
		logging.Int(logging.FieldClipIndex, a.ClipIndex),
		logging.String("voice", a.Voice),
	)
	text := a.Item.Text()

	narration, err := o.collab.Narrator.Synthesize(ctx, stage.NarrateRequest{
		Text:       text,
		Voice:      a.Voice,
		Language:   s.Config.Reels.Language,
		Speed:      a.VoiceSpeed,
		OutputPath: filepath.Join(s.AudioDir(), fmt.Sprintf("reel_%02d.wav", a.ClipIndex)),
	})
	if err != nil {
		return session.Clip{}, ensureMarker(err, services.ErrSynthesis, "reels", fmt.Sprintf("narrate clip %d", a.ClipIndex))
	}
	duration := narration.DurationSeconds
	if duration <= 0 {
		duration = a.TargetDuration
	}
	clipLogger.Debug("narration ready",
		logging.String("audio", narration.AudioPath),
		logging.Float64("seconds", duration),
	)

	out := filepath.Join(s.ReelsDir(), fmt.Sprintf("reel_%02d_%s.mp4", a.ClipIndex, textutil.Slug(a.Item.Title, 40)))
	path, err := o.collab.Renderer.Render(ctx, stage.RenderRequest{
		BackgroundPath: s.BackgroundPath,
		AudioPath:      narration.AudioPath,
		Text:           text,
		Style:          a.TextStyle,
		Animation:      a.TextAnimation,
		Duration:       duration,
		ClipIndex:      a.ClipIndex,
		OutputPath:     out,
	})
	if err != nil {
		return session.Clip{}, ensureMarker(err, services.ErrRender, "reels", fmt.Sprintf("render clip %d", a.ClipIndex))
	}
	if path == "" {
		path = out
	}
	clipLogger.Info("reel rendered",
		logging.String(logging.FieldEventType, "clip_complete"),
		logging.String("output", path),
		logging.Float64("seconds", duration),
	)
	return session.Clip{
		ClipIndex:        a.ClipIndex,
		Path:             path,
		AudioPath:        narration.AudioPath,
		NarrationSeconds: duration,
		Voice:            a.Voice,
		ItemKey:          a.Item.Key(),
	}, nil
}
