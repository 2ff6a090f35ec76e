package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"reelpipe/internal/content"
	"reelpipe/internal/fileutil"
	"reelpipe/internal/logging"
	"reelpipe/internal/services"
	"reelpipe/internal/session"
	"reelpipe/internal/stage"
)

// StockExtensions are the stock clip formats the background stage picks up.
var StockExtensions = []string{".mp4", ".mov", ".mkv", ".avi", ".webm"}

func (o *Orchestrator) buildBackground(ctx context.Context, logger *slog.Logger, s *session.Session) ([]string, error) {
	if o.collab.Builder == nil {
		return nil, services.Wrap(services.ErrBuild, "background", "build", "no background builder configured", nil)
	}
	cfg := s.Config
	clips, err := fileutil.ListFiles(cfg.StockVideosFolder, StockExtensions...)
	if err != nil {
		return nil, services.Wrap(services.ErrBuild, "background", "list stock clips",
			fmt.Sprintf("cannot read stock folder %s", cfg.StockVideosFolder), err)
	}
	if len(clips) == 0 {
		return nil, services.Wrap(services.ErrBuild, "background", "list stock clips",
			fmt.Sprintf("no stock clips found in %s", cfg.StockVideosFolder), nil)
	}
	logger.Info("building background",
		logging.Int("stock_clips", len(clips)),
		logging.Int("target_seconds", cfg.Background.Duration),
		logging.String("effect", cfg.Background.EffectType),
		logging.String("transition", cfg.Background.TransitionType),
	)

	out := filepath.Join(s.BackgroundsDir(), "background_"+s.ID+".mp4")
	path, err := o.collab.Builder.Build(ctx, stage.BuildRequest{
		StockClips:         clips,
		TargetDuration:     float64(cfg.Background.Duration),
		NumClips:           cfg.Background.NumClips,
		Effect:             cfg.Background.EffectType,
		Transition:         cfg.Background.TransitionType,
		TransitionDuration: cfg.Background.TransitionDuration,
		OutputPath:         out,
	})
	if err != nil {
		return nil, ensureMarker(err, services.ErrBuild, "background", "build")
	}
	if path == "" {
		path = out
	}
	if err := fileutil.CheckNonEmptyFile(path); err != nil {
		return nil, services.Wrap(services.ErrBuild, "background", "verify output", "builder reported success without a usable video", err)
	}
	s.BackgroundPath = path
	return []string{path}, nil
}

func (o *Orchestrator) acquireContent(ctx context.Context, logger *slog.Logger, s *session.Session) ([]string, error) {
	if o.collab.Acquirer == nil {
		return nil, services.Wrap(services.ErrAcquire, "content", "fetch", "no content acquirer configured", nil)
	}
	cfg := s.Config
	items, err := o.collab.Acquirer.Fetch(ctx, stage.FetchRequest{
		Subreddits:  cfg.Content.Subreddits,
		PostsPerSub: cfg.Content.PostsPerSub,
	})
	if err != nil {
		return nil, ensureMarker(err, services.ErrAcquire, "content", "fetch")
	}
	items, dropped := content.DropNearDuplicates(items, content.DefaultSimilarityThreshold)
	if len(items) == 0 {
		return nil, services.Wrap(services.ErrAcquire, "content", "fetch", "no usable posts returned", nil)
	}
	logger.Info("content acquired",
		logging.Int("items", len(items)),
		logging.Int("duplicates_dropped", dropped),
		logging.Int("subreddits", len(cfg.Content.Subreddits)),
	)

	jsonPath := s.ContentJSONPath()
	csvPath := s.ContentCSVPath()
	if err := content.WriteJSON(jsonPath, items); err != nil {
		return nil, services.Wrap(services.ErrAcquire, "content", "export", "write content json", err)
	}
	if err := content.WriteCSV(csvPath, items); err != nil {
		return nil, services.Wrap(services.ErrAcquire, "content", "export", "write content csv", err)
	}
	s.ContentPath = jsonPath
	return []string{jsonPath, csvPath}, nil
}

// ensureMarker tags collaborator errors that arrive without a classification.
func ensureMarker(err, marker error, stageName, operation string) error {
	for _, known := range []error{
		services.ErrBuild,
		services.ErrAcquire,
		services.ErrSynthesis,
		services.ErrRender,
		services.ErrCancelled,
		services.ErrMissingArtifact,
		services.ErrInsufficientContent,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, context.Canceled) {
		return services.Wrap(services.ErrCancelled, stageName, operation, "cancelled", err)
	}
	return services.Wrap(marker, stageName, operation, "", err)
}
