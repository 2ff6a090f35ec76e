package main

import (
	"context"
	"fmt"
	"log/slog"

	"reelpipe/internal/config"
	"reelpipe/internal/deps"
	"reelpipe/internal/history"
	"reelpipe/internal/logging"
	"reelpipe/internal/services/ffmpeg"
	"reelpipe/internal/services/kokoro"
	"reelpipe/internal/services/reddit"
	"reelpipe/internal/session"
	"reelpipe/internal/stage"
	"reelpipe/internal/workflow"
)

// buildCollaborators constructs the adapters for every stage cfg runs. When
// all is set, adapters for substituted stages are built too (doctor uses this
// to report on the whole toolchain).
func buildCollaborators(cfg *config.Config, logger *slog.Logger, all bool) (stage.Collaborators, error) {
	var collab stage.Collaborators
	ffprobe := deps.ResolveSibling(cfg.Tools.FFmpeg, cfg.Tools.FFprobe)

	needFFmpeg := all || !cfg.Stages.Background.Substitute() || !cfg.Stages.Reels.Substitute()
	if needFFmpeg {
		client, err := ffmpeg.New(cfg.Tools.FFmpeg, ffprobe, ffmpeg.WithLogger(logger))
		if err != nil {
			return collab, fmt.Errorf("ffmpeg adapter: %w", err)
		}
		if all || !cfg.Stages.Background.Substitute() {
			collab.Builder = client
		}
		if all || !cfg.Stages.Reels.Substitute() {
			collab.Renderer = client
		}
	}
	if all || !cfg.Stages.Content.Substitute() {
		client, err := reddit.New(cfg.Reddit, reddit.WithLogger(logger))
		if err != nil {
			return collab, fmt.Errorf("reddit adapter: %w", err)
		}
		collab.Acquirer = client
	}
	if all || !cfg.Stages.Reels.Substitute() {
		narrator, err := kokoro.New(cfg.Tools.Kokoro, ffprobe, kokoro.WithLogger(logger))
		if err != nil {
			return collab, fmt.Errorf("kokoro adapter: %w", err)
		}
		collab.Narrator = narrator
	}
	return collab, nil
}

// pipeline bundles what a run or resume needs and releases it on close.
type pipeline struct {
	orchestrator *workflow.Orchestrator
	store        *history.Store
}

func (p *pipeline) close() {
	if p.store != nil {
		_ = p.store.Close()
	}
}

// newPipeline wires the session manager, history index, and adapters. An
// unavailable index is logged and the run proceeds with manifests only.
func newPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	p := &pipeline{}
	opts := []session.Option{session.WithLogger(logger)}
	store, err := history.Open(ctx, history.PathFor(cfg.OutputFolder))
	if err != nil {
		logging.WarnWithContext(logger, "session index unavailable", "history_open_failed",
			logging.String(logging.FieldImpact, "sessions list falls back to scanning manifests"),
			logging.Error(err),
		)
	} else {
		p.store = store
		opts = append(opts, session.WithIndexer(store))
	}

	collab, err := buildCollaborators(cfg, logger, false)
	if err != nil {
		p.close()
		return nil, err
	}
	manager := session.NewManager(cfg.OutputFolder, opts...)
	p.orchestrator = workflow.New(manager, collab, logger)
	return p, nil
}
