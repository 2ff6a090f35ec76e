package workflow

import (
	"context"
	"fmt"

	"reelpipe/internal/config"
	"reelpipe/internal/session"
)

// ResumeConfig derives the configuration for continuing prev: every stage
// prev succeeded or substituted becomes a substitute of its artifact, and the
// rest run again. Credentials, tools, and logging come from current because
// manifests never store secrets and the host may have changed.
func ResumeConfig(prev *session.Session, current *config.Config) (config.Config, error) {
	if prev.Completed() {
		return config.Config{}, fmt.Errorf("session %s already completed", prev.ID)
	}
	cfg := prev.Config.Clone()
	if current != nil {
		cfg.Reddit.ClientID = current.Reddit.ClientID
		cfg.Reddit.ClientSecret = current.Reddit.ClientSecret
		cfg.Tools = current.Tools
		cfg.Logging = current.Logging
	}
	for _, name := range config.StageOrder {
		if artifact, ok := prev.Artifact(name); ok {
			cfg.Stages = cfg.Stages.WithPlan(name, config.SubstitutePlan(artifact))
		} else {
			cfg.Stages = cfg.Stages.WithPlan(name, config.RunPlan())
		}
	}
	return cfg, nil
}

// Resume starts a new session that continues prev from its first unfinished
// stage.
func (o *Orchestrator) Resume(ctx context.Context, prev *session.Session, current *config.Config) (*session.Session, error) {
	cfg, err := ResumeConfig(prev, current)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := o.sessions.Create(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.ResumedFrom = prev.ID
	return s, o.Execute(ctx, s)
}
