package config

import (
	"slices"
	"strings"
)

type stageSkip struct {
	skip bool
	path string
}

type skipState struct {
	background stageSkip
	content    stageSkip
	reels      stageSkip
}

func skipsFrom(s Stages) skipState {
	from := func(p StagePlan) stageSkip {
		return stageSkip{skip: p.Substitute(), path: p.Path}
	}
	return skipState{
		background: from(s.Background),
		content:    from(s.Content),
		reels:      from(s.Reels),
	}
}

func (s skipState) plans() Stages {
	plan := func(k stageSkip) StagePlan {
		if k.skip {
			return SubstitutePlan(strings.TrimSpace(k.path))
		}
		return RunPlan()
	}
	return Stages{
		Background: plan(s.background),
		Content:    plan(s.content),
		Reels:      plan(s.reels),
	}
}

// Resolve merges overrides over the file layer over defaults, field by field,
// folds skip requests into stage plans, and validates the result. It performs
// no I/O; a nil file means no configuration file was supplied.
func Resolve(defaults Config, file *Layer, overrides Layer) (*Config, error) {
	cfg := defaults.Clone()
	skips := skipsFrom(defaults.Stages)
	if file != nil {
		cfg.applyLayer(*file, &skips)
	}
	cfg.applyLayer(overrides, &skips)
	cfg.Stages = skips.plans()
	cfg.tidy()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyLayer(l Layer, skips *skipState) {
	apply(&c.OutputFolder, l.OutputFolder)
	apply(&c.StockVideosFolder, l.StockVideosFolder)

	apply(&skips.background.skip, l.SkipBackground)
	apply(&skips.background.path, l.ExistingBackgroundVideo)
	apply(&skips.content.skip, l.SkipScraping)
	apply(&skips.content.path, l.ExistingContentFile)
	apply(&skips.reels.skip, l.SkipReels)
	apply(&skips.reels.path, l.ExistingReelsFolder)

	apply(&c.Background.Duration, l.Background.Duration)
	apply(&c.Background.NumClips, l.Background.NumClips)
	apply(&c.Background.EffectType, l.Background.EffectType)
	apply(&c.Background.TransitionType, l.Background.TransitionType)
	apply(&c.Background.TransitionDuration, l.Background.TransitionDuration)

	if l.Content.Subreddits != nil {
		c.Content.Subreddits = slices.Clone(l.Content.Subreddits)
	}
	apply(&c.Content.PostsPerSub, l.Content.PostsPerSub)
	apply(&c.Content.MinReadingTime, l.Content.MinReadingTime)
	apply(&c.Content.MaxReadingTime, l.Content.MaxReadingTime)

	apply(&c.Reels.NumReels, l.Reels.NumReels)
	apply(&c.Reels.Language, l.Reels.Language)
	apply(&c.Reels.Voice, l.Reels.Voice)
	if l.Reels.VoicePool != nil {
		c.Reels.VoicePool = slices.Clone(l.Reels.VoicePool)
	}
	apply(&c.Reels.TextStyle, l.Reels.TextStyle)
	apply(&c.Reels.TextAnimation, l.Reels.TextAnimation)
	apply(&c.Reels.VoiceSpeed, l.Reels.VoiceSpeed)
	apply(&c.Reels.MaxDuration, l.Reels.MaxDuration)
	apply(&c.Reels.Workers, l.Reels.Workers)

	apply(&c.Reddit.BaseURL, l.Reddit.BaseURL)
	apply(&c.Reddit.OAuthBaseURL, l.Reddit.OAuthBaseURL)
	apply(&c.Reddit.TokenURL, l.Reddit.TokenURL)
	apply(&c.Reddit.UserAgent, l.Reddit.UserAgent)
	apply(&c.Reddit.TimeFilter, l.Reddit.TimeFilter)
	apply(&c.Reddit.RequestIntervalMS, l.Reddit.RequestIntervalMS)
	apply(&c.Reddit.ClientID, l.Reddit.ClientID)
	apply(&c.Reddit.ClientSecret, l.Reddit.ClientSecret)

	apply(&c.Logging.Format, l.Logging.Format)
	apply(&c.Logging.Level, l.Logging.Level)
	apply(&c.Workflow.StageTimeout, l.Workflow.StageTimeout)

	apply(&c.Tools.FFmpeg, l.Tools.FFmpeg)
	apply(&c.Tools.FFprobe, l.Tools.FFprobe)
	apply(&c.Tools.Kokoro, l.Tools.Kokoro)
}
