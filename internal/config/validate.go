package config

import (
	"strings"

	"reelpipe/internal/language"
)

// Validate ensures the configuration is usable. The first violation is
// returned as a *ConfigError naming the offending field.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBackground(); err != nil {
		return err
	}
	if err := c.validateContent(); err != nil {
		return err
	}
	if err := c.validateReels(); err != nil {
		return err
	}
	if err := c.validateReddit(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Workflow.StageTimeout < 0 || c.Workflow.StageTimeout > 86400 {
		return invalid("workflow.stage_timeout", "must be between 0 and 86400 seconds (got %d)", c.Workflow.StageTimeout)
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.OutputFolder == "" {
		return invalid("output_folder", "must be set")
	}
	if c.StockVideosFolder == "" && !c.Stages.Background.Substitute() {
		return invalid("stock_videos_folder", "must be set when the background stage runs")
	}
	return nil
}

func (c *Config) validateBackground() error {
	b := c.Background
	if b.Duration < 5 || b.Duration > 3600 {
		return invalid("background.duration", "must be between 5 and 3600 seconds (got %d)", b.Duration)
	}
	if b.NumClips < 0 || b.NumClips > 50 {
		return invalid("background.num_clips", "must be between 0 and 50 (got %d)", b.NumClips)
	}
	if !oneOf(b.EffectType, EffectTypes) {
		return invalid("background.effect_type", "must be one of %s (got %q)", strings.Join(EffectTypes, ", "), b.EffectType)
	}
	if !oneOf(b.TransitionType, TransitionTypes) {
		return invalid("background.transition_type", "must be one of %s (got %q)", strings.Join(TransitionTypes, ", "), b.TransitionType)
	}
	if b.TransitionDuration < 0 || b.TransitionDuration > 5 {
		return invalid("background.transition_duration", "must be between 0 and 5 seconds (got %g)", b.TransitionDuration)
	}
	return nil
}

func (c *Config) validateContent() error {
	ct := c.Content
	if len(ct.Subreddits) == 0 {
		return invalid("content.subreddits", "must list at least one subreddit")
	}
	if ct.PostsPerSub < 1 || ct.PostsPerSub > 100 {
		return invalid("content.posts_per_sub", "must be between 1 and 100 (got %d)", ct.PostsPerSub)
	}
	if ct.MinReadingTime < 1 || ct.MinReadingTime > 600 {
		return invalid("content.min_reading_time", "must be between 1 and 600 seconds (got %g)", ct.MinReadingTime)
	}
	if ct.MaxReadingTime < 1 || ct.MaxReadingTime > 600 {
		return invalid("content.max_reading_time", "must be between 1 and 600 seconds (got %g)", ct.MaxReadingTime)
	}
	if ct.MinReadingTime >= ct.MaxReadingTime {
		return invalid("content.min_reading_time", "must be less than content.max_reading_time (%g >= %g)", ct.MinReadingTime, ct.MaxReadingTime)
	}
	return nil
}

func (c *Config) validateReels() error {
	r := c.Reels
	if r.NumReels < 1 || r.NumReels > 50 {
		return invalid("reels.num_reels", "must be between 1 and 50 (got %d)", r.NumReels)
	}
	if r.VoiceSpeed < 0.5 || r.VoiceSpeed > 2.0 {
		return invalid("reels.voice_speed", "must be between 0.5 and 2.0 (got %g)", r.VoiceSpeed)
	}
	if r.MaxDuration < 5 || r.MaxDuration > 600 {
		return invalid("reels.max_duration", "must be between 5 and 600 seconds (got %g)", r.MaxDuration)
	}
	if r.Workers < 1 || r.Workers > 16 {
		return invalid("reels.workers", "must be between 1 and 16 (got %d)", r.Workers)
	}
	if _, ok := LookupVoice(r.Voice); !ok {
		return invalid("reels.voice", "must be a known voice (got %q); run 'reelpipe voices'", r.Voice)
	}
	for _, v := range r.VoicePool {
		if _, ok := LookupVoice(v); !ok {
			return invalid("reels.voice_pool", "contains unknown voice %q", v)
		}
	}
	if !oneOf(r.TextStyle, TextStyles) {
		return invalid("reels.text_style", "must be one of %s (got %q)", strings.Join(TextStyles, ", "), r.TextStyle)
	}
	if !oneOf(r.TextAnimation, TextAnimations) {
		return invalid("reels.text_animation", "must be one of %s (got %q)", strings.Join(TextAnimations, ", "), r.TextAnimation)
	}
	if r.Language == "" {
		return invalid("reels.language", "must be set")
	}
	if _, ok := language.Normalize(r.Language); !ok {
		return invalid("reels.language", "must be one of %s or a language name such as \"british\" (got %q)", strings.Join(language.Codes(), ", "), r.Language)
	}
	return nil
}

func (c *Config) validateReddit() error {
	r := c.Reddit
	if r.BaseURL == "" {
		return invalid("reddit.base_url", "must be set")
	}
	if r.UserAgent == "" {
		return invalid("reddit.user_agent", "must be set")
	}
	if !oneOf(r.TimeFilter, TimeFilters) {
		return invalid("reddit.time_filter", "must be one of %s (got %q)", strings.Join(TimeFilters, ", "), r.TimeFilter)
	}
	if r.RequestIntervalMS < 0 || r.RequestIntervalMS > 60000 {
		return invalid("reddit.request_interval_ms", "must be between 0 and 60000 (got %d)", r.RequestIntervalMS)
	}
	if (r.ClientID == "") != (r.ClientSecret == "") {
		return invalid("reddit.client_secret", "must be set together with reddit.client_id")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !oneOf(c.Logging.Format, logFormats) {
		return invalid("logging.format", "must be one of %s (got %q)", strings.Join(logFormats, ", "), c.Logging.Format)
	}
	if !oneOf(c.Logging.Level, logLevels) {
		return invalid("logging.level", "must be one of %s (got %q)", strings.Join(logLevels, ", "), c.Logging.Level)
	}
	return nil
}
