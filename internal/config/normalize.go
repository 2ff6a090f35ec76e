package config

import (
	"fmt"
	"strings"

	"reelpipe/internal/language"
)

// tidy canonicalizes string values without touching the filesystem.
func (c *Config) tidy() {
	c.OutputFolder = strings.TrimSpace(c.OutputFolder)
	c.StockVideosFolder = strings.TrimSpace(c.StockVideosFolder)

	c.Background.EffectType = lower(c.Background.EffectType)
	c.Background.TransitionType = lower(c.Background.TransitionType)

	c.Content.Subreddits = normalizeSubreddits(c.Content.Subreddits)

	c.Reels.Language = strings.TrimSpace(c.Reels.Language)
	if code, ok := language.Normalize(c.Reels.Language); ok {
		c.Reels.Language = code
	}
	c.Reels.Voice = lower(c.Reels.Voice)
	c.Reels.TextStyle = lower(c.Reels.TextStyle)
	c.Reels.TextAnimation = lower(c.Reels.TextAnimation)
	pool := make([]string, 0, len(c.Reels.VoicePool))
	for _, v := range c.Reels.VoicePool {
		if v = lower(v); v != "" {
			pool = append(pool, v)
		}
	}
	c.Reels.VoicePool = pool

	c.Reddit.BaseURL = strings.TrimRight(strings.TrimSpace(c.Reddit.BaseURL), "/")
	c.Reddit.OAuthBaseURL = strings.TrimRight(strings.TrimSpace(c.Reddit.OAuthBaseURL), "/")
	c.Reddit.TokenURL = strings.TrimSpace(c.Reddit.TokenURL)
	c.Reddit.UserAgent = strings.TrimSpace(c.Reddit.UserAgent)
	c.Reddit.TimeFilter = lower(c.Reddit.TimeFilter)
	c.Reddit.ClientID = strings.TrimSpace(c.Reddit.ClientID)
	c.Reddit.ClientSecret = strings.TrimSpace(c.Reddit.ClientSecret)

	c.Logging.Format = lower(c.Logging.Format)
	c.Logging.Level = lower(c.Logging.Level)
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}

	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	c.Tools.Kokoro = strings.TrimSpace(c.Tools.Kokoro)
}

// normalizePaths expands user and relative paths to absolute ones.
func (c *Config) normalizePaths() error {
	var err error
	if c.OutputFolder, err = expandPath(c.OutputFolder); err != nil {
		return fmt.Errorf("output_folder: %w", err)
	}
	if c.StockVideosFolder, err = expandPath(c.StockVideosFolder); err != nil {
		return fmt.Errorf("stock_videos_folder: %w", err)
	}
	for _, name := range StageOrder {
		plan := c.Stages.Plan(name)
		if !plan.Substitute() || plan.Path == "" {
			continue
		}
		expanded, err := expandPath(plan.Path)
		if err != nil {
			return fmt.Errorf("%s substitute path: %w", name, err)
		}
		c.Stages = c.Stages.WithPlan(name, SubstitutePlan(expanded))
	}
	return nil
}

func normalizeSubreddits(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		value = strings.TrimPrefix(value, "/")
		value = strings.TrimPrefix(value, "r/")
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		key := strings.ToLower(value)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}
	return out
}

func lower(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
