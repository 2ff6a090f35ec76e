package config

import "slices"

// Layer is a partial configuration. Nil fields are absent and leave the value
// beneath them untouched, so a file that only sets reels.num_reels keeps every
// other reels default.
type Layer struct {
	OutputFolder      *string `toml:"output_folder" json:"output_folder" yaml:"output_folder"`
	StockVideosFolder *string `toml:"stock_videos_folder" json:"stock_videos_folder" yaml:"stock_videos_folder"`

	SkipBackground          *bool   `toml:"skip_background" json:"skip_background" yaml:"skip_background"`
	ExistingBackgroundVideo *string `toml:"existing_background_video" json:"existing_background_video" yaml:"existing_background_video"`
	SkipScraping            *bool   `toml:"skip_scraping" json:"skip_scraping" yaml:"skip_scraping"`
	ExistingContentFile     *string `toml:"existing_content_file" json:"existing_content_file" yaml:"existing_content_file"`
	SkipReels               *bool   `toml:"skip_reels" json:"skip_reels" yaml:"skip_reels"`
	ExistingReelsFolder     *string `toml:"existing_reels_folder" json:"existing_reels_folder" yaml:"existing_reels_folder"`

	Background BackgroundLayer `toml:"background" json:"background" yaml:"background"`
	Content    ContentLayer    `toml:"content" json:"content" yaml:"content"`
	Reels      ReelsLayer      `toml:"reels" json:"reels" yaml:"reels"`
	Reddit     RedditLayer     `toml:"reddit" json:"reddit" yaml:"reddit"`
	Logging    LoggingLayer    `toml:"logging" json:"logging" yaml:"logging"`
	Workflow   WorkflowLayer   `toml:"workflow" json:"workflow" yaml:"workflow"`
	Tools      ToolsLayer      `toml:"tools" json:"tools" yaml:"tools"`
}

// BackgroundLayer is the partial form of Background.
type BackgroundLayer struct {
	Duration           *int     `toml:"duration" json:"duration" yaml:"duration"`
	NumClips           *int     `toml:"num_clips" json:"num_clips" yaml:"num_clips"`
	EffectType         *string  `toml:"effect_type" json:"effect_type" yaml:"effect_type"`
	TransitionType     *string  `toml:"transition_type" json:"transition_type" yaml:"transition_type"`
	TransitionDuration *float64 `toml:"transition_duration" json:"transition_duration" yaml:"transition_duration"`
}

// ContentLayer is the partial form of Content.
type ContentLayer struct {
	Subreddits     []string `toml:"subreddits" json:"subreddits" yaml:"subreddits"`
	PostsPerSub    *int     `toml:"posts_per_sub" json:"posts_per_sub" yaml:"posts_per_sub"`
	MinReadingTime *float64 `toml:"min_reading_time" json:"min_reading_time" yaml:"min_reading_time"`
	MaxReadingTime *float64 `toml:"max_reading_time" json:"max_reading_time" yaml:"max_reading_time"`
}

// ReelsLayer is the partial form of Reels.
type ReelsLayer struct {
	NumReels      *int     `toml:"num_reels" json:"num_reels" yaml:"num_reels"`
	Language      *string  `toml:"language" json:"language" yaml:"language"`
	Voice         *string  `toml:"voice" json:"voice" yaml:"voice"`
	VoicePool     []string `toml:"voice_pool" json:"voice_pool" yaml:"voice_pool"`
	TextStyle     *string  `toml:"text_style" json:"text_style" yaml:"text_style"`
	TextAnimation *string  `toml:"text_animation" json:"text_animation" yaml:"text_animation"`
	VoiceSpeed    *float64 `toml:"voice_speed" json:"voice_speed" yaml:"voice_speed"`
	MaxDuration   *float64 `toml:"max_duration" json:"max_duration" yaml:"max_duration"`
	Workers       *int     `toml:"workers" json:"workers" yaml:"workers"`
}

// RedditLayer is the partial form of Reddit.
type RedditLayer struct {
	BaseURL           *string `toml:"base_url" json:"base_url" yaml:"base_url"`
	OAuthBaseURL      *string `toml:"oauth_base_url" json:"oauth_base_url" yaml:"oauth_base_url"`
	TokenURL          *string `toml:"token_url" json:"token_url" yaml:"token_url"`
	UserAgent         *string `toml:"user_agent" json:"user_agent" yaml:"user_agent"`
	TimeFilter        *string `toml:"time_filter" json:"time_filter" yaml:"time_filter"`
	RequestIntervalMS *int    `toml:"request_interval_ms" json:"request_interval_ms" yaml:"request_interval_ms"`
	ClientID          *string `toml:"client_id" json:"client_id" yaml:"client_id"`
	ClientSecret      *string `toml:"client_secret" json:"client_secret" yaml:"client_secret"`
}

// LoggingLayer is the partial form of Logging.
type LoggingLayer struct {
	Format *string `toml:"format" json:"format" yaml:"format"`
	Level  *string `toml:"level" json:"level" yaml:"level"`
}

// WorkflowLayer is the partial form of Workflow.
type WorkflowLayer struct {
	StageTimeout *int `toml:"stage_timeout" json:"stage_timeout" yaml:"stage_timeout"`
}

// ToolsLayer is the partial form of Tools.
type ToolsLayer struct {
	FFmpeg  *string `toml:"ffmpeg" json:"ffmpeg" yaml:"ffmpeg"`
	FFprobe *string `toml:"ffprobe" json:"ffprobe" yaml:"ffprobe"`
	Kokoro  *string `toml:"kokoro" json:"kokoro" yaml:"kokoro"`
}

// Ptr returns a pointer to v. It keeps override construction in flag handlers short.
func Ptr[T any](v T) *T {
	return &v
}

// Merge returns a layer where fields set in top win over fields set in l.
func (l Layer) Merge(top Layer) Layer {
	out := l
	set(&out.OutputFolder, top.OutputFolder)
	set(&out.StockVideosFolder, top.StockVideosFolder)
	set(&out.SkipBackground, top.SkipBackground)
	set(&out.ExistingBackgroundVideo, top.ExistingBackgroundVideo)
	set(&out.SkipScraping, top.SkipScraping)
	set(&out.ExistingContentFile, top.ExistingContentFile)
	set(&out.SkipReels, top.SkipReels)
	set(&out.ExistingReelsFolder, top.ExistingReelsFolder)

	set(&out.Background.Duration, top.Background.Duration)
	set(&out.Background.NumClips, top.Background.NumClips)
	set(&out.Background.EffectType, top.Background.EffectType)
	set(&out.Background.TransitionType, top.Background.TransitionType)
	set(&out.Background.TransitionDuration, top.Background.TransitionDuration)

	if top.Content.Subreddits != nil {
		out.Content.Subreddits = slices.Clone(top.Content.Subreddits)
	}
	set(&out.Content.PostsPerSub, top.Content.PostsPerSub)
	set(&out.Content.MinReadingTime, top.Content.MinReadingTime)
	set(&out.Content.MaxReadingTime, top.Content.MaxReadingTime)

	set(&out.Reels.NumReels, top.Reels.NumReels)
	set(&out.Reels.Language, top.Reels.Language)
	set(&out.Reels.Voice, top.Reels.Voice)
	if top.Reels.VoicePool != nil {
		out.Reels.VoicePool = slices.Clone(top.Reels.VoicePool)
	}
	set(&out.Reels.TextStyle, top.Reels.TextStyle)
	set(&out.Reels.TextAnimation, top.Reels.TextAnimation)
	set(&out.Reels.VoiceSpeed, top.Reels.VoiceSpeed)
	set(&out.Reels.MaxDuration, top.Reels.MaxDuration)
	set(&out.Reels.Workers, top.Reels.Workers)

	set(&out.Reddit.BaseURL, top.Reddit.BaseURL)
	set(&out.Reddit.OAuthBaseURL, top.Reddit.OAuthBaseURL)
	set(&out.Reddit.TokenURL, top.Reddit.TokenURL)
	set(&out.Reddit.UserAgent, top.Reddit.UserAgent)
	set(&out.Reddit.TimeFilter, top.Reddit.TimeFilter)
	set(&out.Reddit.RequestIntervalMS, top.Reddit.RequestIntervalMS)
	set(&out.Reddit.ClientID, top.Reddit.ClientID)
	set(&out.Reddit.ClientSecret, top.Reddit.ClientSecret)

	set(&out.Logging.Format, top.Logging.Format)
	set(&out.Logging.Level, top.Logging.Level)
	set(&out.Workflow.StageTimeout, top.Workflow.StageTimeout)

	set(&out.Tools.FFmpeg, top.Tools.FFmpeg)
	set(&out.Tools.FFprobe, top.Tools.FFprobe)
	set(&out.Tools.Kokoro, top.Tools.Kokoro)
	return out
}

func set[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func apply[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
