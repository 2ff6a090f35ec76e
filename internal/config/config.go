package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

//go:embed sample_config.toml
var sampleConfig string

// Background controls how the background video is assembled from stock clips.
type Background struct {
	Duration           int     `json:"duration"`
	NumClips           int     `json:"num_clips"`
	EffectType         string  `json:"effect_type"`
	TransitionType     string  `json:"transition_type"`
	TransitionDuration float64 `json:"transition_duration"`
}

// Content controls acquisition and the reading-time filter.
type Content struct {
	Subreddits     []string `json:"subreddits"`
	PostsPerSub    int      `json:"posts_per_sub"`
	MinReadingTime float64  `json:"min_reading_time"`
	MaxReadingTime float64  `json:"max_reading_time"`
}

// Reels controls narration and rendering of the output clips.
type Reels struct {
	NumReels      int      `json:"num_reels"`
	Language      string   `json:"language"`
	Voice         string   `json:"voice"`
	VoicePool     []string `json:"voice_pool,omitempty"`
	TextStyle     string   `json:"text_style"`
	TextAnimation string   `json:"text_animation"`
	VoiceSpeed    float64  `json:"voice_speed"`
	MaxDuration   float64  `json:"max_duration"`
	Workers       int      `json:"workers"`
}

// Reddit contains listing API settings. Credentials never leave the process.
type Reddit struct {
	BaseURL           string `json:"base_url"`
	OAuthBaseURL      string `json:"oauth_base_url"`
	TokenURL          string `json:"token_url"`
	UserAgent         string `json:"user_agent"`
	TimeFilter        string `json:"time_filter"`
	RequestIntervalMS int    `json:"request_interval_ms"`
	ClientID          string `json:"-"`
	ClientSecret      string `json:"-"`
}

// HasCredentials reports whether OAuth client credentials are configured.
func (r Reddit) HasCredentials() bool {
	return strings.TrimSpace(r.ClientID) != "" && strings.TrimSpace(r.ClientSecret) != ""
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `json:"format"`
	Level  string `json:"level"`
}

// Workflow contains orchestration limits.
type Workflow struct {
	StageTimeout int `json:"stage_timeout"`
}

// Tools names the external binaries the adapters invoke.
type Tools struct {
	FFmpeg  string `json:"ffmpeg"`
	FFprobe string `json:"ffprobe"`
	Kokoro  string `json:"kokoro"`
}

// Stages holds the resolved plan for each pipeline stage.
type Stages struct {
	Background StagePlan `json:"background"`
	Content    StagePlan `json:"content"`
	Reels      StagePlan `json:"reels"`
}

// Config is the fully resolved, validated configuration for one run. Callers
// treat it as read-only once Resolve returns.
//
// Sections:
//   - Background: stock clip assembly
//   - Content: subreddits and reading-time window
//   - Reels: narration voice, overlay, and render concurrency
//   - Reddit: listing API endpoints and pacing
//   - Logging: log format and level
//   - Workflow: per-stage timeout
//   - Tools: external binaries
//   - Stages: run or substitute plan per stage
type Config struct {
	OutputFolder      string     `json:"output_folder"`
	StockVideosFolder string     `json:"stock_videos_folder"`
	Background        Background `json:"background"`
	Content           Content    `json:"content"`
	Reels             Reels      `json:"reels"`
	Reddit            Reddit     `json:"reddit"`
	Logging           Logging    `json:"logging"`
	Workflow          Workflow   `json:"workflow"`
	Tools             Tools      `json:"tools"`
	Stages            Stages     `json:"stages"`
}

// Clone returns a deep copy of the configuration.
func (c Config) Clone() Config {
	c.Content.Subreddits = slices.Clone(c.Content.Subreddits)
	c.Reels.VoicePool = slices.Clone(c.Reels.VoicePool)
	return c
}

// Voices returns the voice rotation used for reel assignments: the pool when
// configured, otherwise the single default voice.
func (c *Config) Voices() []string {
	if len(c.Reels.VoicePool) > 0 {
		return slices.Clone(c.Reels.VoicePool)
	}
	return []string{c.Reels.Voice}
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelpipe/config.toml")
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the sample configuration to path, refusing to overwrite
// an existing file.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists: %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(SampleConfig()), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the output folder.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.OutputFolder, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.OutputFolder, err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
