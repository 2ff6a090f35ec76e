package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reelpipe/internal/config"
	"reelpipe/internal/services"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"REDDIT_CLIENT_ID", "REDDIT_CLIENT_SECRET", "REDDIT_USER_AGENT", "REELPIPE_OUTPUT_FOLDER", "REELPIPE_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestResolveDefaultsOnly(t *testing.T) {
	cfg, err := config.Resolve(config.Default(), nil, config.Layer{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cfg.Reels.NumReels != 5 || cfg.Reels.Voice != "af_heart" || cfg.Reels.VoiceSpeed != 1.0 {
		t.Fatalf("unexpected reels defaults: %+v", cfg.Reels)
	}
	if cfg.Content.MinReadingTime != 30 || cfg.Content.MaxReadingTime != 180 {
		t.Fatalf("unexpected reading window: %+v", cfg.Content)
	}
	if len(cfg.Content.Subreddits) != len(config.DefaultSubreddits) {
		t.Fatalf("expected %d default subreddits, got %d", len(config.DefaultSubreddits), len(cfg.Content.Subreddits))
	}
	for _, name := range config.StageOrder {
		if plan := cfg.Stages.Plan(name); plan.Substitute() {
			t.Fatalf("expected %s to run by default, got %s", name, plan)
		}
	}
}

func TestResolvePrecedenceIsPerField(t *testing.T) {
	file := config.Layer{
		Reels: config.ReelsLayer{
			NumReels:  config.Ptr(3),
			TextStyle: config.Ptr("bold"),
		},
	}
	overrides := config.Layer{
		Reels: config.ReelsLayer{NumReels: config.Ptr(7)},
	}
	cfg, err := config.Resolve(config.Default(), &file, overrides)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cfg.Reels.NumReels != 7 {
		t.Fatalf("override should win, got num_reels=%d", cfg.Reels.NumReels)
	}
	if cfg.Reels.TextStyle != "bold" {
		t.Fatalf("file value should survive, got text_style=%q", cfg.Reels.TextStyle)
	}
	if cfg.Reels.VoiceSpeed != 1.0 {
		t.Fatalf("partial reels table must keep default voice_speed, got %v", cfg.Reels.VoiceSpeed)
	}
}

func TestResolveDoesNotMutateDefaults(t *testing.T) {
	defaults := config.Default()
	overrides := config.Layer{Content: config.ContentLayer{Subreddits: []string{"r/quotes", "quotes", " "}}}
	cfg, err := config.Resolve(defaults, nil, overrides)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(cfg.Content.Subreddits) != 1 || cfg.Content.Subreddits[0] != "quotes" {
		t.Fatalf("expected normalized single subreddit, got %v", cfg.Content.Subreddits)
	}
	if len(defaults.Content.Subreddits) != len(config.DefaultSubreddits) {
		t.Fatalf("defaults mutated: %v", defaults.Content.Subreddits)
	}
}

func TestResolveRejectsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name  string
		layer config.Layer
		field string
	}{
		{"voice speed", config.Layer{Reels: config.ReelsLayer{VoiceSpeed: config.Ptr(3.0)}}, "reels.voice_speed"},
		{"num reels", config.Layer{Reels: config.ReelsLayer{NumReels: config.Ptr(0)}}, "reels.num_reels"},
		{"workers", config.Layer{Reels: config.ReelsLayer{Workers: config.Ptr(17)}}, "reels.workers"},
		{"max duration", config.Layer{Reels: config.ReelsLayer{MaxDuration: config.Ptr(2.0)}}, "reels.max_duration"},
		{"posts per sub", config.Layer{Content: config.ContentLayer{PostsPerSub: config.Ptr(101)}}, "content.posts_per_sub"},
		{"reading window", config.Layer{Content: config.ContentLayer{MinReadingTime: config.Ptr(200.0)}}, "content.min_reading_time"},
		{"empty subreddits", config.Layer{Content: config.ContentLayer{Subreddits: []string{}}}, "content.subreddits"},
		{"effect", config.Layer{Background: config.BackgroundLayer{EffectType: config.Ptr("sepia")}}, "background.effect_type"},
		{"transition", config.Layer{Background: config.BackgroundLayer{TransitionType: config.Ptr("wipe")}}, "background.transition_type"},
		{"bg duration", config.Layer{Background: config.BackgroundLayer{Duration: config.Ptr(1)}}, "background.duration"},
		{"voice", config.Layer{Reels: config.ReelsLayer{Voice: config.Ptr("zz_nobody")}}, "reels.voice"},
		{"voice pool", config.Layer{Reels: config.ReelsLayer{VoicePool: []string{"af_bella", "nope"}}}, "reels.voice_pool"},
		{"style", config.Layer{Reels: config.ReelsLayer{TextStyle: config.Ptr("comic")}}, "reels.text_style"},
		{"log format", config.Layer{Logging: config.LoggingLayer{Format: config.Ptr("xml")}}, "logging.format"},
		{"stage timeout", config.Layer{Workflow: config.WorkflowLayer{StageTimeout: config.Ptr(-1)}}, "workflow.stage_timeout"},
		{"interval", config.Layer{Reddit: config.RedditLayer{RequestIntervalMS: config.Ptr(70000)}}, "reddit.request_interval_ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Resolve(config.Default(), nil, tt.layer)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var cfgErr *config.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %T: %v", err, err)
			}
			if cfgErr.Field != tt.field {
				t.Fatalf("expected field %q, got %q (%v)", tt.field, cfgErr.Field, err)
			}
			if !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected configuration marker, got %v", err)
			}
			if services.ExitCode(err) != 2 {
				t.Fatalf("expected exit code 2, got %d", services.ExitCode(err))
			}
		})
	}
}

func TestResolveStagePlans(t *testing.T) {
	overrides := config.Layer{
		SkipBackground:          config.Ptr(true),
		ExistingBackgroundVideo: config.Ptr("/tmp/bg.mp4"),
		SkipScraping:            config.Ptr(true),
		ExistingReelsFolder:     config.Ptr("/tmp/reels"),
	}
	cfg, err := config.Resolve(config.Default(), nil, overrides)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got := cfg.Stages.Background; got != config.SubstitutePlan("/tmp/bg.mp4") {
		t.Fatalf("unexpected background plan: %+v", got)
	}
	if got := cfg.Stages.Content; !got.Substitute() || got.Path != "" {
		t.Fatalf("skip without path should yield empty substitute, got %+v", got)
	}
	if got := cfg.Stages.Reels; got.Substitute() {
		t.Fatalf("path without skip should still run, got %+v", got)
	}
}

func TestLoadJSONLayerWithEnvCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDDIT_CLIENT_ID", "id-123")
	t.Setenv("REDDIT_CLIENT_SECRET", "secret-456")
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.json")
	body := `{
  "output_folder": "` + filepath.Join(dir, "out") + `",
  "skip_background": false,
  "existing_background_video": null,
  "content": {"subreddits": ["quotes"], "posts_per_sub": 10},
  "reels": {"num_reels": 2, "voice": "bf_emma"}
}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path, config.Layer{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected explicit path to exist, got %q exists=%v", resolved, exists)
	}
	if cfg.Reels.NumReels != 2 || cfg.Reels.Voice != "bf_emma" || cfg.Content.PostsPerSub != 10 {
		t.Fatalf("file values not applied: %+v %+v", cfg.Reels, cfg.Content)
	}
	if !cfg.Reddit.HasCredentials() {
		t.Fatal("expected credentials from environment")
	}
	if cfg.OutputFolder != filepath.Join(dir, "out") {
		t.Fatalf("unexpected output folder %q", cfg.OutputFolder)
	}
}

func TestLoadYAMLLayer(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	body := "reels:\n  text_style: vibrant\n  workers: 4\nbackground:\n  effect_type: warm\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path, config.Layer{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Reels.TextStyle != "vibrant" || cfg.Reels.Workers != 4 || cfg.Background.EffectType != "warm" {
		t.Fatalf("yaml values not applied: %+v %+v", cfg.Reels, cfg.Background)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[reels]\nnum_reel = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(path, config.Layer{})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"), config.Layer{})
	var cfgErr *config.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "config" {
		t.Fatalf("expected config ConfigError, got %v", err)
	}
}

func TestLoadDefaultPathExpandsHome(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg, resolved, exists, err := config.Load("", config.Layer{OutputFolder: config.Ptr("~/reels")})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected no config file in temp HOME")
	}
	if resolved != filepath.Join(home, ".config", "reelpipe", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.OutputFolder != filepath.Join(home, "reels") {
		t.Fatalf("expected expanded output folder, got %q", cfg.OutputFolder)
	}
}

func TestSampleConfigResolves(t *testing.T) {
	var layer config.Layer
	if err := toml.Unmarshal([]byte(config.SampleConfig()), &layer); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	cfg, err := config.Resolve(config.Default(), &layer, config.Layer{})
	if err != nil {
		t.Fatalf("sample config invalid: %v", err)
	}
	if cfg.Background.EffectType != "cinematic" || cfg.Reels.TextAnimation != "fade" {
		t.Fatalf("unexpected sample values: %+v %+v", cfg.Background, cfg.Reels)
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[reels]") {
		t.Fatal("sample config missing reels table")
	}
	if err := config.CreateSample(path); err == nil {
		t.Fatal("expected error when sample already exists")
	}
}

func TestVoicesFallsBackToDefaultVoice(t *testing.T) {
	cfg, err := config.Resolve(config.Default(), nil, config.Layer{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got := cfg.Voices(); len(got) != 1 || got[0] != "af_heart" {
		t.Fatalf("unexpected voices %v", got)
	}
	pooled, err := config.Resolve(config.Default(), nil, config.Layer{Reels: config.ReelsLayer{VoicePool: []string{"AM_ADAM", "bf_emma"}}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got := pooled.Voices(); len(got) != 2 || got[0] != "am_adam" {
		t.Fatalf("unexpected pooled voices %v", got)
	}
}

func TestResolveNormalizesLanguage(t *testing.T) {
	cfg, err := config.Resolve(config.Default(), nil, config.Layer{Reels: config.ReelsLayer{Language: config.Ptr("en_GB")}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cfg.Reels.Language != "b" {
		t.Fatalf("expected language b, got %q", cfg.Reels.Language)
	}
	_, err = config.Resolve(config.Default(), nil, config.Layer{Reels: config.ReelsLayer{Language: config.Ptr("klingon")}})
	var cfgErr *config.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "reels.language" {
		t.Fatalf("expected reels.language error, got %v", err)
	}
}
