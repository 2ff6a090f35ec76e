package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"reelpipe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Reddit credentials are filled with placeholders so no test reaches the
// anonymous endpoint by accident.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.OutputFolder = filepath.Join(base, "output")
	cfgVal.StockVideosFolder = filepath.Join(base, "stock")
	cfgVal.Reddit.ClientID = "test-client"
	cfgVal.Reddit.ClientSecret = "test-secret"
	cfgVal.Reddit.RequestIntervalMS = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithReels sets the number of reels and the reading-time window.
func WithReels(numReels int, minTime, maxTime float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Reels.NumReels = numReels
		b.cfg.Content.MinReadingTime = minTime
		b.cfg.Content.MaxReadingTime = maxTime
	}
}

// WithStockClips writes count small clips into the stock folder.
func WithStockClips(count int) ConfigOption {
	return func(b *configBuilder) {
		for i := range count {
			WriteFile(b.t, filepath.Join(b.cfg.StockVideosFolder, clipName(i)), 64)
		}
	}
}

// WithPlan replaces the plan of one stage.
func WithPlan(name config.StageName, plan config.StagePlan) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Stages = b.cfg.Stages.WithPlan(name, plan)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default external binaries
// are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{b.cfg.Tools.FFmpeg, b.cfg.Tools.FFprobe, b.cfg.Tools.Kokoro}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.OutputFolder)
}

func clipName(i int) string {
	return "stock_" + string(rune('a'+i%26)) + ".mp4"
}
