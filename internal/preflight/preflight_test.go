package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"reelpipe/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCreatableWalksToExistingAncestor(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "output")
	result := CheckCreatable("Output folder", target)
	if !result.Passed {
		t.Fatalf("expected creatable path to pass, got %s", result.Detail)
	}
}

func TestCheckStockFolder(t *testing.T) {
	dir := t.TempDir()
	exts := []string{".mp4"}
	if res := CheckStockFolder(dir, exts); res.Passed {
		t.Fatal("expected empty stock folder to fail")
	}
	if err := os.WriteFile(filepath.Join(dir, "clip.MP4"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if res := CheckStockFolder(dir, exts); !res.Passed {
		t.Fatalf("expected stock folder to pass, got %s", res.Detail)
	}
}

func TestRunAllSkipsSubstitutedStages(t *testing.T) {
	t.Setenv("PATH", "")
	cfg := config.Default()
	cfg.OutputFolder = t.TempDir()
	cfg.StockVideosFolder = filepath.Join(t.TempDir(), "missing")
	cfg.Stages = cfg.Stages.
		WithPlan(config.StageBackground, config.SubstitutePlan("/tmp/bg.mp4")).
		WithPlan(config.StageContent, config.SubstitutePlan("/tmp/content.json")).
		WithPlan(config.StageReels, config.SubstitutePlan("/tmp/reels"))

	results := RunAll(&cfg, []string{".mp4"})
	for _, r := range results {
		if r.Name == "Stock videos" || r.Name == "Reddit" {
			t.Fatalf("unexpected check %s for substituted stage", r.Name)
		}
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("substituted stages should make binaries optional, failed: %s", Summary(failed))
	}
}

func TestRunAllReportsMissingBinaries(t *testing.T) {
	t.Setenv("PATH", "")
	cfg := config.Default()
	cfg.OutputFolder = t.TempDir()
	cfg.StockVideosFolder = t.TempDir()
	if err := os.WriteFile(filepath.Join(cfg.StockVideosFolder, "a.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	failed := Failed(RunAll(&cfg, []string{".mp4"}))
	if len(failed) != 3 {
		t.Fatalf("expected ffmpeg, ffprobe, and kokoro to fail, got %s", Summary(failed))
	}
}
