package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	writeStub(t, present)
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  ", Optional: true},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" || !results[2].Optional {
		t.Fatalf("unexpected unset requirement %#v", results[2])
	}
}

func TestResolveSiblingFindsProbeBesideFFmpeg(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := filepath.Join(dir, "ffmpeg")
	ffprobe := filepath.Join(dir, "ffprobe")
	writeStub(t, ffmpeg)
	writeStub(t, ffprobe)
	t.Setenv("PATH", "")

	if got := ResolveSibling(ffmpeg, "ffprobe"); got != ffprobe {
		t.Fatalf("expected sibling %q, got %q", ffprobe, got)
	}
}

func TestResolveSiblingPrefersPath(t *testing.T) {
	binDir := t.TempDir()
	writeStub(t, filepath.Join(binDir, "ffprobe"))
	t.Setenv("PATH", binDir)

	if got := ResolveSibling("/opt/ffmpeg/ffmpeg", "ffprobe"); got != "ffprobe" {
		t.Fatalf("expected PATH lookup to win, got %q", got)
	}
}

func TestResolveSiblingKeepsNameWhenUnresolved(t *testing.T) {
	t.Setenv("PATH", "")
	if got := ResolveSibling("ffmpeg", "ffprobe"); got != "ffprobe" {
		t.Fatalf("expected name passthrough, got %q", got)
	}
	if got := ResolveSibling("ffmpeg", "/usr/bin/ffprobe"); got != "/usr/bin/ffprobe" {
		t.Fatalf("expected explicit path passthrough, got %q", got)
	}
}
