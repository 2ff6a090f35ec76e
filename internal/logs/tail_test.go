package logs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reelpipe/internal/logs"
)

func TestLastReturnsTrailingLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")
	if err := os.WriteFile(path, []byte("a\nb\nc\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	lines, offset, err := logs.Last(path, 2)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 2 || lines[0] != "b" || lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if offset != 6 {
		t.Fatalf("offset = %d, want 6", offset)
	}
}

func TestLastMissingFile(t *testing.T) {
	lines, offset, err := logs.Last(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil || len(lines) != 0 || offset != 0 {
		t.Fatalf("expected empty result, got %v %d %v", lines, offset, err)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")
	if err := os.WriteFile(path, []byte("old\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	_, offset, err := logs.Last(path, 0)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		time.Sleep(50 * time.Millisecond)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return
		}
		_, _ = f.WriteString("new\npartial")
		_ = f.Close()
	}()

	var got []string
	err = logs.Follow(ctx, path, offset, 10*time.Millisecond, func(line string) {
		got = append(got, line)
		cancel()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Follow error = %v, want context.Canceled", err)
	}
	if len(got) != 1 || got[0] != "new" {
		t.Fatalf("unexpected lines: %#v", got)
	}
}

func TestFormatRendersJSONRecord(t *testing.T) {
	line := `{"ts":"2026-01-02T03:04:05Z","level":"warn","msg":"content shortfall","stage":"reels","session_id":"x","passing":2,"impact":"fewer reels"}`
	got := logs.Format(line)
	if !strings.Contains(got, "WARN  reels: content shortfall") {
		t.Fatalf("unexpected header: %q", got)
	}
	if !strings.Contains(got, `impact="fewer reels" passing=2`) {
		t.Fatalf("unexpected attributes: %q", got)
	}
	if strings.Contains(got, "session_id") {
		t.Fatalf("session id should be hidden: %q", got)
	}
}

func TestFormatPassesThroughPlainText(t *testing.T) {
	if got := logs.Format("not json"); got != "not json" {
		t.Fatalf("got %q", got)
	}
}
