package kokoro_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"reelpipe/internal/services"
	"reelpipe/internal/services/kokoro"
	"reelpipe/internal/stage"
)

type stubExecutor struct {
	kokoroErr  error
	writeAudio bool
	kokoroArgs []string
	spoken     string
}

func (s *stubExecutor) Run(_ context.Context, binary string, args []string, onOutput func(string)) error {
	switch binary {
	case "ffprobe":
		onOutput(`{"streams": [], "format": {"duration": "7.25"}}`)
		return nil
	default:
		s.kokoroArgs = append([]string(nil), args...)
		if data, err := os.ReadFile(valueAfter(args, "--input-file")); err == nil {
			s.spoken = string(data)
		}
		if s.kokoroErr != nil {
			return s.kokoroErr
		}
		if s.writeAudio {
			return os.WriteFile(valueAfter(args, "--output-file"), []byte("RIFF"), 0o644)
		}
		return nil
	}
}

func valueAfter(args []string, flag string) string {
	i := slices.Index(args, flag)
	if i < 0 || i+1 >= len(args) {
		return ""
	}
	return args[i+1]
}

func TestSynthesizeReportsProbedDuration(t *testing.T) {
	exec := &stubExecutor{writeAudio: true}
	narrator, err := kokoro.New("kokoro", "ffprobe", kokoro.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	out := filepath.Join(t.TempDir(), "audio", "reel_01.wav")
	got, err := narrator.Synthesize(context.Background(), stage.NarrateRequest{
		Text:       "Keep  going.\nYou are doing great.",
		Voice:      "af_bella",
		Language:   "a",
		Speed:      1.25,
		OutputPath: out,
	})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if got.AudioPath != out || got.DurationSeconds != 7.25 {
		t.Fatalf("unexpected narration %+v", got)
	}
	if valueAfter(exec.kokoroArgs, "--voice") != "af_bella" || valueAfter(exec.kokoroArgs, "--speed") != "1.25" {
		t.Fatalf("unexpected kokoro args %v", exec.kokoroArgs)
	}
	if exec.spoken != "Keep going. You are doing great." {
		t.Fatalf("unexpected narration text %q", exec.spoken)
	}
	if _, err := os.Stat(strings.TrimSuffix(out, ".wav") + ".txt"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected input text to be removed, err=%v", err)
	}
}

func TestSynthesizeFailsWithoutAudio(t *testing.T) {
	narrator, _ := kokoro.New("kokoro", "ffprobe", kokoro.WithExecutor(&stubExecutor{}))
	_, err := narrator.Synthesize(context.Background(), stage.NarrateRequest{
		Text:       "hello there",
		Voice:      "af_heart",
		OutputPath: filepath.Join(t.TempDir(), "a.wav"),
	})
	if !errors.Is(err, services.ErrSynthesis) {
		t.Fatalf("expected synthesis error, got %v", err)
	}
}

func TestSynthesizeClassifiesCommandFailure(t *testing.T) {
	narrator, _ := kokoro.New("kokoro", "ffprobe", kokoro.WithExecutor(&stubExecutor{kokoroErr: errors.New("model missing")}))
	_, err := narrator.Synthesize(context.Background(), stage.NarrateRequest{
		Text:       "hello there",
		Voice:      "af_heart",
		OutputPath: filepath.Join(t.TempDir(), "a.wav"),
	})
	if !errors.Is(err, services.ErrSynthesis) || !strings.Contains(err.Error(), "model missing") {
		t.Fatalf("expected wrapped synthesis error, got %v", err)
	}
}

func TestLimitWords(t *testing.T) {
	if got := kokoro.LimitWords("a b c d", 2); got != "a b..." {
		t.Fatalf("unexpected %q", got)
	}
	if got := kokoro.LimitWords(" a  b ", 5); got != "a b" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := kokoro.New(" ", "ffprobe"); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestSynthesizeNormalizesLanguage(t *testing.T) {
	cases := []struct {
		language string
		voice    string
		want     string
	}{
		{"english", "af_heart", "a"},
		{"", "bf_emma", "b"},
		{"en-GB", "af_heart", "b"},
	}
	for _, tc := range cases {
		exec := &stubExecutor{writeAudio: true}
		narrator, err := kokoro.New("kokoro", "ffprobe", kokoro.WithExecutor(exec))
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		_, err = narrator.Synthesize(context.Background(), stage.NarrateRequest{
			Text:       "Small steps add up.",
			Voice:      tc.voice,
			Language:   tc.language,
			OutputPath: filepath.Join(t.TempDir(), "reel_01.wav"),
		})
		if err != nil {
			t.Fatalf("Synthesize returned error: %v", err)
		}
		if got := valueAfter(exec.kokoroArgs, "--language"); got != tc.want {
			t.Fatalf("language %q voice %q: got --language %q, want %q", tc.language, tc.voice, got, tc.want)
		}
	}
}
