package ffprobe

import (
	"context"
	"errors"
	"math"
	"testing"
)

type scriptedExecutor struct {
	lines  []string
	err    error
	binary string
	args   []string
}

func (s *scriptedExecutor) Run(_ context.Context, binary string, args []string, onOutput func(string)) error {
	s.binary = binary
	s.args = append([]string(nil), args...)
	for _, line := range s.lines {
		onOutput(line)
	}
	return s.err
}

func TestInspectParsesJSON(t *testing.T) {
	exec := &scriptedExecutor{lines: []string{
		`{"streams": [{"index": 0, "codec_type": "video", "width": 1080, "height": 1920},`,
		`{"index": 1, "codec_type": "audio", "duration": "12.40"}],`,
		`"format": {"duration": "12.500000", "size": "2048"}}`,
	}}
	result, err := Inspect(context.Background(), exec, "", "/tmp/clip.mp4")
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if exec.binary != "ffprobe" || exec.args[len(exec.args)-1] != "/tmp/clip.mp4" {
		t.Fatalf("unexpected invocation %s %v", exec.binary, exec.args)
	}
	if result.VideoStreamCount() != 1 || result.AudioStreamCount() != 1 {
		t.Fatalf("unexpected stream counts: %+v", result.Streams)
	}
	if result.DurationSeconds() != 12.5 || result.SizeBytes() != 2048 {
		t.Fatalf("unexpected format %+v", result.Format)
	}
}

func TestDurationFallsBackToStreams(t *testing.T) {
	exec := &scriptedExecutor{lines: []string{`{"streams": [{"codec_type": "audio", "duration": "3.25"}], "format": {}}`}}
	got, err := Duration(context.Background(), exec, "ffprobe", "a.wav")
	if err != nil {
		t.Fatalf("Duration returned error: %v", err)
	}
	if got != 3.25 {
		t.Fatalf("expected 3.25, got %v", got)
	}
}

func TestDurationRejectsMissingValue(t *testing.T) {
	exec := &scriptedExecutor{lines: []string{`{"streams": [], "format": {"duration": "bad"}}`}}
	if _, err := Duration(context.Background(), exec, "ffprobe", "a.wav"); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestInspectPropagatesExecutorError(t *testing.T) {
	exec := &scriptedExecutor{err: errors.New("exit status 1")}
	if _, err := Inspect(context.Background(), exec, "ffprobe", "missing.mp4"); err == nil {
		t.Fatal("expected executor error")
	}
	if _, err := Inspect(context.Background(), exec, "ffprobe", " "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad", Size: "-1"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
}
