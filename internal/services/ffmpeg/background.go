package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"reelpipe/internal/logging"
	"reelpipe/internal/services"
	"reelpipe/internal/stage"
)

const (
	averageClipSeconds = 10
	minimumClips       = 3
	edgeFadeSeconds    = 0.5
)

// ClipCount returns how many stock clips a background of target seconds uses
// when numClips is 0 (automatic), bounded by the clips available.
func ClipCount(target float64, numClips, available int) int {
	n := numClips
	if n <= 0 {
		n = max(minimumClips, int(target/averageClipSeconds))
	}
	return max(min(n, available), 0)
}

// Build assembles req.StockClips into one vertical background video of
// req.TargetDuration seconds. Clips are taken in the given order, looped when
// shorter than their segment, cropped to 9:16, graded with the effect, and
// joined with the transition.
func (c *Client) Build(ctx context.Context, req stage.BuildRequest) (string, error) {
	if req.OutputPath == "" {
		return "", errors.New("ffmpeg build: output path required")
	}
	if req.TargetDuration <= 0 {
		return "", errors.New("ffmpeg build: target duration must be positive")
	}
	count := ClipCount(req.TargetDuration, req.NumClips, len(req.StockClips))
	if count == 0 {
		return "", services.Wrap(services.ErrBuild, "background", "build", "no stock clips supplied", nil)
	}
	clips := req.StockClips[:count]
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	graph, segment := backgroundGraph(len(clips), req)
	args := []string{"-hide_banner", "-nostdin", "-y"}
	for _, clip := range clips {
		args = append(args, "-stream_loop", "-1", "-t", formatSeconds(segment), "-i", clip)
	}
	args = append(args, "-filter_complex", graph, "-map", "[out]", "-an")
	args = append(args, encoderArgs()...)
	args = append(args, "-t", formatSeconds(req.TargetDuration), req.OutputPath)

	c.logger.Info("building background",
		logging.Int("clips", len(clips)),
		logging.Float64("segment_seconds", segment),
		logging.String("effect", req.Effect),
		logging.String("transition", req.Transition),
	)
	if err := c.run(ctx, args); err != nil {
		return "", services.Wrap(services.ErrBuild, "background", "ffmpeg", "", err)
	}
	return req.OutputPath, nil
}

// backgroundGraph returns the filter graph for n inputs and the per-clip
// segment length. Segments overlap by the transition duration so the joined
// result still covers the target.
func backgroundGraph(n int, req stage.BuildRequest) (string, float64) {
	fade := req.TransitionDuration
	segment := req.TargetDuration/float64(n) + fade
	if n == 1 {
		segment = req.TargetDuration
		fade = 0
	}
	fade = math.Min(fade, segment/2)

	var b strings.Builder
	grade := effectFilter(req.Effect)
	for i := range n {
		fmt.Fprintf(&b, "[%d:v]trim=duration=%s,setpts=PTS-STARTPTS,scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,fps=%d,%s,settb=AVTB,format=yuv420p[v%d];",
			i, formatSeconds(segment), frameWidth, frameHeight, frameWidth, frameHeight, frameRate, grade, i)
	}

	last := "v0"
	if n > 1 {
		transition := transitionName(req.Transition)
		for i := 1; i < n; i++ {
			offset := float64(i) * (segment - fade)
			label := fmt.Sprintf("x%d", i)
			fmt.Fprintf(&b, "[%s][v%d]xfade=transition=%s:duration=%s:offset=%s[%s];",
				last, i, transition, formatSeconds(fade), formatSeconds(offset), label)
			last = label
		}
	}
	fadeOut := math.Max(req.TargetDuration-edgeFadeSeconds, 0)
	fmt.Fprintf(&b, "[%s]trim=duration=%s,fade=t=in:d=%s,fade=t=out:st=%s:d=%s[out]",
		last, formatSeconds(req.TargetDuration), formatSeconds(edgeFadeSeconds), formatSeconds(fadeOut), formatSeconds(edgeFadeSeconds))
	return b.String(), segment
}

func formatSeconds(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
