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
	"reelpipe/internal/media/ffprobe"
	"reelpipe/internal/services"
	"reelpipe/internal/stage"
)

const (
	wordsPerCaption  = 8
	captionBoxHeight = 250
	// goldenFraction spreads successive clip offsets across the background.
	goldenFraction = 0.6180339887498949
)

// Render composes one reel: a window of the background matching the
// narration, the narration audio, and captions shown eight words at a time.
func (c *Client) Render(ctx context.Context, req stage.RenderRequest) (string, error) {
	if req.OutputPath == "" {
		return "", errors.New("ffmpeg render: output path required")
	}
	if req.Duration <= 0 {
		return "", errors.New("ffmpeg render: duration must be positive")
	}
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	bgSeconds, err := ffprobe.Duration(ctx, c.exec, c.ffprobe, req.BackgroundPath)
	if err != nil {
		return "", services.Wrap(services.ErrRender, "reels", "probe background", "", err)
	}
	offset, loop := BackgroundOffset(req.ClipIndex, bgSeconds, req.Duration)

	captionDir := strings.TrimSuffix(req.OutputPath, filepath.Ext(req.OutputPath)) + ".captions"
	captions, err := writeCaptions(captionDir, req.Text)
	if err != nil {
		return "", fmt.Errorf("write captions: %w", err)
	}
	defer os.RemoveAll(captionDir)

	args := []string{"-hide_banner", "-nostdin", "-y"}
	if loop {
		args = append(args, "-stream_loop", "-1")
	} else {
		args = append(args, "-ss", formatSeconds(offset))
	}
	args = append(args, "-i", req.BackgroundPath)
	if req.AudioPath != "" {
		args = append(args, "-i", req.AudioPath)
	}
	args = append(args, "-filter_complex", c.overlayGraph(captions, req), "-map", "[v]")
	if req.AudioPath != "" {
		args = append(args, "-map", "1:a", "-c:a", "aac", "-b:a", "192k")
	}
	args = append(args, encoderArgs()...)
	args = append(args, "-t", formatSeconds(req.Duration), req.OutputPath)

	c.logger.Info("rendering reel",
		logging.Int(logging.FieldClipIndex, req.ClipIndex),
		logging.Float64("offset_seconds", offset),
		logging.Bool("looped", loop),
		logging.Int("captions", len(captions)),
	)
	if err := c.run(ctx, args); err != nil {
		return "", services.Wrap(services.ErrRender, "reels", "ffmpeg", fmt.Sprintf("clip %d", req.ClipIndex), err)
	}
	return req.OutputPath, nil
}

// BackgroundOffset picks where in the background a clip starts. Offsets are
// deterministic per clip index and keep the window inside the background.
// When the background is not longer than the clip it is looped from 0.
func BackgroundOffset(clipIndex int, background, duration float64) (float64, bool) {
	span := background - duration
	if span <= 0 {
		return 0, true
	}
	frac := math.Mod(float64(clipIndex)*goldenFraction, 1)
	return math.Round(frac*span*1000) / 1000, false
}

// Captions splits text into caption chunks of eight words.
func Captions(text string) []string {
	words := strings.Fields(text)
	var chunks []string
	for i := 0; i < len(words); i += wordsPerCaption {
		end := min(i+wordsPerCaption, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

type caption struct {
	path string
	text string
}

func writeCaptions(dir, text string) ([]caption, error) {
	chunks := Captions(text)
	if len(chunks) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	out := make([]caption, 0, len(chunks))
	for i, chunk := range chunks {
		path := filepath.Join(dir, fmt.Sprintf("caption_%03d.txt", i+1))
		if err := os.WriteFile(path, []byte(chunk), 0o644); err != nil {
			return nil, err
		}
		out = append(out, caption{path: path, text: chunk})
	}
	return out, nil
}

func (c *Client) overlayGraph(captions []caption, req stage.RenderRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[0:v]scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,fps=%d,setsar=1",
		frameWidth, frameHeight, frameWidth, frameHeight, frameRate)
	if len(captions) > 0 {
		style := styleFor(req.Style)
		slot := req.Duration / float64(len(captions))
		fmt.Fprintf(&b, ",drawbox=x=0:y=(ih-%d)/2:w=iw:h=%d:color=black@0.6:t=fill", captionBoxHeight, captionBoxHeight)
		for i, cp := range captions {
			start := float64(i) * slot
			end := start + slot
			alpha, y, size := animationExprs(req.Animation, style, start, end, i == 0, i == len(captions)-1)
			fmt.Fprintf(&b, ",drawtext=font='%s':textfile='%s':fontsize='%s':fontcolor=%s:borderw=%d:bordercolor=%s:x=(w-text_w)/2:y='%s':alpha='%s':enable='between(t,%s,%s)'",
				escapeValue(c.font), escapeValue(cp.path), size, style.fontColor, style.borderWidth, style.borderColor,
				y, alpha, formatSeconds(start), formatSeconds(end))
		}
	}
	b.WriteString("[v]")
	return b.String()
}

// escapeValue quotes a value for use inside single quotes in a filter graph.
func escapeValue(value string) string {
	return strings.ReplaceAll(value, `'`, `'\''`)
}
