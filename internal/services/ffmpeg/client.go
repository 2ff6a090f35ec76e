package ffmpeg

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"

	"reelpipe/internal/logging"
	"reelpipe/internal/services"
	"reelpipe/internal/stage"
)

const (
	frameWidth  = 1080
	frameHeight = 1920
	frameRate   = 30
)

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger sets the logger used for ffmpeg output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFont selects the drawtext font family.
func WithFont(font string) Option {
	return func(c *Client) {
		if strings.TrimSpace(font) != "" {
			c.font = strings.TrimSpace(font)
		}
	}
}

// Client wraps ffmpeg and ffprobe invocations.
type Client struct {
	ffmpeg  string
	ffprobe string
	font    string
	exec    services.Executor
	logger  *slog.Logger
}

// New constructs a Client for the given binaries.
func New(ffmpegBinary, ffprobeBinary string, opts ...Option) (*Client, error) {
	ffmpegBinary = strings.TrimSpace(ffmpegBinary)
	if ffmpegBinary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	ffprobeBinary = strings.TrimSpace(ffprobeBinary)
	if ffprobeBinary == "" {
		ffprobeBinary = "ffprobe"
	}
	c := &Client{
		ffmpeg:  ffmpegBinary,
		ffprobe: ffprobeBinary,
		font:    "DejaVu Sans",
		exec:    services.CommandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "ffmpeg")
	return c, nil
}

// HealthCheck reports whether both binaries resolve.
func (c *Client) HealthCheck(context.Context) stage.Health {
	for _, bin := range []string{c.ffmpeg, c.ffprobe} {
		if _, err := exec.LookPath(bin); err != nil {
			return stage.Unhealthy("ffmpeg", "binary "+bin+" not found")
		}
	}
	return stage.Healthy("ffmpeg")
}

func (c *Client) run(ctx context.Context, args []string) error {
	return c.exec.Run(ctx, c.ffmpeg, args, func(line string) {
		c.logger.Debug("ffmpeg output", logging.String("line", line))
	})
}

func encoderArgs() []string {
	return []string{
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-r", "30",
		"-movflags", "+faststart",
	}
}
