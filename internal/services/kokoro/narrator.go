package kokoro

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"reelpipe/internal/fileutil"
	"reelpipe/internal/language"
	"reelpipe/internal/logging"
	"reelpipe/internal/media/ffprobe"
	"reelpipe/internal/services"
	"reelpipe/internal/stage"
)

// MaxWords caps how much text one narration reads.
const MaxWords = 200

// Option configures the narrator.
type Option func(*Narrator)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(n *Narrator) {
		if exec != nil {
			n.exec = exec
		}
	}
}

// WithLogger sets the narrator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Narrator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// Narrator implements stage.Narrator on the kokoro command.
type Narrator struct {
	binary  string
	ffprobe string
	exec    services.Executor
	logger  *slog.Logger
}

// New constructs a Narrator.
func New(binary, ffprobeBinary string, opts ...Option) (*Narrator, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("kokoro binary required")
	}
	n := &Narrator{
		binary:  binary,
		ffprobe: strings.TrimSpace(ffprobeBinary),
		exec:    services.CommandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = logging.NewComponentLogger(n.logger, "kokoro")
	return n, nil
}

// Synthesize reads req.Text aloud into req.OutputPath and reports the audio
// duration.
func (n *Narrator) Synthesize(ctx context.Context, req stage.NarrateRequest) (stage.Narration, error) {
	text := LimitWords(req.Text, MaxWords)
	if text == "" {
		return stage.Narration{}, services.Wrap(services.ErrSynthesis, "reels", "narrate", "no text to narrate", nil)
	}
	if req.OutputPath == "" {
		return stage.Narration{}, errors.New("kokoro: output path required")
	}
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return stage.Narration{}, fmt.Errorf("create audio directory: %w", err)
	}

	input := strings.TrimSuffix(req.OutputPath, filepath.Ext(req.OutputPath)) + ".txt"
	if err := os.WriteFile(input, []byte(text), 0o644); err != nil {
		return stage.Narration{}, fmt.Errorf("write narration text: %w", err)
	}
	defer os.Remove(input)

	speed := req.Speed
	if speed <= 0 {
		speed = 1
	}
	args := []string{
		"--input-file", input,
		"--output-file", req.OutputPath,
		"--voice", req.Voice,
		"--speed", strconv.FormatFloat(speed, 'f', -1, 64),
	}
	if lang := narrationLanguage(req.Language, req.Voice); lang != "" {
		args = append(args, "--language", lang)
	}
	if err := n.exec.Run(ctx, n.binary, args, func(line string) {
		n.logger.Debug("kokoro output", logging.String("line", line))
	}); err != nil {
		return stage.Narration{}, services.Wrap(services.ErrSynthesis, "reels", "kokoro", "voice "+req.Voice, err)
	}
	if err := fileutil.CheckNonEmptyFile(req.OutputPath); err != nil {
		return stage.Narration{}, services.Wrap(services.ErrSynthesis, "reels", "kokoro", "no audio produced", err)
	}

	seconds, err := ffprobe.Duration(ctx, n.exec, n.ffprobe, req.OutputPath)
	if err != nil {
		return stage.Narration{}, services.Wrap(services.ErrSynthesis, "reels", "probe audio", "", err)
	}
	n.logger.Debug("narration synthesized",
		logging.String("voice", req.Voice),
		logging.Float64("seconds", seconds),
		logging.Int("words", len(strings.Fields(text))),
	)
	return stage.Narration{AudioPath: req.OutputPath, DurationSeconds: seconds}, nil
}

// HealthCheck reports whether the kokoro command resolves.
func (n *Narrator) HealthCheck(context.Context) stage.Health {
	if _, err := exec.LookPath(n.binary); err != nil {
		return stage.Unhealthy("kokoro", "binary "+n.binary+" not found")
	}
	return stage.Healthy("kokoro")
}

// LimitWords keeps the first limit words of text, marking a cut with an
// ellipsis.
func LimitWords(text string, limit int) string {
	words := strings.Fields(text)
	if limit <= 0 || len(words) <= limit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:limit], " ") + "..."
}

// narrationLanguage resolves the Kokoro language letter from the configured
// language, falling back to the letter the voice id implies.
func narrationLanguage(configured, voice string) string {
	if code, ok := language.Normalize(configured); ok {
		return code
	}
	if code, ok := language.ForVoice(voice); ok {
		return code
	}
	return strings.TrimSpace(configured)
}
