package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelpipe/internal/config"
	"reelpipe/internal/services"
	"reelpipe/internal/session"
	"reelpipe/internal/textutil"
)

const maxErrorWidth = 160

type stageSummary struct {
	Name      string   `json:"name"`
	State     string   `json:"state"`
	Artifacts []string `json:"artifacts,omitempty"`
	Seconds   float64  `json:"duration_seconds,omitempty"`
	ErrorKind string   `json:"error_kind,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type runSummary struct {
	SessionID   string         `json:"session_id"`
	Dir         string         `json:"dir"`
	Status      string         `json:"status"`
	ResumedFrom string         `json:"resumed_from,omitempty"`
	ReelsPath   string         `json:"reels_path,omitempty"`
	Stages      []stageSummary `json:"stages"`
	Clips       []session.Clip `json:"clips,omitempty"`
	Error       string         `json:"error,omitempty"`
	ErrorKind   string         `json:"error_kind,omitempty"`
	ExitCode    int            `json:"exit_code"`
}

func newRunSummary(s *session.Session, runErr error) runSummary {
	summary := runSummary{
		SessionID:   s.ID,
		Dir:         s.Dir,
		Status:      string(s.Status),
		ResumedFrom: s.ResumedFrom,
		ReelsPath:   s.ReelsPath,
		Clips:       s.Clips,
		Error:       s.Error,
		ErrorKind:   s.ErrorKind,
		ExitCode:    services.ExitCode(runErr),
	}
	for _, st := range s.Stages {
		summary.Stages = append(summary.Stages, stageSummary{
			Name:      string(st.Name),
			State:     string(st.State),
			Artifacts: st.Artifacts,
			Seconds:   st.DurationSeconds,
			ErrorKind: st.ErrorKind,
			Error:     st.Error,
		})
	}
	if runErr != nil && summary.Error == "" {
		summary.Error = runErr.Error()
		summary.ErrorKind = services.Kind(runErr)
	}
	return summary
}

func printSummary(cmd *cobra.Command, summary runSummary, asJSON bool) error {
	if asJSON {
		return writeJSON(cmd, summary)
	}
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Session "+summary.SessionID, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Status", sessionStatusKind(summary.Status), summary.Status, colorize))
	fmt.Fprintln(out, renderStatusLine("Directory", statusInfo, summary.Dir, colorize))
	if summary.ResumedFrom != "" {
		fmt.Fprintln(out, renderStatusLine("Resumed from", statusInfo, summary.ResumedFrom, colorize))
	}
	for _, st := range summary.Stages {
		fmt.Fprintln(out, renderStatusLine(displayStageName(st.Name), stageStatusKind(st.State), stageMessage(st), colorize))
	}
	if len(summary.Clips) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderClipTable(summary.Clips))
	}
	if summary.Error != "" {
		fmt.Fprintln(out, renderStatusLine("Error", statusError, textutil.Truncate(summary.Error, maxErrorWidth), colorize))
	}
	return nil
}

func renderClipTable(clips []session.Clip) string {
	rows := make([][]string, 0, len(clips))
	for _, c := range clips {
		rows = append(rows, []string{
			strconv.Itoa(c.ClipIndex + 1),
			filepath.Base(c.Path),
			c.Voice,
			formatSeconds(c.NarrationSeconds),
			c.ItemKey,
		})
	}
	return renderTable(
		[]string{"#", "Reel", "Voice", "Narration", "Post"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func stageMessage(st stageSummary) string {
	switch {
	case st.Error != "":
		return st.ErrorKind + ": " + textutil.Truncate(st.Error, maxErrorWidth)
	case len(st.Artifacts) > 0:
		msg := st.Artifacts[0]
		if len(st.Artifacts) > 1 {
			msg = fmt.Sprintf("%s (+%d)", msg, len(st.Artifacts)-1)
		}
		if st.Seconds > 0 {
			msg += " in " + formatSeconds(st.Seconds)
		}
		return st.State + " " + msg
	default:
		return st.State
	}
}

func stageStatusKind(state string) statusKind {
	switch session.StageState(state) {
	case session.StageSucceeded:
		return statusOK
	case session.StageSkipped:
		return statusInfo
	case session.StageFailed:
		return statusError
	default:
		return statusWarn
	}
}

func sessionStatusKind(status string) statusKind {
	switch session.Status(status) {
	case session.StatusCompleted:
		return statusOK
	case session.StatusAborted:
		return statusError
	default:
		return statusWarn
	}
}

func displayStageName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func formatSeconds(seconds float64) string {
	return (time.Duration(seconds * float64(time.Second))).Round(100 * time.Millisecond).String()
}

// configSettings lists the resolved configuration in display order.
func configSettings(ctx *commandContext, cfg *config.Config) [][2]string {
	source := "defaults only"
	if ctx.configExists {
		source = ctx.configPath
	}
	reddit := "anonymous"
	if cfg.Reddit.HasCredentials() {
		reddit = "oauth client credentials"
	}
	return [][2]string{
		{"Config file", source},
		{"Output folder", cfg.OutputFolder},
		{"Stock folder", cfg.StockVideosFolder},
		{"Background", fmt.Sprintf("%ds, %s effect, %s %.1fs", cfg.Background.Duration, cfg.Background.EffectType, cfg.Background.TransitionType, cfg.Background.TransitionDuration)},
		{"Background clips", clipCountLabel(cfg.Background.NumClips)},
		{"Subreddits", strings.Join(cfg.Content.Subreddits, ", ")},
		{"Posts per subreddit", strconv.Itoa(cfg.Content.PostsPerSub)},
		{"Reading time", fmt.Sprintf("%gs - %gs", cfg.Content.MinReadingTime, cfg.Content.MaxReadingTime)},
		{"Reels", strconv.Itoa(cfg.Reels.NumReels)},
		{"Voices", strings.Join(cfg.Voices(), ", ")},
		{"Language", cfg.Reels.Language},
		{"Voice speed", fmt.Sprintf("%gx", cfg.Reels.VoiceSpeed)},
		{"Captions", cfg.Reels.TextStyle + ", " + cfg.Reels.TextAnimation},
		{"Max reel duration", fmt.Sprintf("%gs", cfg.Reels.MaxDuration)},
		{"Workers", strconv.Itoa(cfg.Reels.Workers)},
		{"Reddit access", reddit},
		{"Background stage", cfg.Stages.Background.String()},
		{"Content stage", cfg.Stages.Content.String()},
		{"Reels stage", cfg.Stages.Reels.String()},
	}
}

func clipCountLabel(n int) string {
	if n == 0 {
		return "auto"
	}
	return strconv.Itoa(n)
}
