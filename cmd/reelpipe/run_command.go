package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelpipe/internal/config"
	"reelpipe/internal/preflight"
	"reelpipe/internal/services"
	"reelpipe/internal/workflow"
)

type runFlags struct {
	outputFolder string
	stockFolder  string

	bgDuration         int
	numClips           int
	effectType         string
	transitionType     string
	transitionDuration float64

	subreddits  []string
	postsPerSub int
	minTime     float64
	maxTime     float64

	numReels      int
	language      string
	voice         string
	voicePool     []string
	textStyle     string
	textAnimation string
	voiceSpeed    float64
	maxDuration   float64
	workers       int

	skipBackground  bool
	existingBG      string
	skipScraping    bool
	existingContent string
	skipReels       bool
	existingReels   string

	logLevel string

	dryRun bool
	json   bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build a background, fetch posts, and render narrated reels",
		Long: `Run the three pipeline stages in order: background, content, reels.

Any stage can be replaced by an artifact from an earlier session with the
matching --skip-* and --existing-* flags. Flags override the configuration
file, which overrides the built-in defaults.`,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx.setOverrides(f.layer(cmd))
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if f.dryRun {
				return dryRun(cmd, ctx, cfg, f.json)
			}
			return runPipeline(cmd, ctx, cfg, f.json)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.outputFolder, "output-folder", "", "Directory that receives session folders")
	flags.StringVar(&f.stockFolder, "stock-folder", "", "Directory of stock video clips")

	flags.IntVar(&f.bgDuration, "bg-duration", 0, "Background length in seconds")
	flags.IntVar(&f.numClips, "num-clips", 0, "Stock clips to use (0 picks from the duration)")
	flags.StringVar(&f.effectType, "effect-type", "", "Background effect: "+strings.Join(config.EffectTypes, ", "))
	flags.StringVar(&f.transitionType, "transition-type", "", "Clip transition: "+strings.Join(config.TransitionTypes, ", "))
	flags.Float64Var(&f.transitionDuration, "transition-duration", 0, "Transition length in seconds")

	flags.StringSliceVar(&f.subreddits, "subreddits", nil, "Subreddits to read, comma separated")
	flags.IntVar(&f.postsPerSub, "posts-per-sub", 0, "Posts requested per subreddit")
	flags.Float64Var(&f.minTime, "min-time", 0, "Minimum reading time in seconds")
	flags.Float64Var(&f.maxTime, "max-time", 0, "Maximum reading time in seconds")

	flags.IntVar(&f.numReels, "num-reels", 0, "Number of reels to render")
	flags.StringVar(&f.language, "language", "", "Narration language code")
	flags.StringVar(&f.voice, "voice", "", "Narration voice (see 'reelpipe voices')")
	flags.StringSliceVar(&f.voicePool, "voice-pool", nil, "Voices to rotate across reels, comma separated")
	flags.StringVar(&f.textStyle, "text-style", "", "Caption style: "+strings.Join(config.TextStyles, ", "))
	flags.StringVar(&f.textAnimation, "text-animation", "", "Caption animation: "+strings.Join(config.TextAnimations, ", "))
	flags.Float64Var(&f.voiceSpeed, "voice-speed", 0, "Narration speed multiplier")
	flags.Float64Var(&f.maxDuration, "max-duration", 0, "Longest allowed reel in seconds")
	flags.IntVar(&f.workers, "workers", 0, "Reels rendered concurrently")

	flags.BoolVar(&f.skipBackground, "skip-background", false, "Reuse an existing background video")
	flags.StringVar(&f.existingBG, "existing-bg", "", "Background video used with --skip-background")
	flags.BoolVar(&f.skipScraping, "skip-scraping", false, "Reuse an existing content export")
	flags.StringVar(&f.existingContent, "existing-content", "", "Content JSON used with --skip-scraping")
	flags.BoolVar(&f.skipReels, "skip-reels", false, "Reuse an existing reels folder")
	flags.StringVar(&f.existingReels, "existing-reels", "", "Reels folder used with --skip-reels")

	flags.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	flags.BoolVar(&f.dryRun, "dry-run", false, "Resolve and validate the configuration without running")
	flags.BoolVar(&f.json, "json", false, "Print a machine-readable summary")

	return cmd
}

// layer converts the flags the user actually set into an override layer.
func (f *runFlags) layer(cmd *cobra.Command) config.Layer {
	changed := cmd.Flags().Changed
	var l config.Layer

	if changed("output-folder") {
		l.OutputFolder = config.Ptr(f.outputFolder)
	}
	if changed("stock-folder") {
		l.StockVideosFolder = config.Ptr(f.stockFolder)
	}

	if changed("bg-duration") {
		l.Background.Duration = config.Ptr(f.bgDuration)
	}
	if changed("num-clips") {
		l.Background.NumClips = config.Ptr(f.numClips)
	}
	if changed("effect-type") {
		l.Background.EffectType = config.Ptr(f.effectType)
	}
	if changed("transition-type") {
		l.Background.TransitionType = config.Ptr(f.transitionType)
	}
	if changed("transition-duration") {
		l.Background.TransitionDuration = config.Ptr(f.transitionDuration)
	}

	if changed("subreddits") {
		l.Content.Subreddits = f.subreddits
	}
	if changed("posts-per-sub") {
		l.Content.PostsPerSub = config.Ptr(f.postsPerSub)
	}
	if changed("min-time") {
		l.Content.MinReadingTime = config.Ptr(f.minTime)
	}
	if changed("max-time") {
		l.Content.MaxReadingTime = config.Ptr(f.maxTime)
	}

	if changed("num-reels") {
		l.Reels.NumReels = config.Ptr(f.numReels)
	}
	if changed("language") {
		l.Reels.Language = config.Ptr(f.language)
	}
	if changed("voice") {
		l.Reels.Voice = config.Ptr(f.voice)
	}
	if changed("voice-pool") {
		l.Reels.VoicePool = f.voicePool
	}
	if changed("text-style") {
		l.Reels.TextStyle = config.Ptr(f.textStyle)
	}
	if changed("text-animation") {
		l.Reels.TextAnimation = config.Ptr(f.textAnimation)
	}
	if changed("voice-speed") {
		l.Reels.VoiceSpeed = config.Ptr(f.voiceSpeed)
	}
	if changed("max-duration") {
		l.Reels.MaxDuration = config.Ptr(f.maxDuration)
	}
	if changed("workers") {
		l.Reels.Workers = config.Ptr(f.workers)
	}

	if changed("skip-background") {
		l.SkipBackground = config.Ptr(f.skipBackground)
	}
	if changed("existing-bg") {
		l.ExistingBackgroundVideo = config.Ptr(f.existingBG)
	}
	if changed("skip-scraping") {
		l.SkipScraping = config.Ptr(f.skipScraping)
	}
	if changed("existing-content") {
		l.ExistingContentFile = config.Ptr(f.existingContent)
	}
	if changed("skip-reels") {
		l.SkipReels = config.Ptr(f.skipReels)
	}
	if changed("existing-reels") {
		l.ExistingReelsFolder = config.Ptr(f.existingReels)
	}

	if changed("log-level") {
		l.Logging.Level = config.Ptr(f.logLevel)
	}
	return l
}

type dryRunReport struct {
	ConfigPath string         `json:"config_path,omitempty"`
	Valid      bool           `json:"valid"`
	Error      string         `json:"error,omitempty"`
	ErrorKind  string         `json:"error_kind,omitempty"`
	Config     *config.Config `json:"config"`
}

func dryRun(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, asJSON bool) error {
	_, checkErr := workflow.CheckSubstitutes(cfg)

	if asJSON {
		report := dryRunReport{Valid: checkErr == nil, Config: cfg}
		if ctx.configExists {
			report.ConfigPath = ctx.configPath
		}
		if checkErr != nil {
			report.Error = checkErr.Error()
			report.ErrorKind = services.Kind(checkErr)
		}
		if err := writeJSON(cmd, report); err != nil {
			return err
		}
		return checkErr
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderSettings(configSettings(ctx, cfg)))
	if checkErr != nil {
		return checkErr
	}
	fmt.Fprintln(out, "Configuration valid")
	return nil
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, asJSON bool) error {
	if err := checkPreflight(cmd, cfg); err != nil {
		return err
	}
	logger, err := ctx.logger(cmd)
	if err != nil {
		return err
	}
	p, err := newPipeline(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer p.close()

	s, runErr := p.orchestrator.Run(cmd.Context(), cfg)
	if s != nil {
		if err := printSummary(cmd, newRunSummary(s, runErr), asJSON); err != nil {
			return err
		}
	}
	return runErr
}

// checkPreflight fails fast when a required directory or binary is missing.
// Tool checks are skipped when a substitute is unusable: that run fails
// before any tool is needed and the orchestrator records it in a manifest.
func checkPreflight(cmd *cobra.Command, cfg *config.Config) error {
	if err := cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrConfiguration, "preflight", "output folder", "cannot create output folder", err)
	}
	if _, err := workflow.CheckSubstitutes(cfg); err != nil {
		return nil
	}
	failed := preflight.Failed(preflight.RunAll(cfg, workflow.StockExtensions))
	if len(failed) == 0 {
		return nil
	}
	errOut := cmd.ErrOrStderr()
	colorize := shouldColorize(errOut)
	for _, r := range failed {
		fmt.Fprintln(errOut, renderStatusLine(r.Name, statusError, r.Detail, colorize))
	}
	return services.Wrap(services.ErrExternalTool, "preflight", "check", preflight.Summary(failed)+"; run 'reelpipe doctor' for details", nil)
}
