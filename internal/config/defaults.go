package config

const (
	defaultOutputFolder      = "reelpipe_output"
	defaultStockVideosFolder = "StockVideos"
	defaultRedditBaseURL     = "https://www.reddit.com"
	defaultRedditOAuthURL    = "https://oauth.reddit.com"
	defaultRedditTokenURL    = "https://www.reddit.com/api/v1/access_token"
	defaultRedditUserAgent   = "reelpipe/1.0 (content pipeline)"
)

// DefaultSubreddits are motivational communities whose top posts read well aloud.
var DefaultSubreddits = []string{
	"GetMotivated",
	"motivation",
	"wholesomememes",
	"LifeProTips",
	"decidingtobebetter",
	"selfimprovement",
	"quotes",
	"productivity",
	"findapath",
	"UpliftingNews",
}

// Default returns the repository defaults.
func Default() Config {
	return Config{
		OutputFolder:      defaultOutputFolder,
		StockVideosFolder: defaultStockVideosFolder,
		Background: Background{
			Duration:           120,
			NumClips:           0,
			EffectType:         "cinematic",
			TransitionType:     "crossfade",
			TransitionDuration: 1.5,
		},
		Content: Content{
			Subreddits:     append([]string(nil), DefaultSubreddits...),
			PostsPerSub:    25,
			MinReadingTime: 30,
			MaxReadingTime: 180,
		},
		Reels: Reels{
			NumReels:      5,
			Language:      "a",
			Voice:         "af_heart",
			TextStyle:     "modern",
			TextAnimation: "fade",
			VoiceSpeed:    1.0,
			MaxDuration:   90,
			Workers:       1,
		},
		Reddit: Reddit{
			BaseURL:           defaultRedditBaseURL,
			OAuthBaseURL:      defaultRedditOAuthURL,
			TokenURL:          defaultRedditTokenURL,
			UserAgent:         defaultRedditUserAgent,
			TimeFilter:        "week",
			RequestIntervalMS: 1000,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
		Workflow: Workflow{
			StageTimeout: 0,
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
			Kokoro:  "kokoro",
		},
		Stages: Stages{
			Background: RunPlan(),
			Content:    RunPlan(),
			Reels:      RunPlan(),
		},
	}
}
