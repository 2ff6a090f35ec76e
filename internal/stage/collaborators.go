package stage

import (
	"context"

	"reelpipe/internal/content"
)

// BuildRequest describes the background video to assemble.
type BuildRequest struct {
	StockClips         []string
	TargetDuration     float64
	NumClips           int
	Effect             string
	Transition         string
	TransitionDuration float64
	OutputPath         string
}

// BackgroundBuilder assembles stock clips into one background video.
type BackgroundBuilder interface {
	Build(ctx context.Context, req BuildRequest) (string, error)
}

// FetchRequest selects the posts to acquire.
type FetchRequest struct {
	Subreddits  []string
	PostsPerSub int
}

// ContentAcquirer fetches candidate text content.
type ContentAcquirer interface {
	Fetch(ctx context.Context, req FetchRequest) ([]content.Item, error)
}

// NarrateRequest is one text-to-speech job.
type NarrateRequest struct {
	Text       string
	Voice      string
	Language   string
	Speed      float64
	OutputPath string
}

// Narration is the synthesized audio and its measured length.
type Narration struct {
	AudioPath       string
	DurationSeconds float64
}

// Narrator turns text into speech.
type Narrator interface {
	Synthesize(ctx context.Context, req NarrateRequest) (Narration, error)
}

// RenderRequest is one reel to compose.
type RenderRequest struct {
	BackgroundPath string
	AudioPath      string
	Text           string
	Style          string
	Animation      string
	Duration       float64
	ClipIndex      int
	OutputPath     string
}

// Renderer composes background, narration, and text overlay into a reel.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (string, error)
}

// Collaborators bundles the external services one run needs.
type Collaborators struct {
	Builder  BackgroundBuilder
	Acquirer ContentAcquirer
	Narrator Narrator
	Renderer Renderer
}

// HealthChecker is implemented by collaborators that can report readiness.
type HealthChecker interface {
	HealthCheck(ctx context.Context) Health
}

// CheckAll collects health from every collaborator that reports it.
func (c Collaborators) CheckAll(ctx context.Context) []Health {
	var out []Health
	for _, candidate := range []any{c.Builder, c.Acquirer, c.Narrator, c.Renderer} {
		if hc, ok := candidate.(HealthChecker); ok {
			out = append(out, hc.HealthCheck(ctx))
		}
	}
	return out
}
