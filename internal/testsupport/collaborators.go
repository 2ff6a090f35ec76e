package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"reelpipe/internal/content"
	"reelpipe/internal/stage"
)

// Builder is a stage.BackgroundBuilder that writes a placeholder video.
type Builder struct {
	mu    sync.Mutex
	Calls []stage.BuildRequest
	Err   error
}

// Build records the request and writes OutputPath.
func (b *Builder) Build(_ context.Context, req stage.BuildRequest) (string, error) {
	b.mu.Lock()
	b.Calls = append(b.Calls, req)
	b.mu.Unlock()
	if b.Err != nil {
		return "", b.Err
	}
	return req.OutputPath, writeArtifact(req.OutputPath, "background")
}

// Acquirer is a stage.ContentAcquirer returning a fixed item list.
type Acquirer struct {
	mu    sync.Mutex
	Items []content.Item
	Calls []stage.FetchRequest
	Err   error
}

// Fetch records the request and returns Items.
func (a *Acquirer) Fetch(_ context.Context, req stage.FetchRequest) ([]content.Item, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Calls = append(a.Calls, req)
	if a.Err != nil {
		return nil, a.Err
	}
	return append([]content.Item(nil), a.Items...), nil
}

// Narrator is a stage.Narrator reporting a fixed duration per request.
type Narrator struct {
	mu       sync.Mutex
	Calls    []stage.NarrateRequest
	Duration float64
	Err      error
	// Block, when set, waits for ctx cancellation before returning.
	Block bool
}

// Synthesize records the request and writes OutputPath.
func (n *Narrator) Synthesize(ctx context.Context, req stage.NarrateRequest) (stage.Narration, error) {
	n.mu.Lock()
	n.Calls = append(n.Calls, req)
	n.mu.Unlock()
	if n.Block {
		<-ctx.Done()
		return stage.Narration{}, ctx.Err()
	}
	if n.Err != nil {
		return stage.Narration{}, n.Err
	}
	if err := writeArtifact(req.OutputPath, "audio"); err != nil {
		return stage.Narration{}, err
	}
	return stage.Narration{AudioPath: req.OutputPath, DurationSeconds: n.Duration}, nil
}

// Requests returns a copy of the recorded requests.
func (n *Narrator) Requests() []stage.NarrateRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]stage.NarrateRequest(nil), n.Calls...)
}

// Renderer is a stage.Renderer that writes a placeholder reel.
type Renderer struct {
	mu    sync.Mutex
	Calls []stage.RenderRequest
	Err   error
}

// Render records the request and writes OutputPath.
func (r *Renderer) Render(_ context.Context, req stage.RenderRequest) (string, error) {
	r.mu.Lock()
	r.Calls = append(r.Calls, req)
	r.mu.Unlock()
	if r.Err != nil {
		return "", r.Err
	}
	return req.OutputPath, writeArtifact(req.OutputPath, fmt.Sprintf("reel %d", req.ClipIndex))
}

// Requests returns a copy of the recorded requests.
func (r *Renderer) Requests() []stage.RenderRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]stage.RenderRequest(nil), r.Calls...)
}

// Fakes bundles one of each recording double.
type Fakes struct {
	Builder  *Builder
	Acquirer *Acquirer
	Narrator *Narrator
	Renderer *Renderer
}

// NewFakes returns doubles whose acquirer serves items.
func NewFakes(items []content.Item) *Fakes {
	return &Fakes{
		Builder:  &Builder{},
		Acquirer: &Acquirer{Items: items},
		Narrator: &Narrator{Duration: 12.5},
		Renderer: &Renderer{},
	}
}

// Collaborators exposes the doubles as stage collaborators.
func (f *Fakes) Collaborators() stage.Collaborators {
	return stage.Collaborators{
		Builder:  f.Builder,
		Acquirer: f.Acquirer,
		Narrator: f.Narrator,
		Renderer: f.Renderer,
	}
}

// Item builds a content item with an explicit reading time. The narration
// text repeats id so items with distinct ids of three or more characters
// never look like near duplicates.
func Item(id string, score int, readingTime float64) content.Item {
	body := strings.TrimSpace(strings.Repeat(id+" ", 3)) + " keep going."
	return content.Item{
		ID:                 id,
		Subreddit:          "GetMotivated",
		Title:              "Post " + id,
		Content:            body,
		FullText:           "Post " + id + ". " + body,
		Author:             "someone",
		Score:              score,
		URL:                "https://reddit.com/r/GetMotivated/comments/" + id,
		ReadingTimeSeconds: readingTime,
	}
}

func writeArtifact(path, body string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(body), 0o644)
}
