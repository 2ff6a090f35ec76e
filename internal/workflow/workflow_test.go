package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelpipe/internal/allocator"
	"reelpipe/internal/config"
	"reelpipe/internal/content"
	"reelpipe/internal/services"
	"reelpipe/internal/session"
	"reelpipe/internal/stage"
	"reelpipe/internal/testsupport"
	"reelpipe/internal/workflow"
)

// rankedItems returns posts whose reading times are 20, 40, 200, 90 and 60
// seconds in descending score order.
func rankedItems() []content.Item {
	return []content.Item{
		testsupport.Item("p01", 100, 20),
		testsupport.Item("p02", 90, 40),
		testsupport.Item("p03", 80, 200),
		testsupport.Item("p04", 70, 90),
		testsupport.Item("p05", 60, 60),
	}
}

func newOrchestrator(cfg *config.Config, collab stage.Collaborators) (*workflow.Orchestrator, *session.Manager) {
	mgr := session.NewManager(cfg.OutputFolder)
	return workflow.New(mgr, collab, nil), mgr
}

func stageState(t *testing.T, s *session.Session, name config.StageName) session.StageOutcome {
	t.Helper()
	st, ok := s.Stage(name)
	if !ok {
		t.Fatalf("stage %s missing from session", name)
	}
	return st
}

func TestRunProducesReelsFromTopPassingItems(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStockClips(2), testsupport.WithReels(3, 30, 180))
	fakes := testsupport.NewFakes(rankedItems())
	orch, _ := newOrchestrator(cfg, fakes.Collaborators())

	s, err := orch.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if s.Status != session.StatusCompleted || !s.Completed() {
		t.Fatalf("expected completed session, got %s", s.Status)
	}
	if len(fakes.Builder.Calls) != 1 || len(fakes.Builder.Calls[0].StockClips) != 2 {
		t.Fatalf("expected one build over two stock clips, got %+v", fakes.Builder.Calls)
	}

	wantIDs := []string{"p02", "p04", "p05"}
	if len(s.Assignments) != len(wantIDs) {
		t.Fatalf("expected %d assignments, got %d", len(wantIDs), len(s.Assignments))
	}
	for i, a := range s.Assignments {
		if a.Item.ID != wantIDs[i] || a.ClipIndex != i+1 {
			t.Fatalf("assignment %d = %s/%d, want %s/%d", i, a.Item.ID, a.ClipIndex, wantIDs[i], i+1)
		}
		if a.Voice != config.Default().Reels.Voice {
			t.Fatalf("assignment %d voice = %q", i, a.Voice)
		}
	}

	renders := fakes.Renderer.Requests()
	if len(renders) != 3 || len(s.Clips) != 3 {
		t.Fatalf("expected 3 renders and clips, got %d/%d", len(renders), len(s.Clips))
	}
	for i, clip := range s.Clips {
		if clip.ClipIndex != i+1 {
			t.Fatalf("clip %d has index %d", i, clip.ClipIndex)
		}
		if filepath.Dir(clip.Path) != s.ReelsDir() {
			t.Fatalf("clip written outside reels dir: %s", clip.Path)
		}
		if clip.NarrationSeconds != 12.5 {
			t.Fatalf("clip %d narration = %v", i, clip.NarrationSeconds)
		}
	}
	for _, r := range renders {
		if r.BackgroundPath != s.BackgroundPath || r.Duration != 12.5 {
			t.Fatalf("unexpected render request %+v", r)
		}
	}

	reloaded, err := session.Open(s.Dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, name := range config.StageOrder {
		if st := stageState(t, reloaded, name); st.State != session.StageSucceeded {
			t.Fatalf("stage %s = %s after reload", name, st.State)
		}
	}
	if _, err := os.Stat(s.ContentCSVPath()); err != nil {
		t.Fatalf("content csv missing: %v", err)
	}
	if reloaded.ReelsPath != s.ReelsDir() {
		t.Fatalf("reels path = %q", reloaded.ReelsPath)
	}
	for _, path := range []string{reloaded.BackgroundPath, reloaded.ContentPath} {
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Fatalf("artifact %q missing after reload: %v", path, err)
		}
	}
	if len(reloaded.Clips) != 3 {
		t.Fatalf("expected 3 clips after reload, got %d", len(reloaded.Clips))
	}
	for _, clip := range reloaded.Clips {
		for _, path := range []string{clip.Path, clip.AudioPath} {
			if info, err := os.Stat(path); err != nil || info.Size() == 0 {
				t.Fatalf("clip %d artifact %q missing after reload: %v", clip.ClipIndex, path, err)
			}
		}
	}
}

func TestSubstitutedStagesAreNeverInvoked(t *testing.T) {
	base := t.TempDir()
	bg := filepath.Join(base, "bg.mp4")
	testsupport.WriteFile(t, bg, 128)
	export := testsupport.WriteContentExport(t, base, rankedItems())

	cfg := testsupport.NewConfig(t,
		testsupport.WithReels(2, 30, 180),
		testsupport.WithPlan(config.StageBackground, config.SubstitutePlan(bg)),
		testsupport.WithPlan(config.StageContent, config.SubstitutePlan(export)),
	)
	fakes := testsupport.NewFakes(nil)
	orch, _ := newOrchestrator(cfg, fakes.Collaborators())

	s, err := orch.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(fakes.Builder.Calls) != 0 || len(fakes.Acquirer.Calls) != 0 {
		t.Fatalf("substituted stages ran: build=%d fetch=%d", len(fakes.Builder.Calls), len(fakes.Acquirer.Calls))
	}
	for _, name := range []config.StageName{config.StageBackground, config.StageContent} {
		if st := stageState(t, s, name); st.State != session.StageSkipped {
			t.Fatalf("stage %s = %s, want skipped", name, st.State)
		}
	}
	if s.BackgroundPath != bg || s.ContentPath != export {
		t.Fatalf("artifacts not adopted: %q %q", s.BackgroundPath, s.ContentPath)
	}
	if len(s.Clips) != 2 {
		t.Fatalf("expected 2 clips, got %d", len(s.Clips))
	}
}

func TestSubstitutedReelsCompletesWithoutRendering(t *testing.T) {
	base := t.TempDir()
	bg := filepath.Join(base, "bg.mp4")
	testsupport.WriteFile(t, bg, 16)
	export := testsupport.WriteContentExport(t, base, rankedItems())
	reels := testsupport.WriteReelsDir(t, filepath.Join(base, "reels"), 2)

	cfg := testsupport.NewConfig(t,
		testsupport.WithPlan(config.StageBackground, config.SubstitutePlan(bg)),
		testsupport.WithPlan(config.StageContent, config.SubstitutePlan(export)),
		testsupport.WithPlan(config.StageReels, config.SubstitutePlan(reels)),
	)
	fakes := testsupport.NewFakes(nil)
	orch, _ := newOrchestrator(cfg, fakes.Collaborators())

	s, err := orch.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(fakes.Narrator.Requests()) != 0 || len(fakes.Renderer.Requests()) != 0 {
		t.Fatal("reels stage ran despite substitution")
	}
	if s.ReelsPath != reels || !s.Completed() {
		t.Fatalf("unexpected session %+v", s)
	}
}

func TestMissingExistingBackgroundHaltsBeforeContent(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.mp4")
	cfg := testsupport.NewConfig(t, testsupport.WithPlan(config.StageBackground, config.SubstitutePlan(missing)))
	fakes := testsupport.NewFakes(rankedItems())
	orch, _ := newOrchestrator(cfg, fakes.Collaborators())

	s, err := orch.Run(context.Background(), cfg)
	if !errors.Is(err, services.ErrMissingArtifact) {
		t.Fatalf("expected missing artifact error, got %v", err)
	}
	if services.ExitCode(err) != 3 {
		t.Fatalf("exit code = %d", services.ExitCode(err))
	}
	if len(fakes.Acquirer.Calls) != 0 {
		t.Fatal("content stage ran after background failure")
	}
	bgStage := stageState(t, s, config.StageBackground)
	if bgStage.State != session.StageFailed || bgStage.ErrorKind != services.KindMissingArtifact {
		t.Fatalf("unexpected background outcome %+v", bgStage)
	}
	if st := stageState(t, s, config.StageContent); st.State != session.StagePending {
		t.Fatalf("content stage = %s, want pending", st.State)
	}
	if s.Status != session.StatusAborted || s.ErrorKind != services.KindMissingArtifact {
		t.Fatalf("unexpected session status %s/%s", s.Status, s.ErrorKind)
	}
}

func TestLaterMissingSubstituteFailsBeforeAnyWork(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithStockClips(1),
		testsupport.WithPlan(config.StageReels, config.SubstitutePlan("")),
	)
	fakes := testsupport.NewFakes(rankedItems())
	orch, _ := newOrchestrator(cfg, fakes.Collaborators())

	s, err := orch.Run(context.Background(), cfg)
	if !errors.Is(err, services.ErrMissingArtifact) || !strings.Contains(err.Error(), "--existing-reels") {
		t.Fatalf("expected missing reels artifact error, got %v", err)
	}
	if len(fakes.Builder.Calls) != 0 {
		t.Fatal("background stage ran before substitutes were checked")
	}
	if st := stageState(t, s, config.StageReels); st.State != session.StageFailed {
		t.Fatalf("reels stage = %s, want failed", st.State)
	}
}

func TestInsufficientContentFailsReelsStage(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStockClips(1), testsupport.WithReels(4, 30, 180))
	fakes := testsupport.NewFakes(rankedItems())
	orch, _ := newOrchestrator(cfg, fakes.Collaborators())

	s, err := orch.Run(context.Background(), cfg)
	var insufficient *allocator.InsufficientContentError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected insufficient content error, got %v", err)
	}
	if insufficient.Requested != 4 || insufficient.Available != 3 {
		t.Fatalf("unexpected shortfall %+v", insufficient)
	}
	if services.ExitCode(err) != 4 {
		t.Fatalf("exit code = %d", services.ExitCode(err))
	}
	for _, name := range []config.StageName{config.StageBackground, config.StageContent} {
		if st := stageState(t, s, name); st.State != session.StageSucceeded {
			t.Fatalf("stage %s = %s", name, st.State)
		}
	}
	reels := stageState(t, s, config.StageReels)
	if reels.State != session.StageFailed || reels.ErrorKind != services.KindInsufficientContent {
		t.Fatalf("unexpected reels outcome %+v", reels)
	}
	if len(fakes.Narrator.Requests()) != 0 {
		t.Fatal("narration started despite insufficient content")
	}
}

func TestOverlongItemsAreBackfilledFromLowerRanks(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStockClips(1), testsupport.WithReels(2, 30, 180))
	cfg.Reels.MaxDuration = 70
	fakes := testsupport.NewFakes(rankedItems())
	orch, _ := newOrchestrator(cfg, fakes.Collaborators())

	s, err := orch.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if s.Assignments[0].Item.ID != "p02" || s.Assignments[1].Item.ID != "p05" {
		t.Fatalf("unexpected assignments %s, %s", s.Assignments[0].Item.ID, s.Assignments[1].Item.ID)
	}
	if len(s.Rejections) != 1 || s.Rejections[0].ItemKey != "GetMotivated/p04" {
		t.Fatalf("unexpected rejections %+v", s.Rejections)
	}
}

func TestRenderFailureIsClassified(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStockClips(1), testsupport.WithReels(2, 30, 180))
	fakes := testsupport.NewFakes(rankedItems())
	fakes.Renderer.Err = errors.New("encoder crashed")
	orch, _ := newOrchestrator(cfg, fakes.Collaborators())

	s, err := orch.Run(context.Background(), cfg)
	if !errors.Is(err, services.ErrRender) {
		t.Fatalf("expected render error, got %v", err)
	}
	if reels := stageState(t, s, config.StageReels); reels.ErrorKind != services.KindRender {
		t.Fatalf("unexpected reels outcome %+v", reels)
	}
}

func TestCancelledRunFailsNextStage(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStockClips(1))
	fakes := testsupport.NewFakes(rankedItems())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	acquirer := &cancellingAcquirer{inner: fakes.Acquirer, cancel: cancel}
	collab := fakes.Collaborators()
	collab.Acquirer = acquirer
	orch, mgr := newOrchestrator(cfg, collab)

	s, err := mgr.Create(context.Background(), *cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	err = orch.Execute(ctx, s)
	if !errors.Is(err, services.ErrCancelled) {
		t.Fatalf("expected cancelled error, got %v", err)
	}
	if st := stageState(t, s, config.StageContent); st.State != session.StageSucceeded {
		t.Fatalf("content stage = %s", st.State)
	}
	reels := stageState(t, s, config.StageReels)
	if reels.State != session.StageFailed || reels.ErrorKind != services.KindCancelled {
		t.Fatalf("unexpected reels outcome %+v", reels)
	}
	if len(fakes.Narrator.Requests()) != 0 {
		t.Fatal("reels stage started after cancellation")
	}
	reloaded, err := session.Open(s.Dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if reloaded.Status != session.StatusAborted {
		t.Fatalf("persisted status = %s", reloaded.Status)
	}
}

type cancellingAcquirer struct {
	inner  stage.ContentAcquirer
	cancel context.CancelFunc
}

func (c *cancellingAcquirer) Fetch(ctx context.Context, req stage.FetchRequest) ([]content.Item, error) {
	items, err := c.inner.Fetch(ctx, req)
	c.cancel()
	return items, err
}

func TestResumeSkipsFinishedStages(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStockClips(1), testsupport.WithReels(2, 30, 180))
	fakes := testsupport.NewFakes(rankedItems())
	fakes.Renderer.Err = errors.New("disk full")
	orch, _ := newOrchestrator(cfg, fakes.Collaborators())

	first, err := orch.Run(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected first run to fail")
	}
	prev, err := session.Open(first.Dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	fakes.Renderer.Err = nil
	resumed, err := orch.Resume(context.Background(), prev, cfg)
	if err != nil {
		t.Fatalf("Resume returned error: %v", err)
	}
	if resumed.ID == prev.ID || resumed.ResumedFrom != prev.ID {
		t.Fatalf("resume should start a new session linked to %s, got %s from %s", prev.ID, resumed.ID, resumed.ResumedFrom)
	}
	if len(fakes.Builder.Calls) != 1 || len(fakes.Acquirer.Calls) != 1 {
		t.Fatalf("finished stages reran: build=%d fetch=%d", len(fakes.Builder.Calls), len(fakes.Acquirer.Calls))
	}
	for _, name := range []config.StageName{config.StageBackground, config.StageContent} {
		if st := stageState(t, resumed, name); st.State != session.StageSkipped {
			t.Fatalf("stage %s = %s, want skipped", name, st.State)
		}
	}
	if !resumed.Completed() || len(resumed.Clips) != 2 {
		t.Fatalf("resumed session incomplete: %s with %d clips", resumed.Status, len(resumed.Clips))
	}
	if resumed.BackgroundPath != first.BackgroundPath {
		t.Fatalf("background not reused: %q vs %q", resumed.BackgroundPath, first.BackgroundPath)
	}
}

func TestResumeConfigRejectsCompletedSession(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStockClips(1), testsupport.WithReels(1, 30, 180))
	fakes := testsupport.NewFakes(rankedItems())
	orch, _ := newOrchestrator(cfg, fakes.Collaborators())

	s, err := orch.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if _, err := workflow.ResumeConfig(s, cfg); err == nil {
		t.Fatal("expected completed session to be rejected")
	}
}

func TestCheckSubstitutesRejectsEmptyReelsDir(t *testing.T) {
	base := t.TempDir()
	bg := filepath.Join(base, "bg.mp4")
	testsupport.WriteFile(t, bg, 8)
	empty := filepath.Join(base, "reels")
	if err := os.Mkdir(empty, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Stages = cfg.Stages.
		WithPlan(config.StageBackground, config.SubstitutePlan(bg)).
		WithPlan(config.StageReels, config.SubstitutePlan(empty))

	name, err := workflow.CheckSubstitutes(&cfg)
	if name != config.StageReels || !errors.Is(err, services.ErrMissingArtifact) {
		t.Fatalf("got %s, %v", name, err)
	}
}
