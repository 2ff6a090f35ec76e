package session_test

import (
	"context"
	"os"
	"testing"
	"time"

	"reelpipe/internal/session"
)

func TestPruneRemovesOldFinishedSessions(t *testing.T) {
	root := t.TempDir()
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	oldMgr := session.NewManager(root, session.WithClock(fixedClock(old)))
	done, err := oldMgr.Create(ctx, testConfig())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := oldMgr.Finish(ctx, done, session.StatusCompleted, nil, ""); err != nil {
		t.Fatalf("finish: %v", err)
	}
	running, err := oldMgr.Create(ctx, testConfig())
	if err != nil {
		t.Fatalf("create running: %v", err)
	}

	recentMgr := session.NewManager(root, session.WithClock(fixedClock(old.Add(72*time.Hour))))
	recent, err := recentMgr.Create(ctx, testConfig())
	if err != nil {
		t.Fatalf("create recent: %v", err)
	}
	if err := recentMgr.Finish(ctx, recent, session.StatusAborted, nil, ""); err != nil {
		t.Fatalf("finish recent: %v", err)
	}

	dry, err := recentMgr.Prune(ctx, session.PruneOptions{OlderThan: 24 * time.Hour, DryRun: true})
	if err != nil {
		t.Fatalf("dry prune: %v", err)
	}
	if len(dry.Removed) != 1 || dry.Removed[0].ID != done.ID {
		t.Fatalf("dry run selected %+v", dry.Removed)
	}
	if _, err := os.Stat(done.Dir); err != nil {
		t.Fatalf("dry run removed %s: %v", done.Dir, err)
	}

	result, err := recentMgr.Prune(ctx, session.PruneOptions{OlderThan: 24 * time.Hour})
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if len(result.Removed) != 1 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, err := os.Stat(done.Dir); !os.IsNotExist(err) {
		t.Fatalf("expected %s removed, stat err %v", done.Dir, err)
	}
	for _, keep := range []string{running.Dir, recent.Dir} {
		if _, err := os.Stat(keep); err != nil {
			t.Fatalf("expected %s kept: %v", keep, err)
		}
	}

	result, err = recentMgr.Prune(ctx, session.PruneOptions{OlderThan: 24 * time.Hour, Statuses: []session.Status{session.StatusRunning}})
	if err != nil {
		t.Fatalf("prune running: %v", err)
	}
	if len(result.Removed) != 1 || result.Removed[0].ID != running.ID {
		t.Fatalf("expected running session pruned, got %+v", result.Removed)
	}
}

func TestPruneMissingRootIsEmpty(t *testing.T) {
	mgr := session.NewManager(t.TempDir() + "/absent")
	result, err := mgr.Prune(context.Background(), session.PruneOptions{})
	if err != nil || len(result.Removed) != 0 {
		t.Fatalf("expected empty result, got %+v %v", result, err)
	}
}
