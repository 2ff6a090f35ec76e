package testsupport

import (
	"context"
	"testing"

	"reelpipe/internal/config"
	"reelpipe/internal/history"
)

// MustOpenHistory opens the history index for cfg and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(context.Background(), history.PathFor(cfg.OutputFolder))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
