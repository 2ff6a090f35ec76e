package session

import (
	"context"
	"os"
	"slices"
	"time"

	"reelpipe/internal/logging"
)

// PruneOptions selects sessions for removal.
type PruneOptions struct {
	// OlderThan removes sessions last updated before now minus this age.
	OlderThan time.Duration
	// Statuses limits removal to these statuses. Empty means completed and
	// aborted; running sessions are only removed when listed explicitly.
	Statuses []Status
	DryRun   bool
}

// PruneResult lists what Prune removed (or would remove) and what failed.
type PruneResult struct {
	Removed []*Session
	Errors  []PruneError
}

// PruneError pairs a session directory with its removal error.
type PruneError struct {
	Dir   string
	Error error
}

// Prune deletes session directories under the manager root that match opts.
func (m *Manager) Prune(ctx context.Context, opts PruneOptions) (PruneResult, error) {
	var result PruneResult

	sessions, err := Scan(m.root)
	if err != nil {
		return result, err
	}
	statuses := opts.Statuses
	if len(statuses) == 0 {
		statuses = []Status{StatusCompleted, StatusAborted}
	}
	cutoff := m.Now().Add(-opts.OlderThan)

	for _, s := range sessions {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !slices.Contains(statuses, s.Status) || !s.UpdatedAt.Before(cutoff) {
			continue
		}
		if opts.DryRun {
			result.Removed = append(result.Removed, s)
			continue
		}
		if err := os.RemoveAll(s.Dir); err != nil {
			result.Errors = append(result.Errors, PruneError{Dir: s.Dir, Error: err})
			m.logger.Warn("failed to remove session directory",
				logging.String("session_dir", s.Dir),
				logging.Error(err),
				logging.String(logging.FieldEventType, "session_prune_failed"),
				logging.String(logging.FieldErrorHint, "check output folder permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, s)
		m.logger.Info("removed session directory",
			logging.String(logging.FieldSessionID, s.ID),
			logging.String("status", string(s.Status)),
			logging.Duration("age", m.Now().Sub(s.UpdatedAt)),
			logging.String(logging.FieldEventType, "session_prune"),
		)
	}
	return result, nil
}
