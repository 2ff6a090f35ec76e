package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"reelpipe/internal/session"
)

// FileName is the index database name inside the output folder.
const FileName = "sessions.db"

// Store is the session history index backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// PathFor returns the index location for an output folder.
func PathFor(outputFolder string) string {
	return filepath.Join(outputFolder, FileName)
}

// Open initializes or connects to the index database and applies migrations.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure index directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Upsert mirrors a session manifest into the index, replacing its stage rows.
func (s *Store) Upsert(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return errors.New("upsert: nil session")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO sessions (
            id, run_id, dir, status, created_at, updated_at, finished_at,
            num_reels, clips_rendered, error_kind, error_message, resumed_from
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            run_id = excluded.run_id,
            dir = excluded.dir,
            status = excluded.status,
            updated_at = excluded.updated_at,
            finished_at = excluded.finished_at,
            num_reels = excluded.num_reels,
            clips_rendered = excluded.clips_rendered,
            error_kind = excluded.error_kind,
            error_message = excluded.error_message,
            resumed_from = excluded.resumed_from`,
		sess.ID,
		sess.RunID,
		sess.Dir,
		string(sess.Status),
		formatTime(sess.CreatedAt),
		formatTime(sess.UpdatedAt),
		nullableTime(sess.FinishedAt),
		sess.Config.Reels.NumReels,
		len(sess.Clips),
		nullableString(sess.ErrorKind),
		nullableString(sess.Error),
		nullableString(sess.ResumedFrom),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM stage_outcomes WHERE session_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("clear stage outcomes: %w", err)
	}
	for i, st := range sess.Stages {
		artifact := ""
		if len(st.Artifacts) > 0 {
			artifact = st.Artifacts[0]
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO stage_outcomes (
                session_id, stage, position, state, artifact, started_at, finished_at,
                duration_seconds, error_kind, error_message
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sess.ID,
			string(st.Name),
			i,
			string(st.State),
			nullableString(artifact),
			nullableTime(st.StartedAt),
			nullableTime(st.FinishedAt),
			st.DurationSeconds,
			nullableString(st.ErrorKind),
			nullableString(st.Error),
		)
		if err != nil {
			return fmt.Errorf("insert stage outcome %s: %w", st.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// ListOptions filters List.
type ListOptions struct {
	Status session.Status
	Limit  int
}

// List returns indexed sessions newest first without stage detail.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Record, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	var args []any
	if opts.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(opts.Status))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Get returns one session with its stage outcomes, or nil when not indexed.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, strings.TrimSpace(id))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+stageColumns+` FROM stage_outcomes WHERE session_id = ? ORDER BY position`, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("list stage outcomes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		st, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stage outcome: %w", err)
		}
		rec.Stages = append(rec.Stages, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Remove drops a session from the index.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("remove session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Rebuild replaces the index contents with the manifests found under root.
func (s *Store) Rebuild(ctx context.Context, root string) (int, error) {
	sessions, err := session.Scan(root)
	if err != nil {
		return 0, fmt.Errorf("scan sessions: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return 0, fmt.Errorf("clear index: %w", err)
	}
	for _, sess := range sessions {
		if err := s.Upsert(ctx, sess); err != nil {
			return 0, err
		}
	}
	return len(sessions), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
