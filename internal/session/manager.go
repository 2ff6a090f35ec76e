package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"reelpipe/internal/config"
	"reelpipe/internal/fileutil"
	"reelpipe/internal/logging"
)

// IDLayout formats the creation time into a session id.
const IDLayout = "20060102_150405"

const (
	dirPrefix    = "session_"
	lockFileName = ".reelpipe.lock"
	maxSuffix    = 1000
)

// Clock supplies the current time.
type Clock func() time.Time

// Indexer receives every persisted session, typically the history database.
type Indexer interface {
	Upsert(ctx context.Context, s *Session) error
}

// Manager creates and persists sessions under one output root.
type Manager struct {
	root    string
	clock   Clock
	indexer Indexer
	logger  *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the wall clock.
func WithClock(clock Clock) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithIndexer mirrors persisted sessions into an index.
func WithIndexer(indexer Indexer) Option {
	return func(m *Manager) { m.indexer = indexer }
}

// WithLogger sets the manager logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager constructs a Manager rooted at the output folder.
func NewManager(root string, opts ...Option) *Manager {
	m := &Manager{
		root:   root,
		clock:  time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logging.String(logging.FieldComponent, "session"))
	return m
}

// Root returns the output root.
func (m *Manager) Root() string {
	return m.root
}

// Create claims a fresh session directory, lays out its subdirectories, and
// persists the initial manifest with every stage pending.
func (m *Manager) Create(ctx context.Context, cfg config.Config) (*Session, error) {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return nil, fmt.Errorf("create output root: %w", err)
	}

	lock := flock.New(filepath.Join(m.root, lockFileName))
	locked, err := lock.TryLockContext(ctx, 25*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if !locked {
		return nil, errors.New("acquire session lock: lock unavailable")
	}
	defer func() { _ = lock.Unlock() }()

	now := m.clock().UTC()
	base := now.Format(IDLayout)
	id, dir, err := m.claim(base)
	if err != nil {
		return nil, err
	}
	for _, sub := range []string{BackgroundsDirName, ReelsDirName, AudioDirName} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create session layout: %w", err)
		}
	}

	s := &Session{
		ManifestVersion: ManifestVersion,
		ID:              id,
		RunID:           uuid.NewString(),
		Dir:             dir,
		Status:          StatusRunning,
		CreatedAt:       now,
		Config:          cfg.Clone(),
	}
	for _, name := range config.StageOrder {
		s.Stages = append(s.Stages, StageOutcome{Name: name, State: StagePending})
	}
	if err := m.Persist(ctx, s); err != nil {
		return nil, err
	}
	m.logger.Debug("session created",
		logging.String(logging.FieldSessionID, id),
		logging.String("session_dir", dir),
	)
	return s, nil
}

func (m *Manager) claim(base string) (string, string, error) {
	for n := 1; n <= maxSuffix; n++ {
		id := base
		if n > 1 {
			id = fmt.Sprintf("%s_%d", base, n)
		}
		dir := filepath.Join(m.root, dirPrefix+id)
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", "", fmt.Errorf("create session directory: %w", err)
		}
	}
	return "", "", fmt.Errorf("create session directory: too many sessions for %s", base)
}

// Persist writes the manifest atomically and mirrors it into the indexer.
// Calling it repeatedly with an unchanged session rewrites identical content.
func (m *Manager) Persist(ctx context.Context, s *Session) error {
	if s == nil {
		return errors.New("persist: nil session")
	}
	s.UpdatedAt = m.clock().UTC()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(s.ManifestPath(), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if m.indexer != nil {
		if err := m.indexer.Upsert(ctx, s); err != nil {
			m.logger.Warn("session index update failed",
				logging.String(logging.FieldSessionID, s.ID),
				logging.String(logging.FieldErrorHint, "sessions list may be stale; the manifest is authoritative"),
				logging.Error(err),
			)
		}
	}
	return nil
}

// RecordStage replaces the outcome for a stage and persists the session.
func (m *Manager) RecordStage(ctx context.Context, s *Session, outcome StageOutcome) error {
	s.setStage(outcome)
	return m.Persist(ctx, s)
}

// Finish stamps the terminal status and persists.
func (m *Manager) Finish(ctx context.Context, s *Session, status Status, cause error, kind string) error {
	now := m.clock().UTC()
	s.Status = status
	s.FinishedAt = &now
	if cause != nil {
		s.Error = cause.Error()
		s.ErrorKind = kind
	}
	return m.Persist(ctx, s)
}

// Now returns the manager clock reading.
func (m *Manager) Now() time.Time {
	return m.clock().UTC()
}

// Open loads the session stored in dir.
func Open(dir string) (*Session, error) {
	return LoadManifest(filepath.Join(dir, ManifestFileName))
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	if s.ManifestVersion > ManifestVersion {
		return nil, fmt.Errorf("manifest %s has version %d, newer than supported %d", path, s.ManifestVersion, ManifestVersion)
	}
	s.Dir = filepath.Dir(path)
	return &s, nil
}

// Scan loads every session manifest under root, newest first. Unreadable
// manifests are skipped.
func Scan(root string) ([]*Session, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var sessions []*Session
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), dirPrefix) {
			continue
		}
		s, err := Open(filepath.Join(root, entry.Name()))
		if err != nil {
			continue
		}
		sessions = append(sessions, s)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
		}
		return sessions[i].ID > sessions[j].ID
	})
	return sessions, nil
}

// DirFor returns the directory a session id lives in under root.
func DirFor(root, id string) string {
	return filepath.Join(root, dirPrefix+id)
}
