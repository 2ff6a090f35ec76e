package session

import (
	"path/filepath"
	"time"

	"reelpipe/internal/allocator"
	"reelpipe/internal/config"
)

// ManifestVersion is bumped whenever the manifest layout changes incompatibly.
const ManifestVersion = 1

// Fixed layout under a session directory.
const (
	BackgroundsDirName = "backgrounds"
	ReelsDirName       = "reels"
	AudioDirName       = "audio"
	ManifestFileName   = "manifest.json"
	LogFileName        = "session.log"
)

// Status is the overall state of a session.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

// StageState is the state of one stage within a session.
type StageState string

const (
	StagePending   StageState = "pending"
	StageRunning   StageState = "running"
	StageSkipped   StageState = "skipped"
	StageSucceeded StageState = "succeeded"
	StageFailed    StageState = "failed"
)

// Done reports whether the stage produced or adopted its artifact.
func (s StageState) Done() bool {
	return s == StageSucceeded || s == StageSkipped
}

// StageOutcome records what happened to one stage.
type StageOutcome struct {
	Name            config.StageName `json:"name"`
	State           StageState       `json:"state"`
	Artifacts       []string         `json:"artifacts,omitempty"`
	StartedAt       *time.Time       `json:"started_at,omitempty"`
	FinishedAt      *time.Time       `json:"finished_at,omitempty"`
	DurationSeconds float64          `json:"duration_seconds,omitempty"`
	Error           string           `json:"error,omitempty"`
	ErrorKind       string           `json:"error_kind,omitempty"`
}

// Clip records one rendered reel.
type Clip struct {
	ClipIndex        int     `json:"clip_index"`
	Path             string  `json:"path"`
	AudioPath        string  `json:"audio_path"`
	NarrationSeconds float64 `json:"narration_seconds"`
	Voice            string  `json:"voice"`
	ItemKey          string  `json:"item_key"`
}

// Session is the persisted record of one run. Only the workflow and the
// Manager mutate it.
type Session struct {
	ManifestVersion int                    `json:"manifest_version"`
	ID              string                 `json:"id"`
	RunID           string                 `json:"run_id"`
	Dir             string                 `json:"dir"`
	Status          Status                 `json:"status"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	FinishedAt      *time.Time             `json:"finished_at,omitempty"`
	ResumedFrom     string                 `json:"resumed_from,omitempty"`
	Config          config.Config          `json:"config"`
	Stages          []StageOutcome         `json:"stages"`
	BackgroundPath  string                 `json:"background_path,omitempty"`
	ContentPath     string                 `json:"content_path,omitempty"`
	ReelsPath       string                 `json:"reels_path,omitempty"`
	Assignments     []allocator.Assignment `json:"assignments,omitempty"`
	Rejections      []allocator.Rejection  `json:"rejections,omitempty"`
	Clips           []Clip                 `json:"clips,omitempty"`
	Error           string                 `json:"error,omitempty"`
	ErrorKind       string                 `json:"error_kind,omitempty"`
}

// BackgroundsDir is where the background video is written.
func (s *Session) BackgroundsDir() string { return filepath.Join(s.Dir, BackgroundsDirName) }

// ReelsDir is where rendered reels are written.
func (s *Session) ReelsDir() string { return filepath.Join(s.Dir, ReelsDirName) }

// AudioDir is where narration audio is written.
func (s *Session) AudioDir() string { return filepath.Join(s.Dir, AudioDirName) }

// ManifestPath is the manifest location.
func (s *Session) ManifestPath() string { return filepath.Join(s.Dir, ManifestFileName) }

// LogPath is the per-session log file.
func (s *Session) LogPath() string { return filepath.Join(s.Dir, LogFileName) }

// ContentJSONPath is the content export written by the content stage.
func (s *Session) ContentJSONPath() string {
	return filepath.Join(s.Dir, "content_"+s.ID+".json")
}

// ContentCSVPath is the spreadsheet view of the content export.
func (s *Session) ContentCSVPath() string {
	return filepath.Join(s.Dir, "content_"+s.ID+".csv")
}

// Stage returns the outcome recorded for name.
func (s *Session) Stage(name config.StageName) (StageOutcome, bool) {
	for _, st := range s.Stages {
		if st.Name == name {
			return st, true
		}
	}
	return StageOutcome{}, false
}

// Artifact returns the first artifact recorded for a done stage.
func (s *Session) Artifact(name config.StageName) (string, bool) {
	st, ok := s.Stage(name)
	if !ok || !st.State.Done() || len(st.Artifacts) == 0 {
		return "", false
	}
	return st.Artifacts[0], true
}

// Completed reports whether every stage succeeded or was substituted.
func (s *Session) Completed() bool {
	if len(s.Stages) == 0 {
		return false
	}
	for _, st := range s.Stages {
		if !st.State.Done() {
			return false
		}
	}
	return true
}

// FailedStage returns the first failed stage, if any.
func (s *Session) FailedStage() (StageOutcome, bool) {
	for _, st := range s.Stages {
		if st.State == StageFailed {
			return st, true
		}
	}
	return StageOutcome{}, false
}

func (s *Session) setStage(outcome StageOutcome) {
	for i := range s.Stages {
		if s.Stages[i].Name == outcome.Name {
			s.Stages[i] = outcome
			return
		}
	}
	s.Stages = append(s.Stages, outcome)
}
