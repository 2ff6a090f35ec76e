package history

import (
	"database/sql"
	"time"

	"reelpipe/internal/session"
)

const sessionColumns = "id, run_id, dir, status, created_at, updated_at, finished_at, num_reels, clips_rendered, error_kind, error_message, resumed_from"

const stageColumns = "stage, state, artifact, started_at, finished_at, duration_seconds, error_kind, error_message"

// Record is one indexed session.
type Record struct {
	ID            string
	RunID         string
	Dir           string
	Status        session.Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
	FinishedAt    *time.Time
	NumReels      int
	ClipsRendered int
	ErrorKind     string
	ErrorMessage  string
	ResumedFrom   string
	Stages        []StageRecord
}

// StageRecord is one indexed stage outcome.
type StageRecord struct {
	Stage           string
	State           session.StageState
	Artifact        string
	StartedAt       *time.Time
	FinishedAt      *time.Time
	DurationSeconds float64
	ErrorKind       string
	ErrorMessage    string
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		rec         Record
		status      string
		createdRaw  string
		updatedRaw  string
		finishedRaw sql.NullString
		errorKind   sql.NullString
		errorMsg    sql.NullString
		resumedFrom sql.NullString
	)
	if err := scanner.Scan(
		&rec.ID,
		&rec.RunID,
		&rec.Dir,
		&status,
		&createdRaw,
		&updatedRaw,
		&finishedRaw,
		&rec.NumReels,
		&rec.ClipsRendered,
		&errorKind,
		&errorMsg,
		&resumedFrom,
	); err != nil {
		return nil, err
	}
	rec.Status = session.Status(status)
	rec.CreatedAt = parseTime(createdRaw)
	rec.UpdatedAt = parseTime(updatedRaw)
	rec.FinishedAt = parseNullableTime(finishedRaw)
	rec.ErrorKind = errorKind.String
	rec.ErrorMessage = errorMsg.String
	rec.ResumedFrom = resumedFrom.String
	return &rec, nil
}

func scanStage(scanner interface{ Scan(dest ...any) error }) (*StageRecord, error) {
	var (
		st          StageRecord
		state       string
		artifact    sql.NullString
		startedRaw  sql.NullString
		finishedRaw sql.NullString
		errorKind   sql.NullString
		errorMsg    sql.NullString
	)
	if err := scanner.Scan(
		&st.Stage,
		&state,
		&artifact,
		&startedRaw,
		&finishedRaw,
		&st.DurationSeconds,
		&errorKind,
		&errorMsg,
	); err != nil {
		return nil, err
	}
	st.State = session.StageState(state)
	st.Artifact = artifact.String
	st.StartedAt = parseNullableTime(startedRaw)
	st.FinishedAt = parseNullableTime(finishedRaw)
	st.ErrorKind = errorKind.String
	st.ErrorMessage = errorMsg.String
	return &st, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseNullableTime(raw sql.NullString) *time.Time {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	t := parseTime(raw.String)
	if t.IsZero() {
		return nil
	}
	return &t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
