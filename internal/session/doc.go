// Package session owns the on-disk record of one pipeline run.
//
// A Manager creates the session directory under the output root, names it
// from the injected clock at second precision, and appends a numeric suffix
// when two runs start within the same second. Creation is serialized across
// processes with a lock file in the output root. The manifest is rewritten
// atomically on every Persist, so a reader sees either the previous or the
// new manifest and never a partial one.
package session
