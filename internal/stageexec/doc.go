// Package stageexec runs one workflow stage and records each state
// transition in the session manifest.
package stageexec
