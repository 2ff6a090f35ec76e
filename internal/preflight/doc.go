// Package preflight provides readiness checks for the external binaries and
// filesystem paths a run depends on.
//
// The doctor command prints every check; run consults the same checks
// before creating a session so a missing ffmpeg or an unwritable output
// folder fails fast instead of after the background has been built.
// Checks for stages planned as substitutes are skipped.
package preflight
