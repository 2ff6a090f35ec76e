// Package history keeps a SQLite index of session manifests so past runs can
// be listed without walking the output folder.
//
// The manifest in each session directory stays authoritative; the index is
// rebuilt from it on every persist and can be deleted at any time. Schema
// changes ship as embedded, ordered SQL migrations recorded in
// schema_migrations.
package history
