// Package logs reads session log files for the CLI.
//
// Session logs are JSON lines written by the logging package. Last returns
// the tail of a log, Follow streams lines appended after an offset until the
// context ends, and Format turns a JSON record into a one-line summary for
// terminals.
package logs
