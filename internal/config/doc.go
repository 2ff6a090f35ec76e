// Package config resolves, normalizes, and validates reelpipe configuration.
//
// Three layers feed a run: repository defaults, an optional file layer (TOML,
// JSON, or YAML, chosen by extension), and explicit overrides from the command
// line. Resolve merges them per field, so a partially specified [reels] table
// never erases defaults it does not mention, and validates every numeric field
// against a closed range before returning. Stage skip requests are folded into
// a StagePlan per stage, either "run" or "substitute <path>", which the
// workflow consumes without re-reading any flags.
//
// Resolve is pure. Load wraps it with the I/O a command needs: locating and
// decoding the file, reading REDDIT_* credentials from the environment, and
// expanding user paths.
package config
