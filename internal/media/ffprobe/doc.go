// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Format: container-level metadata (duration, size)
//
// Inspect runs ffprobe through a services.Executor so callers and tests can
// substitute the binary; Duration is the shortcut the narrator and renderer
// use to measure audio and background lengths.
package ffprobe
