// Package kokoro narrates text with the kokoro text-to-speech command and
// measures the result with ffprobe.
package kokoro
