// Package ffmpeg implements the background builder and the reel renderer on
// top of the ffmpeg command line.
//
// Both operations assemble a single filter graph and hand it to a
// services.Executor, so tests can capture the arguments without a real
// binary. Output is vertical 1080x1920 H.264 at 30 fps.
package ffmpeg
