// Package services defines shared utilities consumed by the workflow stages
// and the external collaborator adapters.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the manifest's error kinds (configuration, missing artifact,
//     collaborator failure, insufficient content, cancellation).
//   - Command execution abstractions shared by the ffmpeg and kokoro adapters
//     so tests can replace the binaries with stubs.
//
// Use these helpers when wiring new stage logic so failure reporting stays
// uniform across the pipeline.
package services
