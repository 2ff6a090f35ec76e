// Package workflow drives one session through the background, content, and
// reels stages.
//
// The Orchestrator checks every substitute artifact before any stage runs,
// then walks the stages strictly in order. A substituted stage is recorded as
// skipped and its collaborator is never called. A running stage goes through
// stageexec so the manifest is persisted on every transition, which is what
// makes Resume possible: a new session adopts the artifacts of every stage the
// earlier session finished and reruns the rest.
//
// The reels stage loads the content export, filters and allocates it, and then
// narrates and renders each assignment on a bounded worker group.
package workflow
