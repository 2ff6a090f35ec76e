// Package main hosts the reelpipe CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration from defaults, the config
// file, the environment, and flags, then hands the result to the workflow
// orchestrator. Session listing, configuration scaffolding, the voice catalog,
// and the doctor preflight live here as thin commands over internal packages.
//
// Keep this package lean: new behavior belongs in internal packages first and
// is surfaced here through commands or flags.
package main
