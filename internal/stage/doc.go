// Package stage defines the collaborator contracts the workflow drives: a
// background builder, a content acquirer, a narrator, and a renderer. Each is
// a single request/response call that either returns its artifact or an error
// tagged with one of the services markers.
package stage
