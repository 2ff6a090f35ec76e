// Package fileutil holds small filesystem helpers shared by the session store
// and the workflow: atomic writes, artifact presence checks, and directory
// listings filtered by extension.
package fileutil
