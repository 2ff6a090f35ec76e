package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration       = errors.New("configuration error")
	ErrMissingArtifact     = errors.New("missing artifact")
	ErrAcquire             = errors.New("content acquisition failed")
	ErrBuild               = errors.New("background build failed")
	ErrSynthesis           = errors.New("speech synthesis failed")
	ErrRender              = errors.New("render failed")
	ErrInsufficientContent = errors.New("insufficient content")
	ErrCancelled           = errors.New("cancelled")
	ErrExternalTool        = errors.New("external tool error")
)

// Kind labels recorded in the session manifest for failed stages.
const (
	KindConfiguration       = "config"
	KindMissingArtifact     = "missing_artifact"
	KindAcquire             = "acquire"
	KindBuild               = "build"
	KindSynthesis           = "synthesis"
	KindRender              = "render"
	KindInsufficientContent = "insufficient_content"
	KindCancelled           = "cancelled"
	KindInternal            = "internal"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind maps an error to the label persisted alongside a failed stage.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrMissingArtifact):
		return KindMissingArtifact
	case errors.Is(err, ErrInsufficientContent):
		return KindInsufficientContent
	case errors.Is(err, ErrAcquire):
		return KindAcquire
	case errors.Is(err, ErrBuild):
		return KindBuild
	case errors.Is(err, ErrSynthesis):
		return KindSynthesis
	case errors.Is(err, ErrRender):
		return KindRender
	default:
		return KindInternal
	}
}

// ExitCode maps an error to the process exit status used by the CLI.
func ExitCode(err error) int {
	switch Kind(err) {
	case "":
		return 0
	case KindConfiguration:
		return 2
	case KindMissingArtifact:
		return 3
	case KindInsufficientContent:
		return 4
	default:
		return 1
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
