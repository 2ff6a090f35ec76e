package config

import "fmt"

// StageName identifies one pipeline stage.
type StageName string

// Pipeline stages in execution order.
const (
	StageBackground StageName = "background"
	StageContent    StageName = "content"
	StageReels      StageName = "reels"
)

// StageOrder lists the stages in the order the workflow runs them.
var StageOrder = []StageName{StageBackground, StageContent, StageReels}

// PlanMode selects whether a stage executes or reuses an existing artifact.
type PlanMode string

const (
	PlanRun        PlanMode = "run"
	PlanSubstitute PlanMode = "substitute"
)

// StagePlan is the resolved decision for one stage. Path is only meaningful
// for substitute plans and may be empty when a skip was requested without an
// artifact; the workflow rejects that before any stage executes.
type StagePlan struct {
	Mode PlanMode `json:"mode"`
	Path string   `json:"path,omitempty"`
}

// RunPlan returns a plan that executes the stage.
func RunPlan() StagePlan {
	return StagePlan{Mode: PlanRun}
}

// SubstitutePlan returns a plan that reuses the artifact at path.
func SubstitutePlan(path string) StagePlan {
	return StagePlan{Mode: PlanSubstitute, Path: path}
}

// Substitute reports whether the stage reuses an existing artifact.
func (p StagePlan) Substitute() bool {
	return p.Mode == PlanSubstitute
}

func (p StagePlan) String() string {
	if p.Substitute() {
		if p.Path == "" {
			return "substitute (no path)"
		}
		return fmt.Sprintf("substitute %s", p.Path)
	}
	return string(PlanRun)
}

// Plan returns the plan for the named stage.
func (s Stages) Plan(name StageName) StagePlan {
	switch name {
	case StageBackground:
		return s.Background
	case StageContent:
		return s.Content
	case StageReels:
		return s.Reels
	default:
		return RunPlan()
	}
}

// WithPlan returns a copy of s with the named stage's plan replaced.
func (s Stages) WithPlan(name StageName, plan StagePlan) Stages {
	switch name {
	case StageBackground:
		s.Background = plan
	case StageContent:
		s.Content = plan
	case StageReels:
		s.Reels = plan
	}
	return s
}
