// Package allocator binds ranked content to output clips.
package allocator

import (
	"errors"
	"fmt"
	"math"

	"reelpipe/internal/content"
	"reelpipe/internal/services"
)

// Request carries the render parameters shared by every assignment.
type Request struct {
	NumReels        int
	MaxReelDuration float64
	VoiceSpeed      float64
	TextStyle       string
	TextAnimation   string
	Voices          []string
}

// Assignment binds one content item to one output clip.
type Assignment struct {
	ClipIndex      int          `json:"clip_index"`
	Item           content.Item `json:"item"`
	Rank           int          `json:"rank"`
	Voice          string       `json:"voice"`
	VoiceSpeed     float64      `json:"voice_speed"`
	TextStyle      string       `json:"text_style"`
	TextAnimation  string       `json:"text_animation"`
	TargetDuration float64      `json:"target_duration"`
}

// Rejection records a candidate passed over during allocation.
type Rejection struct {
	Rank           int     `json:"rank"`
	ItemKey        string  `json:"item_key"`
	TargetDuration float64 `json:"target_duration"`
	Reason         string  `json:"reason"`
}

// Result is the outcome of Allocate.
type Result struct {
	Assignments []Assignment
	Rejections  []Rejection
}

// InsufficientContentError reports that fewer qualifying items exist than
// clips were requested.
type InsufficientContentError struct {
	Requested int
	Available int
}

func (e *InsufficientContentError) Error() string {
	return fmt.Sprintf("insufficient content: %d reels requested, %d qualifying items available", e.Requested, e.Available)
}

// Unwrap ties the error to the shared classification marker.
func (e *InsufficientContentError) Unwrap() error {
	return services.ErrInsufficientContent
}

// Allocate walks candidates in rank order and assigns the first NumReels that
// qualify. Non-passing candidates and repeated content keys are skipped.
// Candidates whose spoken duration (reading time / voice speed) exceeds
// MaxReelDuration are rejected and the next ranked candidate takes their
// place. Voices rotate round-robin in assignment order. Either exactly
// NumReels assignments are returned or an *InsufficientContentError.
func Allocate(candidates []content.Scored, req Request) (Result, error) {
	if req.NumReels < 1 {
		return Result{}, errors.New("allocate: num reels must be positive")
	}
	if req.VoiceSpeed <= 0 {
		return Result{}, errors.New("allocate: voice speed must be positive")
	}
	if len(req.Voices) == 0 {
		return Result{}, errors.New("allocate: at least one voice is required")
	}

	var res Result
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if len(res.Assignments) == req.NumReels {
			break
		}
		if !c.Passed {
			continue
		}
		key := c.Item.Key()
		if _, dup := seen[key]; dup {
			res.Rejections = append(res.Rejections, Rejection{Rank: c.Rank, ItemKey: key, Reason: "duplicate content"})
			continue
		}
		seen[key] = struct{}{}

		spoken := c.Item.ReadingTimeSeconds / req.VoiceSpeed
		target := roundTenth(spoken)
		if req.MaxReelDuration > 0 && spoken > req.MaxReelDuration {
			res.Rejections = append(res.Rejections, Rejection{
				Rank:           c.Rank,
				ItemKey:        key,
				TargetDuration: target,
				Reason:         fmt.Sprintf("spoken duration %.2fs exceeds max %.1fs", spoken, req.MaxReelDuration),
			})
			continue
		}

		idx := len(res.Assignments)
		res.Assignments = append(res.Assignments, Assignment{
			ClipIndex:      idx + 1,
			Item:           c.Item,
			Rank:           c.Rank,
			Voice:          req.Voices[idx%len(req.Voices)],
			VoiceSpeed:     req.VoiceSpeed,
			TextStyle:      req.TextStyle,
			TextAnimation:  req.TextAnimation,
			TargetDuration: target,
		})
	}

	if len(res.Assignments) < req.NumReels {
		return Result{Rejections: res.Rejections}, &InsufficientContentError{
			Requested: req.NumReels,
			Available: len(res.Assignments),
		}
	}
	return res, nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
