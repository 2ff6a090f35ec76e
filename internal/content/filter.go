package content

import (
	"cmp"
	"slices"
)

// Scored is an Item annotated by Filter.
type Scored struct {
	Item   Item
	Passed bool
	Rank   int
}

// Result is the outcome of Filter.
type Result struct {
	Candidates []Scored
	Passing    int
	Rejected   int
}

// Filter keeps items whose reading time lies in [minTime, maxTime] and orders
// them by descending score with ties left in input order. Ranks are 1-based.
// Items with no reading time get one estimated first. Filtering the items of
// a previous result with the same bounds yields the same candidates.
func Filter(items []Item, minTime, maxTime float64) Result {
	candidates := make([]Scored, 0, len(items))
	rejected := 0
	for _, item := range items {
		item = item.WithReadingTime()
		if item.ReadingTimeSeconds < minTime || item.ReadingTimeSeconds > maxTime {
			rejected++
			continue
		}
		candidates = append(candidates, Scored{Item: item, Passed: true})
	}
	slices.SortStableFunc(candidates, func(a, b Scored) int {
		return cmp.Compare(b.Item.Score, a.Item.Score)
	})
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	return Result{
		Candidates: candidates,
		Passing:    len(candidates),
		Rejected:   rejected,
	}
}
