package content

import "reelpipe/internal/textutil"

// DefaultSimilarityThreshold marks two posts as the same text shared twice.
const DefaultSimilarityThreshold = 0.9

// DropNearDuplicates removes items whose narration text is a near copy of an
// earlier item, which happens when one post is cross-posted to several
// subreddits. Exact key duplicates are always removed. The first occurrence
// wins and order is preserved. It returns the kept items and the number dropped.
func DropNearDuplicates(items []Item, threshold float64) ([]Item, int) {
	kept := make([]Item, 0, len(items))
	prints := make([]*textutil.Fingerprint, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	dropped := 0
	for _, item := range items {
		if _, ok := seen[item.Key()]; ok {
			dropped++
			continue
		}
		fp := textutil.NewFingerprint(item.Text())
		duplicate := false
		if fp != nil {
			for _, other := range prints {
				if textutil.CosineSimilarity(fp, other) >= threshold {
					duplicate = true
					break
				}
			}
		}
		if duplicate {
			dropped++
			continue
		}
		seen[item.Key()] = struct{}{}
		kept = append(kept, item)
		if fp != nil {
			prints = append(prints, fp)
		}
	}
	return kept, dropped
}
