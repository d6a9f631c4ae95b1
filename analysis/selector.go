package analysis

import (
	"sort"

	"audiolib/model"
)

// this file applies the domain policy that turns normalized classifier
// output into the document's primary emotion set.

// SelectorPolicy filters and ranks canonical (label, score) pairs.
type SelectorPolicy struct {
	// Allowed is the selectable vocabulary. Neutral-ish labels are kept
	// out of it on purpose.
	Allowed []string
	// MinScore is inclusive: a score exactly at the threshold is kept.
	MinScore float64
	// MaxResults bounds the primary emotion set.
	MaxResults int
}

// DefaultSelectorPolicy matches the most recent service iteration:
// the six-core vocabulary, threshold 0.5, at most 3 emotions.
func DefaultSelectorPolicy() SelectorPolicy {
	return SelectorPolicy{
		Allowed:    model.CanonicalEmotions,
		MinScore:   0.5,
		MaxResults: 3,
	}
}

// Select reduces canonical pairs to the ordered primary emotion list and
// its score map.
//
// Duplicate canonical labels (several raw aliases collapsing onto one
// canonical form) are max-aggregated: the highest score wins, and the
// label keeps the position of its first appearance for tie-breaking.
// Output is sorted descending by score, stable on ties, truncated to
// MaxResults. An empty result means "no dominant emotion detected".
func (p SelectorPolicy) Select(pairs []ScoredLabel) ([]string, map[string]float64) {
	allowed := make(map[string]bool, len(p.Allowed))
	for _, label := range p.Allowed {
		allowed[label] = true
	}

	// max-aggregate per canonical label, preserving first-seen order
	order := make([]string, 0, len(pairs))
	best := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		if pair.Label == "" {
			continue
		}
		if prev, seen := best[pair.Label]; seen {
			if pair.Score > prev {
				best[pair.Label] = pair.Score
			}
			continue
		}
		best[pair.Label] = pair.Score
		order = append(order, pair.Label)
	}

	kept := make([]string, 0, len(order))
	for _, label := range order {
		if allowed[label] && best[label] >= p.MinScore {
			kept = append(kept, label)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return best[kept[i]] > best[kept[j]]
	})

	if p.MaxResults > 0 && len(kept) > p.MaxResults {
		kept = kept[:p.MaxResults]
	}

	scores := make(map[string]float64, len(kept))
	for _, label := range kept {
		scores[label] = best[label]
	}

	return kept, scores
}
