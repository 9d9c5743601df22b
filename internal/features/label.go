package features

import "linkpred/internal/hierarchy"

// newPageContainsLabel checks the source label against every text-bearing
// node of the target screen.
func newPageContainsLabel() *extractor {
	return &extractor{
		strategy: PageContainsLabel,
		names:    []string{"exact_match", "contains_match"},
		compute: func(el hierarchy.ElementRef, target *hierarchy.ViewHierarchy) Vector {
			exact, contains := labelMatch(el.Label(), target.TextNodes())
			return Vector{b2f(exact), b2f(contains)}
		},
	}
}

// newLargestTextElementsContainLabel is PageContainsLabel restricted to the
// n largest text-bearing target nodes. With n or fewer text nodes on the
// target both strategies agree.
func newLargestTextElementsContainLabel(n int) *extractor {
	return &extractor{
		strategy: LargestTextElementsContainLabel,
		names:    []string{"exact_match", "contains_match"},
		compute: func(el hierarchy.ElementRef, target *hierarchy.ViewHierarchy) Vector {
			exact, contains := labelMatch(el.Label(), largestTextNodes(target, n))
			return Vector{b2f(exact), b2f(contains)}
		},
	}
}

func newLabelTextSimilarity() *extractor {
	return &extractor{
		strategy: LabelTextSimilarity,
		names:    []string{"best_dice", "best_jaccard"},
		compute: func(el hierarchy.ElementRef, target *hierarchy.ViewHierarchy) Vector {
			dice, jaccard := bestSimilarity(el.Label(), target.TextNodes())
			return Vector{dice, jaccard}
		},
	}
}
