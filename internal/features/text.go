package features

import (
	"strings"

	"linkpred/internal/hierarchy"
	"linkpred/internal/textsim"
)

// newTextSimilarity compares all text of the source element's subtree with
// all text of the target screen.
func newTextSimilarity() *extractor {
	return &extractor{
		strategy: TextSimilarity,
		names:    []string{"subtree_cosine", "subtree_jaccard"},
		compute: func(el hierarchy.ElementRef, target *hierarchy.ViewHierarchy) Vector {
			src := elementText(el.UINode)
			screen := hierarchy.ScreenText(target)
			return Vector{textsim.Cosine(src, screen), textsim.Jaccard(src, screen)}
		},
	}
}

// newTextSimilarityNeighbors describes the element by its siblings and
// ancestors rather than by itself.
func newTextSimilarityNeighbors() *extractor {
	return &extractor{
		strategy: TextSimilarityNeighbors,
		names:    []string{"element_cosine", "neighbor_cosine", "neighbor_jaccard", "neighbor_best_dice"},
		compute: func(el hierarchy.ElementRef, target *hierarchy.ViewHierarchy) Vector {
			screen := hierarchy.ScreenText(target)
			labels := neighborLabels(el)
			neighbors := strings.Join(labels, " ")

			pool := target.TextNodes()
			var best float64
			for _, l := range labels {
				d, _ := bestSimilarity(l, pool)
				best = max(best, d)
			}
			return Vector{
				textsim.Cosine(elementText(el.UINode), screen),
				textsim.Cosine(neighbors, screen),
				textsim.Jaccard(neighbors, screen),
				best,
			}
		},
	}
}

// newTextOnly uses text on both screens and nothing else: no bounds, depth
// or flags.
func newTextOnly() *extractor {
	return &extractor{
		strategy: TextOnly,
		names: []string{
			"label_tokens", "subtree_tokens", "target_tokens", "target_text_nodes",
			"contains_match", "best_dice", "subtree_cosine", "neighbor_cosine",
		},
		compute: func(el hierarchy.ElementRef, target *hierarchy.ViewHierarchy) Vector {
			label := el.Label()
			src := elementText(el.UINode)
			screen := hierarchy.ScreenText(target)
			pool := target.TextNodes()

			_, contains := labelMatch(label, pool)
			dice, _ := bestSimilarity(label, pool)
			return Vector{
				float64(textsim.TokenCount(label)),
				float64(textsim.TokenCount(src)),
				float64(textsim.TokenCount(screen)),
				float64(len(pool)),
				b2f(contains),
				dice,
				textsim.Cosine(src, screen),
				textsim.Cosine(strings.Join(neighborLabels(el), " "), screen),
			}
		},
	}
}
