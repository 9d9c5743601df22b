package features

import (
	"cmp"
	"slices"
	"strings"

	"linkpred/internal/hierarchy"
	"linkpred/internal/textsim"
)

// largestTextNodes returns the n text-bearing nodes of vh with the largest
// bounds area. Equal areas keep document order.
func largestTextNodes(vh *hierarchy.ViewHierarchy, n int) []*hierarchy.UINode {
	pool := vh.TextNodes()
	slices.SortStableFunc(pool, func(a, b *hierarchy.UINode) int {
		if c := cmp.Compare(b.Bounds.Area(), a.Bounds.Area()); c != 0 {
			return c
		}
		return cmp.Compare(a.Index(), b.Index())
	})
	if len(pool) > n {
		pool = pool[:n]
	}
	return pool
}

// labelMatch reports whether any pool node's text equals the label and
// whether any contains it. An empty label matches nothing.
func labelMatch(label string, pool []*hierarchy.UINode) (exact, contains bool) {
	for _, n := range pool {
		if textsim.Equal(n.Text, label) {
			return true, true
		}
		if !contains && textsim.Contains(n.Text, label) {
			contains = true
		}
	}
	return false, contains
}

// bestSimilarity is the highest Dice and Jaccard score of label against any
// pool node. The two maxima may come from different nodes.
func bestSimilarity(label string, pool []*hierarchy.UINode) (dice, jaccard float64) {
	for _, n := range pool {
		dice = max(dice, textsim.Dice(label, n.Text))
		jaccard = max(jaccard, textsim.Jaccard(label, n.Text))
	}
	return dice, jaccard
}

// elementText joins the labels of the node and of its descendants in
// pre-order.
func elementText(n *hierarchy.UINode) string {
	var parts []string
	var walk func(*hierarchy.UINode)
	walk = func(x *hierarchy.UINode) {
		if l := x.Label(); l != "" {
			parts = append(parts, l)
		}
		for _, c := range x.Children {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

// neighborLabels returns the element's neighborhood: the text of each
// sibling subtree, then the label of each ancestor from the root down.
// Empty entries are dropped.
func neighborLabels(el hierarchy.ElementRef) []string {
	var out []string
	for _, s := range el.Siblings() {
		if t := elementText(s); t != "" {
			out = append(out, t)
		}
	}
	for _, a := range el.Ancestors() {
		if l := a.Label(); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ratio returns num/den, or 0 when den is 0.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
