package hierarchy

import (
	"fmt"
	"iter"
	"strings"
)

// ViewHierarchy is a parsed screen. It is read-only once Parse returns.
type ViewHierarchy struct {
	RequestID    string
	ActivityName string

	root  *UINode
	nodes []*UINode // pre-order
	byID  map[string]*UINode
}

func (vh *ViewHierarchy) Root() *UINode { return vh.root }

// Len returns the number of nodes in the hierarchy.
func (vh *ViewHierarchy) Len() int { return len(vh.nodes) }

// FindByID returns the node whose id matches, or false.
func (vh *ViewHierarchy) FindByID(id string) (*UINode, bool) {
	n, ok := vh.byID[id]
	return n, ok
}

// AllNodes yields every node in pre-order. The sequence can be ranged over
// any number of times.
func (vh *ViewHierarchy) AllNodes() iter.Seq[*UINode] {
	return func(yield func(*UINode) bool) {
		for _, n := range vh.nodes {
			if !yield(n) {
				return
			}
		}
	}
}

// TextNodes returns the text-bearing nodes in pre-order.
func (vh *ViewHierarchy) TextNodes() []*UINode {
	var out []*UINode
	for n := range vh.AllNodes() {
		if n.IsTextBearing() {
			out = append(out, n)
		}
	}
	return out
}

// Resolve returns an ElementRef for id. An unknown id is an
// *ElementNotFoundError, never a default node.
func (vh *ViewHierarchy) Resolve(id string) (ElementRef, error) {
	n, ok := vh.byID[id]
	if !ok {
		return ElementRef{}, &ElementNotFoundError{ID: id, RequestID: vh.RequestID}
	}
	return ElementRef{UINode: n, hierarchy: vh}, nil
}

// ElementNotFoundError reports an element id that does not resolve inside
// a hierarchy.
type ElementNotFoundError struct {
	ID        string
	RequestID string
}

func (e *ElementNotFoundError) Error() string {
	if e.RequestID == "" {
		return fmt.Sprintf("element %q not found", e.ID)
	}
	return fmt.Sprintf("element %q not found in screen %s", e.ID, e.RequestID)
}

// ElementRef is a resolved pointer to one node of a ViewHierarchy.
type ElementRef struct {
	*UINode
	hierarchy *ViewHierarchy
}

func (e ElementRef) Hierarchy() *ViewHierarchy { return e.hierarchy }

// Ancestors returns the node's ancestors ordered from the root down to the
// parent.
func (e ElementRef) Ancestors() []*UINode {
	var out []*UINode
	for p := e.parent; p != nil; p = p.parent {
		out = append(out, p)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Descendants yields the node's descendants in pre-order, excluding the
// node itself.
func (e ElementRef) Descendants() iter.Seq[*UINode] {
	return func(yield func(*UINode) bool) {
		walk(e.Children, yield)
	}
}

func walk(nodes []*UINode, yield func(*UINode) bool) bool {
	for _, n := range nodes {
		if !yield(n) || !walk(n.Children, yield) {
			return false
		}
	}
	return true
}

// Siblings returns the parent's other children in document order.
func (e ElementRef) Siblings() []*UINode {
	if e.parent == nil {
		return nil
	}
	out := make([]*UINode, 0, len(e.parent.Children))
	for _, c := range e.parent.Children {
		if c != e.UINode {
			out = append(out, c)
		}
	}
	return out
}

// SubtreeText joins the text of the node and of its text-bearing
// descendants with single spaces.
func (e ElementRef) SubtreeText() string {
	return SubtreeText(e.UINode)
}

// SubtreeText joins the text of n and of its text-bearing descendants.
func SubtreeText(n *UINode) string {
	if n == nil {
		return ""
	}
	var parts []string
	collect := func(x *UINode) bool {
		if x.IsTextBearing() {
			parts = append(parts, strings.TrimSpace(x.Text))
		}
		return true
	}
	collect(n)
	walk(n.Children, collect)
	return strings.Join(parts, " ")
}

// ScreenText joins the text of every text-bearing node of vh in pre-order.
func ScreenText(vh *ViewHierarchy) string {
	return SubtreeText(vh.root)
}

// MaxDepth returns the depth of the deepest node.
func (vh *ViewHierarchy) MaxDepth() int {
	deepest := 0
	for n := range vh.AllNodes() {
		if n.depth > deepest {
			deepest = n.depth
		}
	}
	return deepest
}
