package hierarchy

import "strings"

// Bounds is an on-screen rectangle in integer pixel coordinates.
// Real dumps do not guarantee that a child lies inside its parent.
type Bounds struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

func (b Bounds) Width() int {
	if b.Right < b.Left {
		return 0
	}
	return b.Right - b.Left
}

func (b Bounds) Height() int {
	if b.Bottom < b.Top {
		return 0
	}
	return b.Bottom - b.Top
}

func (b Bounds) Area() int {
	return b.Width() * b.Height()
}

// UINode is one element of a screen's view hierarchy.
// Nodes are built once by Parse and must not be modified afterwards.
type UINode struct {
	ID            string    `json:"id"`    // RICO "pointer"
	Class         string    `json:"class"` // Android widget class
	Text          string    `json:"text"`  // absent text is stored as ""
	ContentDesc   []string  `json:"content_desc,omitempty"`
	ResourceID    string    `json:"resource_id,omitempty"`
	Bounds        Bounds    `json:"bounds"`
	VisibleToUser bool      `json:"visible_to_user"`
	Clickable     bool      `json:"clickable"`
	Children      []*UINode `json:"children,omitempty"`

	parent *UINode
	depth  int
	index  int // pre-order position within the hierarchy
}

// TextOrEmpty returns the node's text; absent text is the empty string.
func (n *UINode) TextOrEmpty() string {
	if n == nil {
		return ""
	}
	return n.Text
}

// IsTextBearing reports whether the node carries non-whitespace text.
func (n *UINode) IsTextBearing() bool {
	return strings.TrimSpace(n.TextOrEmpty()) != ""
}

// Label is what a user reads on the element: its text, or its
// content description when it has no text.
func (n *UINode) Label() string {
	if n == nil {
		return ""
	}
	if n.IsTextBearing() {
		return strings.TrimSpace(n.Text)
	}
	var parts []string
	for _, d := range n.ContentDesc {
		if d = strings.TrimSpace(d); d != "" {
			parts = append(parts, d)
		}
	}
	return strings.Join(parts, " ")
}

func (n *UINode) Parent() *UINode { return n.parent }

// Depth is the number of edges between the node and the root.
func (n *UINode) Depth() int { return n.depth }

// Index is the node's pre-order position; the root is 0.
func (n *UINode) Index() int { return n.index }
