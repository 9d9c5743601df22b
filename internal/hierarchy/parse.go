package hierarchy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

var (
	ErrMissingRoot     = errors.New("missing root node")
	ErrMalformedBounds = errors.New("malformed bounds")
	ErrDuplicateID     = errors.New("duplicate node id")
	ErrMissingID       = errors.New("node without id")
)

// ParseError reports a hierarchy document that could not be turned into a
// ViewHierarchy. It is fatal to the prediction that needed the document.
type ParseError struct {
	Source string // file path, empty when parsed from a reader
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("parse view hierarchy: %v", e.Err)
	}
	return fmt.Sprintf("parse view hierarchy %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// rawDocument mirrors a RICO view hierarchy dump. Bare documents that carry
// the tree under a top-level "root" key are accepted too.
type rawDocument struct {
	RequestID    json.RawMessage `json:"request_id"`
	ActivityName string          `json:"activity_name"`
	Activity     *struct {
		Root *rawNode `json:"root"`
	} `json:"activity"`
	Root *rawNode `json:"root"`
}

type rawNode struct {
	Pointer       json.RawMessage `json:"pointer"`
	Class         string          `json:"class"`
	Text          *string         `json:"text"`
	ContentDesc   json.RawMessage `json:"content-desc"`
	ResourceID    *string         `json:"resource-id"`
	Bounds        json.RawMessage `json:"bounds"`
	VisibleToUser bool            `json:"visible-to-user"`
	Clickable     bool            `json:"clickable"`
	Children      []*rawNode      `json:"children"`
}

// ParseFile reads and parses a single hierarchy file.
func ParseFile(path string) (*ViewHierarchy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read view hierarchy %s: %w", path, err)
	}
	vh, err := parse(data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = path
		}
		return nil, err
	}
	return vh, nil
}

// Parse decodes a hierarchy document from r.
func Parse(r io.Reader) (*ViewHierarchy, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read view hierarchy: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*ViewHierarchy, error) {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Err: err}
	}

	rawRoot := doc.Root
	if doc.Activity != nil && doc.Activity.Root != nil {
		rawRoot = doc.Activity.Root
	}
	if rawRoot == nil {
		return nil, &ParseError{Err: ErrMissingRoot}
	}

	requestID, err := scalarString(doc.RequestID)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("request_id: %w", err)}
	}

	vh := &ViewHierarchy{
		RequestID:    requestID,
		ActivityName: doc.ActivityName,
		byID:         make(map[string]*UINode),
	}

	root, err := vh.build(rawRoot, nil)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	vh.root = root
	return vh, nil
}

// build converts a raw subtree, assigning pre-order indices and registering
// every id. Null children in the dump are skipped.
func (vh *ViewHierarchy) build(raw *rawNode, parent *UINode) (*UINode, error) {
	id, err := scalarString(raw.Pointer)
	if err != nil {
		return nil, fmt.Errorf("pointer: %w", err)
	}
	if id == "" {
		return nil, fmt.Errorf("%w (index %d)", ErrMissingID, len(vh.nodes))
	}
	if _, dup := vh.byID[id]; dup {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}

	bounds, err := decodeBounds(raw.Bounds)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", id, err)
	}
	desc, err := decodeContentDesc(raw.ContentDesc)
	if err != nil {
		return nil, fmt.Errorf("node %q: content-desc: %w", id, err)
	}

	n := &UINode{
		ID:            id,
		Class:         raw.Class,
		ContentDesc:   desc,
		Bounds:        bounds,
		VisibleToUser: raw.VisibleToUser,
		Clickable:     raw.Clickable,
		parent:        parent,
		index:         len(vh.nodes),
	}
	if raw.Text != nil {
		n.Text = *raw.Text
	}
	if raw.ResourceID != nil {
		n.ResourceID = *raw.ResourceID
	}
	if parent != nil {
		n.depth = parent.depth + 1
	}

	vh.byID[id] = n
	vh.nodes = append(vh.nodes, n)

	for _, rc := range raw.Children {
		if rc == nil {
			continue
		}
		child, err := vh.build(rc, n)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

// decodeBounds accepts a [left, top, right, bottom] tuple of integral numbers.
// An absent or null tuple yields the zero rectangle.
func decodeBounds(raw json.RawMessage) (Bounds, error) {
	if isNull(raw) {
		return Bounds{}, nil
	}
	var vals []float64
	if err := json.Unmarshal(raw, &vals); err != nil {
		return Bounds{}, fmt.Errorf("%w: %v", ErrMalformedBounds, err)
	}
	if len(vals) != 4 {
		return Bounds{}, fmt.Errorf("%w: want 4 coordinates, got %d", ErrMalformedBounds, len(vals))
	}
	for _, v := range vals {
		if v != math.Trunc(v) {
			return Bounds{}, fmt.Errorf("%w: non-integral coordinate %v", ErrMalformedBounds, v)
		}
	}
	return Bounds{
		Left:   int(vals[0]),
		Top:    int(vals[1]),
		Right:  int(vals[2]),
		Bottom: int(vals[3]),
	}, nil
}

// decodeContentDesc accepts a string, or a list of strings and nulls.
func decodeContentDesc(raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return nil, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return nil, nil
		}
		return []string{single}, nil
	}
	var list []*string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	var out []string
	for _, s := range list {
		if s != nil && *s != "" {
			out = append(out, *s)
		}
	}
	return out, nil
}

// scalarString reads a JSON string or number as a string.
func scalarString(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", strings.TrimSpace(string(raw)))
	}
	return num.String(), nil
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}
