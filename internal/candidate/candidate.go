package candidate

import (
	"linkpred/internal/hierarchy"
)

// Screen identifies one screen of a candidate.
type Screen struct {
	ID string `json:"id"` // request id of the screen's hierarchy
}

// Source identifies the source screen and the element on it.
type Source struct {
	Screen
	ElementID string `json:"element_id"`
}

// Metadata is carried through for logging and labelling. Feature extraction
// never reads it.
type Metadata struct {
	ApplicationName string `json:"application_name,omitempty"`
	TraceID         string `json:"trace_id,omitempty"`
	DataType        string `json:"data_type,omitempty"`
}

// LinkCandidate is one prediction request: does the source element link to
// the target screen?
type LinkCandidate struct {
	Source   Source   `json:"source"`
	Target   Screen   `json:"target"`
	Metadata Metadata `json:"metadata"`

	SourceHierarchy *hierarchy.ViewHierarchy `json:"-"`
	TargetHierarchy *hierarchy.ViewHierarchy `json:"-"`
}

type Option func(*LinkCandidate)

func WithApplicationName(name string) Option {
	return func(c *LinkCandidate) { c.Metadata.ApplicationName = name }
}

func WithTraceID(id string) Option {
	return func(c *LinkCandidate) { c.Metadata.TraceID = id }
}

func WithDataType(dataType string) Option {
	return func(c *LinkCandidate) { c.Metadata.DataType = dataType }
}

// New builds a candidate from two independently parsed hierarchies. The
// element id must resolve inside source; otherwise the returned error is a
// *hierarchy.ElementNotFoundError.
func New(source *hierarchy.ViewHierarchy, elementID string, target *hierarchy.ViewHierarchy, opts ...Option) (*LinkCandidate, error) {
	if _, err := source.Resolve(elementID); err != nil {
		return nil, err
	}
	c := &LinkCandidate{
		Source: Source{
			Screen:    Screen{ID: source.RequestID},
			ElementID: elementID,
		},
		Target:          Screen{ID: target.RequestID},
		SourceHierarchy: source,
		TargetHierarchy: target,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Element resolves the source element.
func (c *LinkCandidate) Element() (hierarchy.ElementRef, error) {
	return c.SourceHierarchy.Resolve(c.Source.ElementID)
}

// SharesHierarchy reports whether one hierarchy instance was supplied for
// both roles. Such a candidate compares a screen with itself and is almost
// always a call-site mistake.
func (c *LinkCandidate) SharesHierarchy() bool {
	return c.SourceHierarchy != nil && c.SourceHierarchy == c.TargetHierarchy
}
