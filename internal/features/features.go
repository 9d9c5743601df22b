package features

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"linkpred/internal/candidate"
	"linkpred/internal/hierarchy"
)

// Vector is an ordered feature vector. It only has meaning together with
// the strategy that produced it.
type Vector []float64

// Strategy names one of the feature extraction policies. Each strategy is
// paired with its own trained scorer.
type Strategy int

const (
	PageContainsLabel Strategy = iota
	LargestTextElementsContainLabel
	LabelTextSimilarity
	TextSimilarity
	TextSimilarityNeighbors
	TextOnly
	LayoutOnly

	numStrategies
)

var strategyNames = [numStrategies]string{
	PageContainsLabel:               "PageContainsLabel",
	LargestTextElementsContainLabel: "LargestTextElementsContainLabel",
	LabelTextSimilarity:             "LabelTextSimilarity",
	TextSimilarity:                  "TextSimilarity",
	TextSimilarityNeighbors:         "TextSimilarityNeighbors",
	TextOnly:                        "TextOnly",
	LayoutOnly:                      "LayoutOnly",
}

func (s Strategy) String() string {
	if s < 0 || s >= numStrategies {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// Strategies returns every strategy in declaration order.
func Strategies() []Strategy {
	out := make([]Strategy, 0, numStrategies)
	for s := Strategy(0); s < numStrategies; s++ {
		out = append(out, s)
	}
	return out
}

// ParseStrategy maps a name to a Strategy, ignoring case.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.TrimSpace(name)
	for s, n := range strategyNames {
		if strings.EqualFold(n, name) {
			return Strategy(s), nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q (want one of %s)", name, strings.Join(strategyNames[:], ", "))
}

func (s Strategy) MarshalText() ([]byte, error) {
	if s < 0 || s >= numStrategies {
		return nil, fmt.Errorf("unknown strategy %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Extractor turns a LinkCandidate into a fixed-length Vector. Extract is a
// pure function of the candidate and never modifies either hierarchy.
type Extractor interface {
	Strategy() Strategy
	// Names labels each position of the vectors Extract returns.
	Names() []string
	Extract(c *candidate.LinkCandidate) (Vector, error)
}

const DefaultLargestN = 5

type Options struct {
	// LargestN bounds the target text pool of LargestTextElementsContainLabel.
	// Values <= 0 select DefaultLargestN.
	LargestN int `yaml:"largest_n"`
}

// New returns the extractor for s.
func New(s Strategy, opts Options) (Extractor, error) {
	switch s {
	case PageContainsLabel:
		return newPageContainsLabel(), nil
	case LargestTextElementsContainLabel:
		n := opts.LargestN
		if n <= 0 {
			n = DefaultLargestN
		}
		return newLargestTextElementsContainLabel(n), nil
	case LabelTextSimilarity:
		return newLabelTextSimilarity(), nil
	case TextSimilarity:
		return newTextSimilarity(), nil
	case TextSimilarityNeighbors:
		return newTextSimilarityNeighbors(), nil
	case TextOnly:
		return newTextOnly(), nil
	case LayoutOnly:
		return newLayoutOnly(), nil
	}
	return nil, fmt.Errorf("unknown strategy %d", int(s))
}

var (
	ErrIncompleteCandidate = errors.New("candidate is missing a hierarchy")
	ErrVectorLength        = errors.New("feature vector length does not match feature names")
)

// FeatureExtractionError reports a strategy that could not produce a vector.
// An unresolved source element surfaces as the wrapped
// *hierarchy.ElementNotFoundError.
type FeatureExtractionError struct {
	Strategy Strategy
	Err      error
}

func (e *FeatureExtractionError) Error() string {
	return fmt.Sprintf("extract %s features: %v", e.Strategy, e.Err)
}

func (e *FeatureExtractionError) Unwrap() error { return e.Err }

// extractor is the shared Extractor implementation; each strategy supplies
// its names and compute function.
type extractor struct {
	strategy Strategy
	names    []string
	compute  func(el hierarchy.ElementRef, target *hierarchy.ViewHierarchy) Vector
}

func (e *extractor) Strategy() Strategy { return e.strategy }

func (e *extractor) Names() []string { return slices.Clone(e.names) }

func (e *extractor) Extract(c *candidate.LinkCandidate) (Vector, error) {
	if c == nil || c.SourceHierarchy == nil || c.TargetHierarchy == nil {
		return nil, &FeatureExtractionError{Strategy: e.strategy, Err: ErrIncompleteCandidate}
	}
	el, err := c.Element()
	if err != nil {
		return nil, &FeatureExtractionError{Strategy: e.strategy, Err: err}
	}

	v := e.compute(el, c.TargetHierarchy)
	if len(v) != len(e.names) {
		return nil, &FeatureExtractionError{
			Strategy: e.strategy,
			Err:      fmt.Errorf("%w: %d values, %d names", ErrVectorLength, len(v), len(e.names)),
		}
	}
	return v, nil
}
