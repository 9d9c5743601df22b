// Package scorer is the boundary to the trained link classifier. The core
// treats a Scorer as a black box: a feature vector in, a label and a
// real-valued linkability score out.
package scorer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"linkpred/internal/features"

	"gopkg.in/yaml.v3"
)

type Label int

const (
	NonLink Label = 0
	Link    Label = 1
)

func (l Label) String() string {
	if l == Link {
		return "LINK"
	}
	return "NON-LINK"
}

// Scorer maps a feature vector to a label and a score. Higher scores mean
// more linkable; the range is not fixed.
type Scorer interface {
	Score(v features.Vector) (Label, float64, error)
}

// Func adapts a plain function to Scorer.
type Func func(v features.Vector) (Label, float64, error)

func (f Func) Score(v features.Vector) (Label, float64, error) { return f(v) }

var (
	ErrDimensionMismatch = errors.New("feature vector does not match model dimension")
	ErrStrategyMismatch  = errors.New("model was trained for a different strategy")
)

// LinearModel is a linear decision function w·x + b. A positive score is a
// link, matching the convention of margin classifiers.
type LinearModel struct {
	Strategy  features.Strategy `yaml:"strategy"`
	Features  []string          `yaml:"features,omitempty"` // optional, checked against the extractor
	Weights   []float64         `yaml:"weights"`
	Intercept float64           `yaml:"intercept"`
}

func (m *LinearModel) Score(v features.Vector) (Label, float64, error) {
	if len(v) != len(m.Weights) {
		return NonLink, 0, fmt.Errorf("%w: expected %d features, got %d", ErrDimensionMismatch, len(m.Weights), len(v))
	}
	score := m.Intercept
	for i, w := range m.Weights {
		score += w * v[i]
	}
	if score > 0 {
		return Link, score, nil
	}
	return NonLink, score, nil
}

// CheckExtractor verifies that the model consumes the vectors ext produces.
func (m *LinearModel) CheckExtractor(ext features.Extractor) error {
	if m.Strategy != ext.Strategy() {
		return fmt.Errorf("%w: model %s, extractor %s", ErrStrategyMismatch, m.Strategy, ext.Strategy())
	}
	names := ext.Names()
	if len(m.Weights) != len(names) {
		return fmt.Errorf("%w: model has %d weights, %s produces %d features", ErrDimensionMismatch, len(m.Weights), ext.Strategy(), len(names))
	}
	if len(m.Features) > 0 && !slices.Equal(m.Features, names) {
		return fmt.Errorf("%w: feature names [%s], want [%s]", ErrDimensionMismatch, strings.Join(m.Features, ", "), strings.Join(names, ", "))
	}
	return nil
}

// Path returns where the model for s lives inside dir.
func Path(dir string, s features.Strategy) string {
	return filepath.Join(dir, s.String()+"Classifier.yaml")
}

// Load reads a LinearModel from a YAML file.
func Load(path string) (*LinearModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var m LinearModel
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode model %s: %w", path, err)
	}
	if len(m.Weights) == 0 {
		return nil, fmt.Errorf("model %s has no weights", path)
	}
	return &m, nil
}

// LoadForStrategy loads the model for s from dir and rejects a file that
// declares another strategy.
func LoadForStrategy(dir string, s features.Strategy) (*LinearModel, error) {
	path := Path(dir, s)
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	if m.Strategy != s {
		return nil, fmt.Errorf("%s: %w: declares %s, want %s", path, ErrStrategyMismatch, m.Strategy, s)
	}
	return m, nil
}

// Save writes m as YAML.
func (m *LinearModel) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}
