package predict

import (
	"context"
	"fmt"
	"log/slog"

	"linkpred/internal/candidate"
	"linkpred/internal/features"
	"linkpred/internal/scorer"

	"golang.org/x/sync/errgroup"
)

// Result is one scored candidate.
type Result struct {
	Strategy features.Strategy `json:"strategy"`
	Label    scorer.Label      `json:"label"`
	Score    float64           `json:"score"`
	Features features.Vector   `json:"features"`
}

// Recorder persists scored candidates.
type Recorder interface {
	Record(ctx context.Context, c *candidate.LinkCandidate, r Result) error
}

// Predictor pairs an extractor with the scorer trained on its vectors.
type Predictor struct {
	extractor features.Extractor
	scorer    scorer.Scorer
	recorder  Recorder
	logger    *slog.Logger
}

type Option func(*Predictor)

func WithRecorder(r Recorder) Option {
	return func(p *Predictor) { p.recorder = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Predictor) { p.logger = l }
}

func New(ext features.Extractor, sc scorer.Scorer, opts ...Option) *Predictor {
	p := &Predictor{extractor: ext, scorer: sc}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Load builds the predictor for s using the model stored in modelsDir.
func Load(modelsDir string, s features.Strategy, fopts features.Options, opts ...Option) (*Predictor, error) {
	ext, err := features.New(s, fopts)
	if err != nil {
		return nil, err
	}
	model, err := scorer.LoadForStrategy(modelsDir, s)
	if err != nil {
		return nil, err
	}
	if err := model.CheckExtractor(ext); err != nil {
		return nil, err
	}
	return New(ext, model, opts...), nil
}

func (p *Predictor) Strategy() features.Strategy { return p.extractor.Strategy() }

// Predict extracts and scores c. Errors from extraction and scoring are
// returned unchanged in their chain; nothing is defaulted.
func (p *Predictor) Predict(ctx context.Context, c *candidate.LinkCandidate) (Result, error) {
	strategy := p.extractor.Strategy()
	if c != nil && c.SharesHierarchy() {
		p.logger.Warn("source and target are the same hierarchy instance",
			"strategy", strategy.String(), "screen", c.Source.ID)
	}

	v, err := p.extractor.Extract(c)
	if err != nil {
		return Result{}, err
	}
	label, score, err := p.scorer.Score(v)
	if err != nil {
		return Result{}, fmt.Errorf("score %s features: %w", strategy, err)
	}

	res := Result{Strategy: strategy, Label: label, Score: score, Features: v}
	p.logger.Debug("predicted",
		"strategy", strategy.String(),
		"source", c.Source.ID,
		"element", c.Source.ElementID,
		"target", c.Target.ID,
		"label", label.String(),
		"score", score)

	if p.recorder != nil {
		if err := p.recorder.Record(ctx, c, res); err != nil {
			return Result{}, fmt.Errorf("failed to record prediction: %w", err)
		}
	}
	return res, nil
}

// PredictAll runs every predictor on c concurrently. Results keep the order
// of predictors; the first error cancels the rest.
func PredictAll(ctx context.Context, c *candidate.LinkCandidate, predictors []*Predictor) ([]Result, error) {
	results := make([]Result, len(predictors))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range predictors {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := p.Predict(ctx, c)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
