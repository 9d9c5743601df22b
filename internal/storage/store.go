package storage

import (
	"context"
	"time"

	"linkpred/internal/candidate"
	"linkpred/internal/features"
	"linkpred/internal/predict"
	"linkpred/internal/scorer"
)

// PredictionRecord is one logged prediction with the candidate metadata it
// was made for.
type PredictionRecord struct {
	ID           string             `json:"id"`
	CreatedAt    time.Time          `json:"created_at"`
	Strategy     features.Strategy  `json:"strategy"`
	SourceScreen string             `json:"source_screen"`
	ElementID    string             `json:"element_id"`
	TargetScreen string             `json:"target_screen"`
	Metadata     candidate.Metadata `json:"metadata"`
	Label        scorer.Label       `json:"label"`
	Score        float64            `json:"score"`
	Features     features.Vector    `json:"features"`
}

// PredictionStore persists predictions for later labelling and analysis.
type PredictionStore interface {
	predict.Recorder

	// GetPrediction retrieves a record by its ID.
	GetPrediction(ctx context.Context, id string) (*PredictionRecord, error)

	// ListPredictions returns the most recent records first. A limit <= 0
	// returns all of them.
	ListPredictions(ctx context.Context, limit int) ([]PredictionRecord, error)

	Close() error
}
