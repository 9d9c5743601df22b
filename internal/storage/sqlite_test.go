package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"linkpred/internal/candidate"
	"linkpred/internal/features"
	"linkpred/internal/hierarchy"
	"linkpred/internal/predict"
	"linkpred/internal/scorer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testCandidate(t *testing.T) *candidate.LinkCandidate {
	t.Helper()
	src, err := hierarchy.Parse(strings.NewReader(`{"request_id": "100", "root": {"pointer": "S", "children": [{"pointer": "btn1", "text": "Settings"}]}}`))
	require.NoError(t, err)
	tgt, err := hierarchy.Parse(strings.NewReader(`{"request_id": "200", "root": {"pointer": "T"}}`))
	require.NoError(t, err)
	c, err := candidate.New(src, "btn1", tgt,
		candidate.WithApplicationName("com.example.app"),
		candidate.WithTraceID("trace_3"),
	)
	require.NoError(t, err)
	return c
}

func TestSQLiteStore_RecordAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fixed := time.Date(2024, 3, 1, 12, 0, 0, 500, time.UTC)
	store.now = func() time.Time { return fixed }

	c := testCandidate(t)
	first := predict.Result{Strategy: features.TextSimilarity, Label: scorer.Link, Score: 1.25, Features: features.Vector{0.7071, 0.5}}
	second := predict.Result{Strategy: features.LayoutOnly, Label: scorer.NonLink, Score: -0.125, Features: features.Vector{0.89, 0.05, 2}}
	require.NoError(t, store.Record(ctx, c, first))
	require.NoError(t, store.Record(ctx, c, second))

	records, err := store.ListPredictions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	t.Run("Most recent first", func(t *testing.T) {
		assert.Equal(t, features.LayoutOnly, records[0].Strategy)
		assert.Equal(t, features.TextSimilarity, records[1].Strategy)
	})

	t.Run("Fields round trip", func(t *testing.T) {
		r := records[1]
		assert.NotEmpty(t, r.ID)
		assert.True(t, fixed.Equal(r.CreatedAt))
		assert.Equal(t, "100", r.SourceScreen)
		assert.Equal(t, "btn1", r.ElementID)
		assert.Equal(t, "200", r.TargetScreen)
		assert.Equal(t, candidate.Metadata{ApplicationName: "com.example.app", TraceID: "trace_3"}, r.Metadata)
		assert.Equal(t, scorer.Link, r.Label)
		assert.Equal(t, 1.25, r.Score)
		assert.Equal(t, first.Features, r.Features)
	})

	t.Run("Limit", func(t *testing.T) {
		limited, err := store.ListPredictions(ctx, 1)
		require.NoError(t, err)
		require.Len(t, limited, 1)
		assert.Equal(t, records[0].ID, limited[0].ID)
	})

	t.Run("Get by id", func(t *testing.T) {
		got, err := store.GetPrediction(ctx, records[0].ID)
		require.NoError(t, err)
		assert.Equal(t, records[0], *got)

		_, err = store.GetPrediction(ctx, "nope")
		assert.Error(t, err)
	})
}

func TestSQLiteStore_AsRecorder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var predictors []*predict.Predictor
	for _, s := range features.Strategies() {
		ext, err := features.New(s, features.Options{})
		require.NoError(t, err)
		sc := scorer.Func(func(v features.Vector) (scorer.Label, float64, error) {
			return scorer.NonLink, float64(len(v)), nil
		})
		predictors = append(predictors, predict.New(ext, sc, predict.WithRecorder(store)))
	}

	results, err := predict.PredictAll(ctx, testCandidate(t), predictors)
	require.NoError(t, err)

	records, err := store.ListPredictions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, len(results))

	byStrategy := make(map[features.Strategy]PredictionRecord)
	for _, r := range records {
		byStrategy[r.Strategy] = r
	}
	for _, res := range results {
		rec, ok := byStrategy[res.Strategy]
		require.True(t, ok, res.Strategy.String())
		assert.Equal(t, res.Features, rec.Features)
		assert.Equal(t, res.Score, rec.Score)
	}
}

func TestVectorEncoding(t *testing.T) {
	v := features.Vector{0, -1.5, 3.25, 1e-9}
	blob, err := encodeVector(v)
	require.NoError(t, err)
	assert.Len(t, blob, 32)

	back, err := decodeVector(blob)
	require.NoError(t, err)
	assert.Equal(t, v, back)

	_, err = decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}
