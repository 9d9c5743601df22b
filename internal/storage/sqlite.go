package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"linkpred/internal/candidate"
	"linkpred/internal/features"
	"linkpred/internal/predict"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ PredictionStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; predictions for all strategies may arrive at once
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS predictions (
			id TEXT PRIMARY KEY,
			created_at TEXT,
			strategy TEXT,
			source_screen TEXT,
			element_id TEXT,
			target_screen TEXT,
			metadata JSON,
			label INTEGER,
			score REAL,
			features BLOB
		);`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_source ON predictions(source_screen, element_id);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// Record stores one prediction under a fresh id.
func (s *SQLiteStore) Record(ctx context.Context, c *candidate.LinkCandidate, r predict.Result) error {
	metadata, err := json.Marshal(c.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	vec, err := encodeVector(r.Features)
	if err != nil {
		return fmt.Errorf("failed to encode features: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO predictions (id, created_at, strategy, source_screen, element_id, target_screen, metadata, label, score, features)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), s.now().UTC().Format(time.RFC3339Nano), r.Strategy.String(),
		c.Source.ID, c.Source.ElementID, c.Target.ID, metadata, int(r.Label), r.Score, vec)
	return err
}

const selectPrediction = `SELECT id, created_at, strategy, source_screen, element_id, target_screen, metadata, label, score, features FROM predictions`

func (s *SQLiteStore) GetPrediction(ctx context.Context, id string) (*PredictionRecord, error) {
	row := s.db.QueryRowContext(ctx, selectPrediction+" WHERE id = ?", id)
	rec, err := scanPrediction(row)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLiteStore) ListPredictions(ctx context.Context, limit int) ([]PredictionRecord, error) {
	query := selectPrediction + " ORDER BY rowid DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var out []PredictionRecord
	for rows.Next() {
		rec, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPrediction(sc scanner) (*PredictionRecord, error) {
	var (
		rec       PredictionRecord
		createdAt string
		strategy  string
		metadata  []byte
		vec       []byte
	)
	if err := sc.Scan(&rec.ID, &createdAt, &strategy, &rec.SourceScreen, &rec.ElementID, &rec.TargetScreen,
		&metadata, &rec.Label, &rec.Score, &vec); err != nil {
		return nil, err
	}

	var err error
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	if rec.Strategy, err = features.ParseStrategy(strategy); err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &rec.Metadata); err != nil {
			return nil, fmt.Errorf("bad metadata: %w", err)
		}
	}
	if rec.Features, err = decodeVector(vec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Feature vectors are stored as little-endian float64 blobs.
func encodeVector(v features.Vector) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, []float64(v)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeVector(blob []byte) (features.Vector, error) {
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("feature blob of %d bytes is not a float64 vector", len(blob))
	}
	v := make([]float64, len(blob)/8)
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, v); err != nil {
		return nil, err
	}
	return features.Vector(v), nil
}
