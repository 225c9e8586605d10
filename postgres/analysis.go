package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meikuraledutech/pipeline/backend"
)

// RecordAnalysis inserts one verdict.
// If a.ID is empty, a UUID is auto-generated; a zero CreatedAt becomes now.
func (s *PGStore) RecordAnalysis(ctx context.Context, a *backend.Analysis) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO pipeline_analyses (id, num_nodes, num_edges, is_dag, created_at) VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.NodeCount, a.EdgeCount, a.IsDAG, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert analysis: %w", err)
	}
	return nil
}

// GetAnalysis fetches one verdict by id.
// Returns nil, nil if not found.
func (s *PGStore) GetAnalysis(ctx context.Context, id string) (*backend.Analysis, error) {
	var a backend.Analysis
	err := s.db.QueryRow(ctx,
		`SELECT id, num_nodes, num_edges, is_dag, created_at FROM pipeline_analyses WHERE id = $1`, id,
	).Scan(&a.ID, &a.NodeCount, &a.EdgeCount, &a.IsDAG, &a.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: get analysis: %w", err)
	}
	return &a, nil
}

// ListAnalyses returns the newest verdicts first, at most limit of them.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListAnalyses(ctx context.Context, limit int) ([]backend.Analysis, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, num_nodes, num_edges, is_dag, created_at FROM pipeline_analyses ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list analyses: %w", err)
	}

	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (backend.Analysis, error) {
		var a backend.Analysis
		err := row.Scan(&a.ID, &a.NodeCount, &a.EdgeCount, &a.IsDAG, &a.CreatedAt)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scan analyses: %w", err)
	}
	if list == nil {
		list = []backend.Analysis{}
	}
	return list, nil
}

// isNoRows checks if the error is a "no rows" error from pgx.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
