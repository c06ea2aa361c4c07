// Package pgstore provides a PostgreSQL implementation of triage.Store.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/analysis"
	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/postgres"
	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/triage"
)

var tracer = otel.Tracer("github.com/darkneiss/ai-pr-sentinel-sub001/internal/triage/pgstore")

//go:embed schema.sql
var schema string

// Store persists triage runs in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL, applies the schema, and returns a ready Store.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close shuts down the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

const runColumns = `id, delivery_id, repo, issue_number, action, status, skip_reason,
	analysis, grammar, applied_actions, response_source, grounded, suppressed,
	input_tokens, output_tokens, created_at, completed_at, duration_s, error`

// Get retrieves a triage run by ID.
//
//nolint:dupl // similar structure to GetByDelivery is intentional
func (s *Store) Get(ctx context.Context, id string) (*triage.Run, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + runColumns + ` FROM triage_runs WHERE id = $1`
	r, err := s.scanRun(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if r == nil {
		return nil, false, nil
	}
	return r, true, nil
}

// GetByDelivery retrieves the most recent triage run for a webhook delivery.
//
//nolint:dupl // similar structure to Get is intentional
func (s *Store) GetByDelivery(ctx context.Context, deliveryID string) (*triage.Run, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.GetByDelivery", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + runColumns + ` FROM triage_runs WHERE delivery_id = $1 ORDER BY created_at DESC LIMIT 1`
	r, err := s.scanRun(s.pool.QueryRow(ctx, query, deliveryID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if r == nil {
		return nil, false, nil
	}
	return r, true, nil
}

// Put inserts or updates a triage run (upsert on id).
func (s *Store) Put(ctx context.Context, r *triage.Run) error {
	ctx, span := tracer.Start(ctx, "pgstore.Put", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	var analysisJSON []byte
	if r.Analysis != nil {
		var err error
		analysisJSON, err = json.Marshal(r.Analysis)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("marshal analysis: %w", err)
		}
	}

	var completedAt *time.Time
	if !r.CompletedAt.IsZero() {
		completedAt = &r.CompletedAt
	}

	query := `INSERT INTO triage_runs (
		id, delivery_id, repo, issue_number, action, status, skip_reason,
		analysis, grammar, applied_actions, response_source, grounded, suppressed,
		input_tokens, output_tokens, created_at, completed_at, duration_s, error
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	ON CONFLICT (id) DO UPDATE SET
		status          = EXCLUDED.status,
		skip_reason     = EXCLUDED.skip_reason,
		analysis        = EXCLUDED.analysis,
		grammar         = EXCLUDED.grammar,
		applied_actions = EXCLUDED.applied_actions,
		response_source = EXCLUDED.response_source,
		grounded        = EXCLUDED.grounded,
		suppressed      = EXCLUDED.suppressed,
		input_tokens    = EXCLUDED.input_tokens,
		output_tokens   = EXCLUDED.output_tokens,
		completed_at    = EXCLUDED.completed_at,
		duration_s      = EXCLUDED.duration_s,
		error           = EXCLUDED.error`

	_, err := s.pool.Exec(ctx, query,
		r.ID, r.DeliveryID, r.Repo, r.IssueNumber, r.Action, string(r.Status), r.SkipReason,
		analysisJSON, r.Grammar, r.AppliedActions, r.ResponseSource, r.Grounded, r.Suppressed,
		r.InputTokens, r.OutputTokens, r.CreatedAt, completedAt, r.Duration, r.Error,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert run: %w", err)
	}
	return nil
}

// scanRun scans a single row into a triage.Run. Returns (nil, nil) when no
// row is found.
func (s *Store) scanRun(row pgx.Row) (*triage.Run, error) {
	var (
		r            triage.Run
		status       string
		analysisJSON []byte
		completedAt  *time.Time
	)

	err := row.Scan(
		&r.ID, &r.DeliveryID, &r.Repo, &r.IssueNumber, &r.Action, &status, &r.SkipReason,
		&analysisJSON, &r.Grammar, &r.AppliedActions, &r.ResponseSource, &r.Grounded, &r.Suppressed,
		&r.InputTokens, &r.OutputTokens, &r.CreatedAt, &completedAt, &r.Duration, &r.Error,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}

	r.Status = triage.Status(status)

	if completedAt != nil {
		r.CompletedAt = *completedAt
	}

	if len(analysisJSON) > 0 {
		var a analysis.Analysis
		if err := json.Unmarshal(analysisJSON, &a); err != nil {
			return nil, fmt.Errorf("unmarshal analysis: %w", err)
		}
		r.Analysis = &a
	}

	return &r, nil
}
