package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSource reads the catalog from the safeguard_evaluations table.
type PostgresSource struct {
	pool *pgxpool.Pool
}

func NewPostgresSource(ctx context.Context, databaseURL string) (*PostgresSource, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresSource{pool: pool}, nil
}

func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}

const safeguardColumns = `name, description, bells_score, performance_score,
	api_available, self_hosted, rag_compatible,
	detection_adversarial, detection_non_adversarial, false_positive_rate,
	metrics`

func (s *PostgresSource) LoadSafeguards(ctx context.Context) ([]Safeguard, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+safeguardColumns+`
		FROM safeguard_evaluations
		ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("query safeguards: %w", err)
	}
	defer rows.Close()

	var out []Safeguard
	for rows.Next() {
		sg, err := scanSafeguard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate safeguards: %w", err)
	}
	return out, nil
}

// UpsertSafeguards makes the table hold exactly the given safeguards,
// assigning positions in slice order. Rows for names not in the slice are
// deleted in the same transaction.
func (s *PostgresSource) UpsertSafeguards(ctx context.Context, safeguards []Safeguard) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	names := make([]string, len(safeguards))
	for i, sg := range safeguards {
		names[i] = sg.Name
	}
	if _, err := tx.Exec(ctx, `DELETE FROM safeguard_evaluations WHERE NOT (name = ANY($1))`, names); err != nil {
		return fmt.Errorf("prune safeguards: %w", err)
	}

	batch := &pgx.Batch{}
	for i, sg := range safeguards {
		metricsJSON, err := json.Marshal(sg.Metrics)
		if err != nil {
			return fmt.Errorf("encode metrics for %s: %w", sg.Name, err)
		}
		batch.Queue(`
			INSERT INTO safeguard_evaluations (position, `+safeguardColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (name) DO UPDATE SET
				position = EXCLUDED.position,
				description = EXCLUDED.description,
				bells_score = EXCLUDED.bells_score,
				performance_score = EXCLUDED.performance_score,
				api_available = EXCLUDED.api_available,
				self_hosted = EXCLUDED.self_hosted,
				rag_compatible = EXCLUDED.rag_compatible,
				detection_adversarial = EXCLUDED.detection_adversarial,
				detection_non_adversarial = EXCLUDED.detection_non_adversarial,
				false_positive_rate = EXCLUDED.false_positive_rate,
				metrics = EXCLUDED.metrics`,
			i, sg.Name, sg.Description, sg.BELLSScore, sg.PerformanceScore,
			sg.APIAvailable, sg.SelfHosted, sg.RAGCompatible,
			sg.DetectionAdversarial, sg.DetectionNonAdversarial, sg.FalsePositiveRate,
			metricsJSON,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert safeguards: %w", err)
	}
	return tx.Commit(ctx)
}

func scanSafeguard(row pgx.Row) (Safeguard, error) {
	var sg Safeguard
	var description *string
	var metricsJSON []byte
	err := row.Scan(
		&sg.Name, &description, &sg.BELLSScore, &sg.PerformanceScore,
		&sg.APIAvailable, &sg.SelfHosted, &sg.RAGCompatible,
		&sg.DetectionAdversarial, &sg.DetectionNonAdversarial, &sg.FalsePositiveRate,
		&metricsJSON,
	)
	if err != nil {
		return Safeguard{}, fmt.Errorf("scan safeguard: %w", err)
	}
	if description != nil {
		sg.Description = *description
	}
	if len(metricsJSON) > 0 {
		if err := json.Unmarshal(metricsJSON, &sg.Metrics); err != nil {
			return Safeguard{}, fmt.Errorf("decode metrics for %s: %w", sg.Name, err)
		}
	}

	sg.BELLSScore = clamp01(sg.BELLSScore)
	sg.PerformanceScore = clamp01(sg.PerformanceScore)
	sg.DetectionAdversarial = clamp01(sg.DetectionAdversarial)
	sg.DetectionNonAdversarial = clamp01(sg.DetectionNonAdversarial)
	sg.FalsePositiveRate = clamp01(sg.FalsePositiveRate)
	return sg, nil
}

// Schema is the DDL the seed script applies before loading.
const Schema = `
CREATE TABLE IF NOT EXISTS safeguard_evaluations (
	name                      TEXT PRIMARY KEY,
	position                  INTEGER NOT NULL DEFAULT 0,
	description               TEXT,
	bells_score               DOUBLE PRECISION NOT NULL DEFAULT 0,
	performance_score         DOUBLE PRECISION NOT NULL DEFAULT 0,
	api_available             BOOLEAN NOT NULL DEFAULT FALSE,
	self_hosted               BOOLEAN NOT NULL DEFAULT FALSE,
	rag_compatible            BOOLEAN NOT NULL DEFAULT FALSE,
	detection_adversarial     DOUBLE PRECISION NOT NULL DEFAULT 0,
	detection_non_adversarial DOUBLE PRECISION NOT NULL DEFAULT 0,
	false_positive_rate       DOUBLE PRECISION NOT NULL DEFAULT 0,
	metrics                   JSONB
)`

// EnsureSchema creates the catalog table when missing.
func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
