package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// Compile-time interface check.
var _ Store = (*Postgres)(nil)

const ddlAttempts = `
CREATE TABLE IF NOT EXISTS attempts (
    id          BIGSERIAL    PRIMARY KEY,
    script_id   TEXT         NOT NULL,
    line_id     TEXT         NOT NULL,
    character_name TEXT      NOT NULL DEFAULT '',
    spoken_text TEXT         NOT NULL,
    score       INT          NOT NULL,
    accurate    BOOLEAN      NOT NULL,
    source      TEXT         NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_attempts_script_line
    ON attempts (script_id, line_id);

CREATE INDEX IF NOT EXISTS idx_attempts_created_at
    ON attempts (created_at);
`

// ddlLinesTemplate needs the embedding dimension substituted before execution;
// pgvector column types cannot be parameterised.
const ddlLinesTemplate = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS script_lines (
    script_id  TEXT         NOT NULL,
    line_id    TEXT         NOT NULL,
    text       TEXT         NOT NULL,
    embedding  vector(%d),
    updated_at TIMESTAMPTZ  NOT NULL DEFAULT now(),
    PRIMARY KEY (script_id, line_id)
);

CREATE INDEX IF NOT EXISTS idx_script_lines_embedding
    ON script_lines USING hnsw (embedding vector_cosine_ops);
`

// Postgres is the PostgreSQL-backed progress store. Attempt history lives in
// the attempts table; line embeddings live in script_lines with a pgvector
// HNSW index for nearest-neighbour search.
//
// All methods are safe for concurrent use.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store, establishes a connection pool to the
// database at dsn, registers pgvector types on every connection, and runs
// [Migrate] to ensure all required tables and extensions exist.
//
// embeddingDimensions must match the output dimension of the embedding model
// used to index lines (e.g., 1536 for OpenAI text-embedding-3-small).
// Changing this value after the first migration requires a manual schema
// change.
func NewPostgres(ctx context.Context, dsn string, embeddingDimensions int) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("progress: parse dsn: %w", err)
	}

	// Register pgvector types on every new connection so that vector columns
	// can be scanned into and inserted from pgvector.Vector values.
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("progress: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("progress: ping: %w", err)
	}

	if err := Migrate(ctx, pool, embeddingDimensions); err != nil {
		pool.Close()
		return nil, fmt.Errorf("progress: migrate: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Migrate creates the attempts and script_lines tables if they do not exist.
// It is idempotent and safe to run on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool, embeddingDimensions int) error {
	if embeddingDimensions <= 0 {
		return fmt.Errorf("progress: embeddingDimensions must be positive, got %d", embeddingDimensions)
	}
	if _, err := pool.Exec(ctx, ddlAttempts); err != nil {
		return fmt.Errorf("progress: create attempts table: %w", err)
	}
	if _, err := pool.Exec(ctx, fmt.Sprintf(ddlLinesTemplate, embeddingDimensions)); err != nil {
		return fmt.Errorf("progress: create script_lines table: %w", err)
	}
	return nil
}

// Ping probes the database connection, for readiness checks.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close releases all connections held by the underlying connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// RecordAttempt implements Store.
func (p *Postgres) RecordAttempt(ctx context.Context, rec AttemptRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	const q = `
		INSERT INTO attempts
		    (script_id, line_id, character_name, spoken_text, score, accurate, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := p.pool.Exec(ctx, q,
		rec.ScriptID,
		rec.LineID,
		rec.Character,
		rec.SpokenText,
		rec.Score,
		rec.Accurate,
		rec.Source,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("progress: record attempt: %w", err)
	}
	return nil
}

// LineStats implements Store.
func (p *Postgres) LineStats(ctx context.Context, scriptID, lineID string) (LineStats, error) {
	const q = `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE accurate),
		       COALESCE(AVG(score), 0),
		       COALESCE(MAX(score), 0),
		       COALESCE(MAX(created_at), 'epoch'::timestamptz)
		FROM   attempts
		WHERE  script_id = $1 AND line_id = $2`

	stats := LineStats{ScriptID: scriptID, LineID: lineID}
	err := p.pool.QueryRow(ctx, q, scriptID, lineID).Scan(
		&stats.Attempts,
		&stats.AccurateCount,
		&stats.AverageScore,
		&stats.BestScore,
		&stats.LastAttempt,
	)
	if err != nil {
		return LineStats{}, fmt.Errorf("progress: line stats: %w", err)
	}
	if stats.Attempts == 0 {
		return LineStats{}, ErrNotFound
	}
	return stats, nil
}

// TroubleLines implements Store.
func (p *Postgres) TroubleLines(ctx context.Context, scriptID string, limit int) ([]LineStats, error) {
	const q = `
		SELECT line_id,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE accurate),
		       AVG(score),
		       MAX(score),
		       MAX(created_at)
		FROM   attempts
		WHERE  script_id = $1
		GROUP  BY line_id
		HAVING AVG(score) < 100
		ORDER  BY AVG(score) ASC
		LIMIT  $2`

	rows, err := p.pool.Query(ctx, q, scriptID, limit)
	if err != nil {
		return nil, fmt.Errorf("progress: trouble lines: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (LineStats, error) {
		stats := LineStats{ScriptID: scriptID}
		err := row.Scan(
			&stats.LineID,
			&stats.Attempts,
			&stats.AccurateCount,
			&stats.AverageScore,
			&stats.BestScore,
			&stats.LastAttempt,
		)
		return stats, err
	})
	if err != nil {
		return nil, fmt.Errorf("progress: scan trouble lines: %w", err)
	}
	if results == nil {
		results = []LineStats{}
	}
	return results, nil
}

// IndexLine implements Store. Re-indexing a line replaces its text and
// embedding.
func (p *Postgres) IndexLine(ctx context.Context, line IndexedLine) error {
	const q = `
		INSERT INTO script_lines (script_id, line_id, text, embedding, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (script_id, line_id) DO UPDATE SET
		    text       = EXCLUDED.text,
		    embedding  = EXCLUDED.embedding,
		    updated_at = now()`

	_, err := p.pool.Exec(ctx, q,
		line.ScriptID,
		line.LineID,
		line.Text,
		pgvector.NewVector(line.Embedding),
	)
	if err != nil {
		return fmt.Errorf("progress: index line: %w", err)
	}
	return nil
}

// SimilarLines implements Store. Results are ordered by ascending cosine
// distance (most similar first).
func (p *Postgres) SimilarLines(ctx context.Context, scriptID string, embedding []float32, topK int) ([]SimilarLine, error) {
	const q = `
		SELECT line_id, text, embedding <=> $2 AS distance
		FROM   script_lines
		WHERE  script_id = $1 AND embedding IS NOT NULL
		ORDER  BY distance
		LIMIT  $3`

	rows, err := p.pool.Query(ctx, q, scriptID, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("progress: similar lines: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SimilarLine, error) {
		var sl SimilarLine
		err := row.Scan(&sl.LineID, &sl.Text, &sl.Distance)
		return sl, err
	})
	if err != nil {
		return nil, fmt.Errorf("progress: scan similar lines: %w", err)
	}
	if results == nil {
		results = []SimilarLine{}
	}
	return results, nil
}
