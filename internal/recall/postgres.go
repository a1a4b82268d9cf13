package recall

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresIndex stores records in PostgreSQL with pgvector, for deployments
// that already run a database instead of the embedded index.
type PostgresIndex struct {
	pool *pgxpool.Pool
}

func NewPostgresIndex(ctx context.Context, databaseURL string, dim int) (*PostgresIndex, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool, dim); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresIndex{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool, dim int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector;`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS recall_items (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`, dim),
		`CREATE INDEX IF NOT EXISTS idx_recall_items_user ON recall_items (user_id);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresIndex) Upsert(ctx context.Context, rec Record, embedding []float32) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO recall_items (id, user_id, role, content, embedding)
		 VALUES ($1, $2, $3, $4, $5::vector)
		 ON CONFLICT (id) DO UPDATE SET role = EXCLUDED.role, content = EXCLUDED.content, embedding = EXCLUDED.embedding`,
		rec.ID,
		rec.UserID,
		rec.Role,
		rec.Text,
		vectorLiteral(embedding),
	)
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

func (s *PostgresIndex) Query(ctx context.Context, userID string, embedding []float32, limit int) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, role, content
		 FROM recall_items WHERE user_id = $1
		 ORDER BY embedding <=> $2::vector
		 LIMIT $3`,
		userID,
		vectorLiteral(embedding),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Role, &rec.Text); err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record rows: %w", err)
	}
	return records, nil
}

func (s *PostgresIndex) Close() error {
	s.pool.Close()
	return nil
}

// vectorLiteral renders the pgvector input format: [v1,v2,...].
func vectorLiteral(embedding []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
