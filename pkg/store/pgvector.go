// Package store persists embedded code files in PostgreSQL with the
// pgvector extension and serves top-k similarity search for the vector
// retrieval method.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pgvector/pgvector-go"

	"ragbench/pkg/core"
)

// CodeFile is one indexed source file.
type CodeFile struct {
	Path      string
	Content   string
	Embedding []float32
}

// Config configures the store.
type Config struct {
	// DSN is the PostgreSQL connection string. Ignored when DB is set.
	DSN string

	// DB reuses an existing connection; the store will not close it.
	DB *sql.DB

	// Dimension is the embedding width the schema is created with.
	Dimension int

	// EnsureSchema creates the extension and table on startup.
	EnsureSchema bool
}

// Store is a pgvector-backed code file index.
type Store struct {
	db        *sql.DB
	dimension int
	ownsDB    bool
}

// New opens the store and optionally ensures its schema.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Dimension <= 0 {
		cfg.Dimension = 1536
	}

	var db *sql.DB
	var ownsDB bool
	switch {
	case cfg.DB != nil:
		db = cfg.DB
	case cfg.DSN != "":
		var err error
		db, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("store: open database: %w", err)
		}
		ownsDB = true

		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: ping database: %w", err)
		}
	default:
		return nil, fmt.Errorf("store: either DSN or DB must be provided")
	}

	s := &Store{db: db, dimension: cfg.Dimension, ownsDB: ownsDB}
	if cfg.EnsureSchema {
		if err := s.ensureSchema(ctx); err != nil {
			if ownsDB {
				db.Close()
			}
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS code_files (
			id BIGSERIAL PRIMARY KEY,
			path TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			indexed_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.dimension),
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: ensure schema: %w", err)
		}
	}
	return nil
}

// Reset drops all indexed files so a fresh indexing run starts clean.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `TRUNCATE code_files`); err != nil {
		return fmt.Errorf("store: reset: %w", err)
	}
	return nil
}

// UpsertFiles inserts or replaces a batch of embedded files inside one
// transaction.
func (s *Store) UpsertFiles(ctx context.Context, files []CodeFile) error {
	if len(files) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO code_files (path, content, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT (path) DO UPDATE
		SET content = EXCLUDED.content,
		    embedding = EXCLUDED.embedding,
		    indexed_at = now()
	`)
	if err != nil {
		return fmt.Errorf("store: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, file := range files {
		if len(file.Embedding) != s.dimension {
			return fmt.Errorf("store: %s has embedding dimension %d, want %d",
				file.Path, len(file.Embedding), s.dimension)
		}
		if _, err := stmt.ExecContext(ctx, file.Path, file.Content, pgvector.NewVector(file.Embedding)); err != nil {
			return fmt.Errorf("store: upsert %s: %w", file.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit upsert: %w", err)
	}
	return nil
}

// Search returns the topK most similar files by cosine distance, best first.
// Scores are cosine similarities in [-1, 1].
func (s *Store) Search(ctx context.Context, embedding []float32, topK int) ([]core.FileHit, error) {
	if topK <= 0 {
		topK = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, content, 1 - (embedding <=> $1) AS score
		FROM code_files
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	var hits []core.FileHit
	for rows.Next() {
		var hit core.FileHit
		if err := rows.Scan(&hit.Path, &hit.Content, &hit.Score); err != nil {
			return nil, fmt.Errorf("store: scan hit: %w", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate hits: %w", err)
	}
	return hits, nil
}

// Count returns the number of indexed files.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM code_files`).Scan(&count); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return count, nil
}

// Close releases the connection when the store owns it.
func (s *Store) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}
