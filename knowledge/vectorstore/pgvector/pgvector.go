//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package pgvector provides a PostgreSQL vector store using the pgvector
// extension.
package pgvector

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/vectorstore"
)

var _ vectorstore.VectorStore = (*VectorStore)(nil)

// DefaultTable is the table used when WithTable is not given.
const DefaultTable = "docqa_chunks"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type options struct {
	table      string
	dimensions int
}

// Option configures New.
type Option func(*options)

// WithTable sets the table name.
func WithTable(table string) Option {
	return func(o *options) {
		o.table = table
	}
}

// WithDimensions fixes the vector column size.
func WithDimensions(dimensions int) Option {
	return func(o *options) {
		o.dimensions = dimensions
	}
}

// VectorStore is a pgvector backed vectorstore.VectorStore.
type VectorStore struct {
	pool *pgxpool.Pool
	o    options
}

// New connects to dsn and creates the extension and table when missing.
func New(ctx context.Context, dsn string, opts ...Option) (*VectorStore, error) {
	o := options{table: DefaultTable}
	for _, opt := range opts {
		opt(&o)
	}
	if !identifier.MatchString(o.table) {
		return nil, fmt.Errorf("invalid table name %q", o.table)
	}
	if o.dimensions <= 0 {
		return nil, fmt.Errorf("pgvector: dimensions must be positive, got %d", o.dimensions)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	s := &VectorStore{pool: pool, o: o}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *VectorStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			content    TEXT NOT NULL,
			source     TEXT NOT NULL,
			metadata   JSONB NOT NULL,
			embedding  vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`, s.o.table, s.o.dimensions),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_source_idx ON %s (source)`, s.o.table, s.o.table),
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare pgvector schema: %w", err)
		}
	}
	return nil
}

func toVector(v []float64) pgvector.Vector {
	f := make([]float32, len(v))
	for i, x := range v {
		f[i] = float32(x)
	}
	return pgvector.NewVector(f)
}

// Add implements vectorstore.VectorStore.
func (s *VectorStore) Add(ctx context.Context, doc *document.Document, embedding []float64) error {
	if len(embedding) != s.o.dimensions {
		return fmt.Errorf("%w: got %d, store has %d", vectorstore.ErrDimensionMismatch, len(embedding), s.o.dimensions)
	}
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	created := doc.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err = s.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, name, content, source, metadata, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, content = EXCLUDED.content, source = EXCLUDED.source,
			metadata = EXCLUDED.metadata, embedding = EXCLUDED.embedding`, s.o.table),
		doc.ID, doc.Name, doc.Content, doc.Source(), string(metadata), toVector(embedding), created)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

// Search implements vectorstore.VectorStore. Ranking uses the cosine
// distance operator.
func (s *VectorStore) Search(ctx context.Context, embedding []float64, k int) ([]*vectorstore.ScoredDocument, error) {
	if k <= 0 {
		k = 4
	}
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, name, content, metadata, created_at, 1 - (embedding <=> $1) AS score
		FROM %s ORDER BY embedding <=> $1 LIMIT $2`, s.o.table),
		toVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var out []*vectorstore.ScoredDocument
	for rows.Next() {
		var (
			doc      document.Document
			metadata []byte
			score    float64
		)
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Content, &metadata, &doc.CreatedAt, &score); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata of %s: %w", doc.ID, err)
		}
		doc.UpdatedAt = doc.CreatedAt
		out = append(out, &vectorstore.ScoredDocument{Document: &doc, Score: score})
	}
	return out, rows.Err()
}

// DeleteBySource implements vectorstore.VectorStore.
func (s *VectorStore) DeleteBySource(ctx context.Context, source string) (int, error) {
	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE source = $1`, s.o.table), source)
	if err != nil {
		return 0, fmt.Errorf("failed to delete chunks: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Count implements vectorstore.VectorStore.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.o.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return n, nil
}

// Close implements vectorstore.VectorStore.
func (s *VectorStore) Close() error {
	s.pool.Close()
	return nil
}
