//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package sqlite provides a vector store in a single SQLite file. Vectors are
// kept as little endian float32 blobs and ranked in process.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/vectorstore"
)

var _ vectorstore.VectorStore = (*VectorStore)(nil)

// DefaultFileName is the database file created inside the db directory.
const DefaultFileName = "docqa.sqlite"

// ErrNotFound is returned by Open when the database does not exist and
// creation is disabled.
var ErrNotFound = errors.New("vector database not found")

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	content    TEXT NOT NULL,
	source     TEXT NOT NULL,
	metadata   TEXT NOT NULL,
	embedding  BLOB NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

type options struct {
	create bool
}

// Option configures Open.
type Option func(*options)

// WithCreateIfNotExists controls whether a missing database is created.
// The default is true.
func WithCreateIfNotExists(create bool) Option {
	return func(o *options) {
		o.create = create
	}
}

// VectorStore is a SQLite backed vectorstore.VectorStore.
type VectorStore struct {
	db   *sql.DB
	path string
	dims int
}

// Path returns the database file for dbDir.
func Path(dbDir string) string {
	return filepath.Join(dbDir, DefaultFileName)
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string, opts ...Option) (*VectorStore, error) {
	o := options{create: true}
	for _, opt := range opts {
		opt(&o)
	}
	mode := "rw"
	if o.create {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		mode = "rwc"
	} else if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w at %s", ErrNotFound, path)
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=%s&_pragma=busy_timeout(5000)", path, mode))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	s := &VectorStore{db: db, path: path}
	if err := s.loadDimensions(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *VectorStore) loadDimensions(ctx context.Context) error {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'dimensions'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}
	s.dims, err = strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("corrupt dimensions %q: %w", value, err)
	}
	return nil
}

// Dimensions returns the vector size fixed by the first Add, or 0.
func (s *VectorStore) Dimensions() int {
	return s.dims
}

// Add implements vectorstore.VectorStore.
func (s *VectorStore) Add(ctx context.Context, doc *document.Document, embedding []float64) error {
	if len(embedding) == 0 {
		return fmt.Errorf("%w: empty embedding", vectorstore.ErrDimensionMismatch)
	}
	if s.dims != 0 && len(embedding) != s.dims {
		return fmt.Errorf("%w: got %d, store has %d", vectorstore.ErrDimensionMismatch, len(embedding), s.dims)
	}
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	created := doc.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if s.dims == 0 {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO meta(key, value) VALUES ('dimensions', ?)`,
			strconv.Itoa(len(embedding))); err != nil {
			return fmt.Errorf("failed to store dimensions: %w", err)
		}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO chunks(id, name, content, source, metadata, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Name, doc.Content, doc.Source(), string(metadata), EncodeVector(embedding), created)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.dims = len(embedding)
	return nil
}

// Search implements vectorstore.VectorStore.
func (s *VectorStore) Search(ctx context.Context, embedding []float64, k int) ([]*vectorstore.ScoredDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, content, metadata, embedding, created_at FROM chunks ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var scored []*vectorstore.ScoredDocument
	for rows.Next() {
		var (
			doc      document.Document
			metadata string
			blob     []byte
		)
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Content, &metadata, &blob, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(metadata), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata of %s: %w", doc.ID, err)
		}
		doc.UpdatedAt = doc.CreatedAt
		scored = append(scored, &vectorstore.ScoredDocument{
			Document: &doc,
			Score:    vectorstore.CosineSimilarity(embedding, DecodeVector(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return vectorstore.TopK(scored, k), nil
}

// DeleteBySource implements vectorstore.VectorStore.
func (s *VectorStore) DeleteBySource(ctx context.Context, source string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE source = ?`, source)
	if err != nil {
		return 0, fmt.Errorf("failed to delete chunks: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Count implements vectorstore.VectorStore.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return n, nil
}

// Close implements vectorstore.VectorStore.
func (s *VectorStore) Close() error {
	return s.db.Close()
}

// EncodeVector packs v as little endian float32 values.
func EncodeVector(v []float64) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(float32(f)))
	}
	return buf
}

// DecodeVector is the inverse of EncodeVector. Trailing bytes are ignored.
func DecodeVector(b []byte) []float64 {
	v := make([]float64, len(b)/4)
	for i := range v {
		v[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:])))
	}
	return v
}
