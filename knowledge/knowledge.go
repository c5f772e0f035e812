//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package knowledge embeds document chunks into a vector store and searches
// them.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/embedder"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/vectorstore"
	"trpc.group/trpc-go/trpc-docqa-go/log"
)

// DefaultDocConcurrency bounds the embedding requests in flight per call.
const DefaultDocConcurrency = 4

// ErrNotConfigured is returned when the embedder or vector store is missing.
var ErrNotConfigured = errors.New("knowledge: embedder and vector store are required")

// Knowledge pairs an embedder with a vector store.
type Knowledge struct {
	embedder       embedder.Embedder
	vectorStore    vectorstore.VectorStore
	docConcurrency int
}

// Option configures Knowledge.
type Option func(*Knowledge)

// WithEmbedder sets the embedder.
func WithEmbedder(e embedder.Embedder) Option {
	return func(k *Knowledge) {
		k.embedder = e
	}
}

// WithVectorStore sets the vector store.
func WithVectorStore(vs vectorstore.VectorStore) Option {
	return func(k *Knowledge) {
		k.vectorStore = vs
	}
}

// WithDocConcurrency sets how many chunks are embedded at once.
func WithDocConcurrency(n int) Option {
	return func(k *Knowledge) {
		if n > 0 {
			k.docConcurrency = n
		}
	}
}

// New creates a Knowledge.
func New(opts ...Option) *Knowledge {
	k := &Knowledge{docConcurrency: DefaultDocConcurrency}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

func (k *Knowledge) check() error {
	if k.embedder == nil || k.vectorStore == nil {
		return ErrNotConfigured
	}
	return nil
}

// AddDocuments embeds and stores docs. Empty documents are skipped. A batch
// embedder gets all texts in one call; otherwise up to the doc concurrency
// chunks are embedded at once and the first failure cancels the rest.
func (k *Knowledge) AddDocuments(ctx context.Context, docs []*document.Document) error {
	if err := k.check(); err != nil {
		return err
	}
	docs = slices.DeleteFunc(slices.Clone(docs), (*document.Document).IsEmpty)
	if len(docs) == 0 {
		return nil
	}
	if batch, ok := k.embedder.(embedder.BatchEmbedder); ok {
		return k.addBatch(ctx, batch, docs)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(k.docConcurrency)
	for _, doc := range docs {
		g.Go(func() error {
			embedding, err := k.embedder.GetEmbedding(ctx, doc.Content)
			if err != nil {
				return fmt.Errorf("failed to generate embedding: %w", err)
			}
			return k.store(ctx, doc, embedding)
		})
	}
	return g.Wait()
}

func (k *Knowledge) addBatch(ctx context.Context, batch embedder.BatchEmbedder, docs []*document.Document) error {
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}
	embeddings, err := batch.GetEmbeddings(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(docs) {
		return fmt.Errorf("expected %d embeddings, got %d", len(docs), len(embeddings))
	}
	for i, doc := range docs {
		if err := k.store(ctx, doc, embeddings[i]); err != nil {
			return err
		}
	}
	return nil
}

func (k *Knowledge) store(ctx context.Context, doc *document.Document, embedding []float64) error {
	if len(embedding) == 0 {
		return fmt.Errorf("empty embedding for document %s", doc.ID)
	}
	if err := k.vectorStore.Add(ctx, doc, embedding); err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}
	return nil
}

// ReplaceSource removes the chunks previously stored for source, then adds
// docs. It returns the number of chunks removed.
func (k *Knowledge) ReplaceSource(ctx context.Context, source string, docs []*document.Document) (int, error) {
	if err := k.check(); err != nil {
		return 0, err
	}
	removed, err := k.vectorStore.DeleteBySource(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("failed to remove previous chunks of %s: %w", source, err)
	}
	if removed > 0 {
		log.Debugf("Removed %d previous chunk(s) of %s", removed, source)
	}
	return removed, k.AddDocuments(ctx, docs)
}

// Search returns the k chunks most similar to query.
func (k *Knowledge) Search(ctx context.Context, query string, limit int) ([]*vectorstore.ScoredDocument, error) {
	if err := k.check(); err != nil {
		return nil, err
	}
	embedding, err := k.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return k.vectorStore.Search(ctx, embedding, limit)
}

// Count returns the number of stored chunks.
func (k *Knowledge) Count(ctx context.Context) (int, error) {
	if k.vectorStore == nil {
		return 0, ErrNotConfigured
	}
	return k.vectorStore.Count(ctx)
}

// Close closes the vector store.
func (k *Knowledge) Close() error {
	if k.vectorStore == nil {
		return nil
	}
	return k.vectorStore.Close()
}
