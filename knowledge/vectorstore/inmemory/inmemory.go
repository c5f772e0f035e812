//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides a vector store kept in process memory.
package inmemory

import (
	"context"
	"sync"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/vectorstore"
)

var _ vectorstore.VectorStore = (*VectorStore)(nil)

type entry struct {
	doc       *document.Document
	embedding []float64
}

// VectorStore is safe for concurrent use.
type VectorStore struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]entry
}

// New creates an empty store.
func New() *VectorStore {
	return &VectorStore{entries: make(map[string]entry)}
}

// Add implements vectorstore.VectorStore.
func (s *VectorStore) Add(_ context.Context, doc *document.Document, embedding []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[doc.ID]; !ok {
		s.order = append(s.order, doc.ID)
	}
	s.entries[doc.ID] = entry{doc: doc.Clone(), embedding: append([]float64(nil), embedding...)}
	return nil
}

// Search implements vectorstore.VectorStore.
func (s *VectorStore) Search(_ context.Context, embedding []float64, k int) ([]*vectorstore.ScoredDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scored := make([]*vectorstore.ScoredDocument, 0, len(s.order))
	for _, id := range s.order {
		e := s.entries[id]
		scored = append(scored, &vectorstore.ScoredDocument{
			Document: e.doc.Clone(),
			Score:    vectorstore.CosineSimilarity(embedding, e.embedding),
		})
	}
	return vectorstore.TopK(scored, k), nil
}

// DeleteBySource implements vectorstore.VectorStore.
func (s *VectorStore) DeleteBySource(_ context.Context, source string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.order[:0]
	removed := 0
	for _, id := range s.order {
		if s.entries[id].doc.Source() == source {
			delete(s.entries, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return removed, nil
}

// Count implements vectorstore.VectorStore.
func (s *VectorStore) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Close implements vectorstore.VectorStore.
func (s *VectorStore) Close() error {
	return nil
}
