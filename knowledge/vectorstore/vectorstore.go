//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package vectorstore defines storage for embedded document chunks.
package vectorstore

import (
	"context"
	"errors"
	"math"
	"sort"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
)

// ErrDimensionMismatch is returned when an embedding does not match the
// store's vector size.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// ScoredDocument is a search hit. Score is the cosine similarity in [-1, 1].
type ScoredDocument struct {
	Document *document.Document
	Score    float64
}

// VectorStore stores documents with their embeddings.
type VectorStore interface {
	// Add stores doc with its embedding, replacing any document with the
	// same ID.
	Add(ctx context.Context, doc *document.Document, embedding []float64) error

	// Search returns the k documents most similar to embedding, best first.
	Search(ctx context.Context, embedding []float64, k int) ([]*ScoredDocument, error)

	// DeleteBySource removes every document whose source metadata equals
	// source and returns how many were removed.
	DeleteBySource(ctx context.Context, source string) (int, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close releases the store.
	Close() error
}

// CosineSimilarity returns the cosine similarity of a and b. Vectors of
// different length or with zero norm score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// TopK sorts scored by descending score and keeps the first k. Ties keep
// insertion order. k <= 0 keeps everything.
func TopK(scored []*ScoredDocument, k int) []*ScoredDocument {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
