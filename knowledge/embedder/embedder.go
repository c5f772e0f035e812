//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package embedder defines the interface for turning text into vectors.
package embedder

import "context"

// Embedder generates embedding vectors for text.
type Embedder interface {
	// GetEmbedding returns the embedding of text.
	GetEmbedding(ctx context.Context, text string) ([]float64, error)

	// GetDimensions returns the length of the vectors produced.
	GetDimensions() int
}

// BatchEmbedder is an Embedder that can embed several texts per request.
type BatchEmbedder interface {
	Embedder
	// GetEmbeddings returns one vector per text, in order.
	GetEmbeddings(ctx context.Context, texts []string) ([][]float64, error)
}
