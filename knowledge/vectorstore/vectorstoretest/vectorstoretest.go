//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package vectorstoretest holds behaviour tests shared by the vector store
// implementations.
package vectorstoretest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/vectorstore"
)

// Doc builds a chunk from source with the given id and content.
func Doc(id, source, content string) *document.Document {
	return &document.Document{
		ID:      id,
		Name:    "name-" + id,
		Content: content,
		Metadata: map[string]any{
			document.MetaSource:     source,
			document.MetaChunkIndex: 1,
		},
	}
}

// Run exercises store, which must start empty and use three dimensional
// vectors.
func Run(t *testing.T, store vectorstore.VectorStore) {
	t.Helper()
	ctx := context.Background()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, store.Add(ctx, Doc("a", "/docs/a.txt", "alpha"), []float64{1, 0, 0}))
	require.NoError(t, store.Add(ctx, Doc("b", "/docs/b.txt", "beta"), []float64{0, 1, 0}))
	require.NoError(t, store.Add(ctx, Doc("c", "/docs/b.txt", "gamma"), []float64{0.7, 0.7, 0}))

	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	hits, err := store.Search(ctx, []float64{1, 0.1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].Document.ID)
	assert.Equal(t, "c", hits[1].Document.ID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
	assert.Equal(t, "alpha", hits[0].Document.Content)
	assert.Equal(t, "name-a", hits[0].Document.Name)
	assert.Equal(t, "/docs/a.txt", hits[0].Document.Metadata[document.MetaSource])
	assert.EqualValues(t, 1, hits[0].Document.Metadata[document.MetaChunkIndex])

	// Replacing by ID keeps the count.
	require.NoError(t, store.Add(ctx, Doc("a", "/docs/a.txt", "alpha v2"), []float64{1, 0, 0}))
	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	hits, err = store.Search(ctx, []float64{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "alpha v2", hits[0].Document.Content)

	removed, err := store.DeleteBySource(ctx, "/docs/b.txt")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	hits, err = store.Search(ctx, []float64{0, 1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].Document.ID)
}
