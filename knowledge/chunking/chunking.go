//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package chunking splits documents into overlapping pieces sized for
// embedding.
package chunking

import (
	"errors"
	"fmt"
	"maps"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
)

// Defaults, in characters.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

var (
	// ErrNilDocument is returned when a nil document is chunked.
	ErrNilDocument = errors.New("document is nil")
	// ErrEmptyDocument is returned when a document without content is chunked.
	ErrEmptyDocument = errors.New("document is empty")
)

// Strategy splits a document into chunks.
type Strategy interface {
	Chunk(doc *document.Document) ([]*document.Document, error)
}

// newChunk derives the i-th chunk of parent.
func newChunk(parent *document.Document, content string, index int) *document.Document {
	metadata := maps.Clone(parent.Metadata)
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata[document.MetaChunkIndex] = index
	if _, ok := metadata[document.MetaSource]; !ok {
		metadata[document.MetaSource] = parent.Name
	}
	return &document.Document{
		ID:        fmt.Sprintf("%s_%d", parent.ID, index),
		Name:      parent.Name,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: parent.CreatedAt,
		UpdatedAt: parent.UpdatedAt,
	}
}
