//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package reader defines document readers and the registry that selects one
// by file extension.
package reader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/chunking"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
)

// Config holds configuration for readers.
type Config struct {
	Chunk                  bool
	ChunkSize              int
	ChunkOverlap           int
	CustomChunkingStrategy chunking.Strategy
}

// Option is a functional option for configuring readers.
type Option func(*Config)

// WithChunk enables or disables document chunking.
func WithChunk(enabled bool) Option {
	return func(c *Config) {
		c.Chunk = enabled
	}
}

// WithChunkSize sets the chunk size and enables chunking.
func WithChunkSize(size int) Option {
	return func(c *Config) {
		c.ChunkSize = size
		c.Chunk = true
	}
}

// WithChunkOverlap sets the chunk overlap and enables chunking.
func WithChunkOverlap(overlap int) Option {
	return func(c *Config) {
		c.ChunkOverlap = overlap
		c.Chunk = true
	}
}

// WithCustomChunkingStrategy overrides the reader's default strategy.
func WithCustomChunkingStrategy(strategy chunking.Strategy) Option {
	return func(c *Config) {
		c.CustomChunkingStrategy = strategy
		c.Chunk = true
	}
}

// NewConfig applies opts on top of chunking enabled with default sizes.
func NewConfig(opts ...Option) *Config {
	c := &Config{Chunk: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChunkingStrategy returns the custom strategy, or the recursive splitter
// sized from the config.
func (c *Config) ChunkingStrategy() chunking.Strategy {
	if c.CustomChunkingStrategy != nil {
		return c.CustomChunkingStrategy
	}
	return chunking.NewRecursiveChunking(
		chunking.WithChunkSize(c.ChunkSize),
		chunking.WithOverlap(c.chunkOverlap()),
	)
}

func (c *Config) chunkOverlap() int {
	if c.ChunkOverlap == 0 && c.ChunkSize == 0 {
		return chunking.DefaultOverlap
	}
	return c.ChunkOverlap
}

// Apply chunks docs when chunking is enabled. Empty documents are dropped.
func (c *Config) Apply(docs []*document.Document) ([]*document.Document, error) {
	if !c.Chunk {
		return docs, nil
	}
	strategy := c.ChunkingStrategy()
	var out []*document.Document
	for _, doc := range docs {
		if doc.IsEmpty() {
			continue
		}
		chunks, err := strategy.Chunk(doc)
		if errors.Is(err, chunking.ErrEmptyDocument) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to chunk document %s: %w", doc.Name, err)
		}
		out = append(out, chunks...)
	}
	return out, nil
}

// Reader turns the content of one file into documents.
type Reader interface {
	// ReadFromReader reads content from r. name identifies the source,
	// usually the file path.
	ReadFromReader(name string, r io.Reader) ([]*document.Document, error)

	// ReadFromFile reads the file at filePath.
	ReadFromFile(filePath string) ([]*document.Document, error)

	// Name returns the name of this reader.
	Name() string

	// SupportedExtensions returns the file extensions this reader supports,
	// with the dot prefix (e.g. ".pdf").
	SupportedExtensions() []string
}

// ReadFile opens filePath and hands it to r.ReadFromReader.
func ReadFile(r Reader, filePath string) ([]*document.Document, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return r.ReadFromReader(filePath, f)
}
