//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package text provides the plain text document reader.
package text

import (
	"fmt"
	"io"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document/reader"
	idocument "trpc.group/trpc-go/trpc-docqa-go/knowledge/internal/document"
)

var supportedExtensions = []string{".txt", ".text"}

func init() {
	reader.RegisterReader(supportedExtensions, New)
}

// Reader reads a text file as a single document and chunks it.
type Reader struct {
	config *reader.Config
}

var _ reader.Reader = (*Reader)(nil)

// New creates a new text reader.
func New(opts ...reader.Option) reader.Reader {
	return &Reader{config: reader.NewConfig(opts...)}
}

// ReadFromReader reads text content from r.
func (r *Reader) ReadFromReader(name string, rd io.Reader) ([]*document.Document, error) {
	content, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to read text: %w", err)
	}
	doc := idocument.CreateFileDocument(string(content), name, document.ExtractionText)
	return r.config.Apply([]*document.Document{doc})
}

// ReadFromFile reads the text file at filePath.
func (r *Reader) ReadFromFile(filePath string) ([]*document.Document, error) {
	return reader.ReadFile(r, filePath)
}

// Name returns the name of this reader.
func (r *Reader) Name() string {
	return "TextReader"
}

// SupportedExtensions returns the file extensions this reader supports.
func (r *Reader) SupportedExtensions() []string {
	return supportedExtensions
}
