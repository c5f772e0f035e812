//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package document defines the unit of content that flows from readers
// through chunking into the vector store.
package document

import (
	"maps"
	"time"
)

// Metadata keys attached by readers, the loader and the chunker.
const (
	MetaSource      = "source"
	MetaFileName    = "file_name"
	MetaFileType    = "file_type"
	MetaChunkIndex  = "chunk_index"
	MetaHeaderPath  = "header_path"
	MetaExtraction  = "extraction"
	MetaParagraphs  = "paragraphs"
	ExtractionText  = "text"
	ExtractionOCR   = "ocr"
	ExtractionDocx  = "docx"
	ExtractionMDown = "markdown"
)

// Document is a piece of text plus the metadata describing where it came from.
type Document struct {
	ID        string
	Name      string
	Content   string
	Metadata  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsEmpty reports whether the document has no content.
func (d *Document) IsEmpty() bool {
	return d == nil || len(d.Content) == 0
}

// Clone returns a copy with an independent metadata map.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Metadata = maps.Clone(d.Metadata)
	if c.Metadata == nil {
		c.Metadata = make(map[string]any)
	}
	return &c
}

// Source returns the source path recorded in metadata, or Name.
func (d *Document) Source() string {
	if d == nil {
		return ""
	}
	if s, ok := d.Metadata[MetaSource].(string); ok && s != "" {
		return s
	}
	return d.Name
}
